package handlers

import (
	"net/http"
	"strconv"

	"chargehub/middleware"

	"github.com/gin-gonic/gin"
)

// CreatePayout aggregates the host's eligible bookings into a transfer.
func CreatePayout(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		payout, err := hb.PayoutService.CreatePayout(c.Request.Context(), middleware.ActorID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"payout": payout})
	}
}

// EligibleBookings lists the bookings the next payout would cover, with the
// running balance.
func EligibleBookings(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		hostID := middleware.ActorID(c)

		bookings, err := hb.PayoutService.EligibleBookings(ctx, hostID)
		if err != nil {
			respondError(c, err)
			return
		}
		balance, err := hb.PayoutService.UnpaidBalance(ctx, hostID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": bookings, "unpaid_balance": balance})
	}
}

// Earnings returns the host dashboard rollup: daily, weekly, and monthly paid
// earnings, the unpaid balance, and the next payout awaiting settlement.
func Earnings(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		hostID := middleware.ActorID(c)

		overview, err := hb.PayoutService.Earnings(ctx, hostID)
		if err != nil {
			respondError(c, err)
			return
		}
		balance, err := hb.PayoutService.UnpaidBalance(ctx, hostID)
		if err != nil {
			respondError(c, err)
			return
		}
		next, err := hb.PayoutService.NextPayout(ctx, hostID)
		if err != nil {
			respondError(c, err)
			return
		}

		resp := gin.H{
			"today":          overview.Today,
			"this_week":      overview.ThisWeek,
			"this_month":     overview.ThisMonth,
			"unpaid_balance": balance,
		}
		if next != nil {
			resp["next_payout"] = next
		}
		c.JSON(http.StatusOK, resp)
	}
}

// LinkAccount stores the host's gateway connected-account reference so
// transfers have somewhere to go.
func LinkAccount(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			AccountRef string `json:"account_ref" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		if err := hb.PayoutService.LinkAccount(c.Request.Context(), middleware.ActorID(c), input.AccountRef); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"linked": true})
	}
}

// ListPayments returns the driver's payment history.
func ListPayments(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := hb.PayoutService.Payments(c.Request.Context(), middleware.ActorID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payments": payments})
	}
}

// RecentPayouts returns the host's latest payouts, newest first.
func RecentPayouts(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
		payouts, err := hb.PayoutService.RecentPayouts(c.Request.Context(), middleware.ActorID(c), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payouts": payouts})
	}
}
