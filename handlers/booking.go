package handlers

import (
	"net/http"

	"chargehub/middleware"
	bookingSvc "chargehub/services/booking"

	"github.com/gin-gonic/gin"
)

// CreateBooking reserves a charger for the authenticated driver.
func CreateBooking(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input bookingSvc.CreateBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		input.UserID = middleware.ActorID(c)

		booking, err := hb.BookingService.Create(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"booking": booking})
	}
}

// GetBooking returns one booking to its driver or host.
func GetBooking(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := hb.BookingService.Get(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"booking": booking})
	}
}

// ListBookings returns the authenticated user's bookings, newest first.
func ListBookings(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookings, err := hb.BookingService.ListForUser(c.Request.Context(), middleware.ActorID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
	}
}

// AcceptBooking confirms a pending booking on the host's behalf.
func AcceptBooking(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := hb.BookingService.HostAccept(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"booking": booking})
	}
}

// RejectBooking cancels a pending booking on the host's behalf.
func RejectBooking(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := hb.BookingService.HostReject(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"booking": booking})
	}
}

// StartSession begins the charging session for a confirmed booking.
func StartSession(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := hb.BookingService.StartSession(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"booking": booking})
	}
}

// StopSession ends the charging session and returns the recomputed charge.
func StopSession(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := hb.BookingService.StopSession(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"booking": booking})
	}
}

// CancelBooking cancels the driver's own booking.
func CancelBooking(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := hb.BookingService.Cancel(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"booking": booking})
	}
}

// CheckOverlap reports whether a charger window is free before the driver commits.
func CheckOverlap(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ChargerID   string `json:"charger_id" binding:"required"`
			BookingDate string `json:"booking_date" binding:"required"`
			StartTime   string `json:"start_time" binding:"required"`
			EndTime     string `json:"end_time" binding:"required"`
			ExcludeID   string `json:"exclude_id"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		overlaps, err := hb.BookingService.HasOverlap(c.Request.Context(),
			input.ChargerID, input.BookingDate, input.StartTime, input.EndTime, input.ExcludeID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"available": !overlaps, "overlaps": overlaps})
	}
}

// PayBooking creates a gateway charge for a completed booking.
func PayBooking(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		charge, err := hb.BookingService.InitiatePayment(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"charge_ref":    charge.Ref,
			"client_secret": charge.ClientSecret,
			"status":        charge.Status,
		})
	}
}

// ChargingHistory returns the driver's completed sessions with usage estimates.
func ChargingHistory(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		history, err := hb.BookingService.ChargingHistory(c.Request.Context(), middleware.ActorID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": history})
	}
}
