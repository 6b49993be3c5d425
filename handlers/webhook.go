package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	bookingSvc "chargehub/services/booking"
	payoutSvc "chargehub/services/payout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GatewayWebhook receives payment gateway callbacks. The signature is
// verified before anything else; an unverified payload changes no state and
// returns 400. Replayed events are acknowledged without double-applying.
func GatewayWebhook(hb *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
			return
		}

		event, err := hb.Verifier.Verify(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			hb.Logger.Warn("rejected webhook with bad signature", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}

		ctx := c.Request.Context()
		switch event.Type {
		case "payment_intent.succeeded", "charge.succeeded":
			var intent struct {
				ID       string            `json:"id"`
				Metadata map[string]string `json:"metadata"`
			}
			if err := json.Unmarshal(event.Object, &intent); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event object"})
				return
			}
			bookingID := intent.Metadata["booking_id"]
			if bookingID == "" {
				hb.Logger.Warn("payment event without booking reference", zap.String("chargeRef", intent.ID))
				c.JSON(http.StatusOK, gin.H{"received": true})
				return
			}
			if _, err := hb.BookingService.MarkPaid(ctx, bookingID, intent.ID); err != nil {
				var notFound *bookingSvc.NotFoundError
				if errors.As(err, &notFound) {
					hb.Logger.Warn("payment event for unknown booking", zap.String("bookingID", bookingID))
					c.JSON(http.StatusOK, gin.H{"received": true})
					return
				}
				hb.Logger.Error("failed to apply payment event",
					zap.String("bookingID", bookingID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
				return
			}

		case "payout.paid", "payout.failed", "payout.canceled", "payout.updated":
			var transfer struct {
				ID          string `json:"id"`
				Status      string `json:"status"`
				ArrivalDate int64  `json:"arrival_date"`
			}
			if err := json.Unmarshal(event.Object, &transfer); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event object"})
				return
			}
			var arrival *time.Time
			if transfer.ArrivalDate > 0 {
				t := time.Unix(transfer.ArrivalDate, 0).UTC()
				arrival = &t
			}
			if _, err := hb.PayoutService.HandleTransferUpdate(ctx, transfer.ID, transfer.Status, arrival); err != nil {
				var notFound *payoutSvc.NotFoundError
				if errors.As(err, &notFound) {
					hb.Logger.Warn("transfer event for unknown payout", zap.String("transferRef", transfer.ID))
					c.JSON(http.StatusOK, gin.H{"received": true})
					return
				}
				hb.Logger.Error("failed to apply transfer event",
					zap.String("transferRef", transfer.ID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
				return
			}

		default:
			hb.Logger.Debug("ignoring webhook event", zap.String("type", event.Type))
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
