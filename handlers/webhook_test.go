package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chargehub/models"
	bookingSvc "chargehub/services/booking"
	"chargehub/services/payment"
	payoutSvc "chargehub/services/payout"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubVerifier accepts a fixed signature and returns a scripted event.
type stubVerifier struct {
	event *payment.Event
}

func (v *stubVerifier) Verify(_ []byte, sigHeader string) (*payment.Event, error) {
	if sigHeader != "valid-sig" {
		return nil, errors.New("signature mismatch")
	}
	return v.event, nil
}

// stubBookingService records MarkPaid calls; everything else is unused here.
type stubBookingService struct {
	bookingSvc.BookingService

	markPaidCalls []string
	markPaidErr   error
}

func (s *stubBookingService) MarkPaid(_ context.Context, bookingID, paymentRef string) (*models.Booking, error) {
	s.markPaidCalls = append(s.markPaidCalls, bookingID+"/"+paymentRef)
	if s.markPaidErr != nil {
		return nil, s.markPaidErr
	}
	return &models.Booking{ID: bookingID, IsPaid: true, PaymentRef: paymentRef}, nil
}

// stubPayoutService records transfer updates.
type stubPayoutService struct {
	payoutSvc.PayoutService

	updates   []string
	updateErr error
}

func (s *stubPayoutService) HandleTransferUpdate(_ context.Context, transferRef, status string, _ *time.Time) (*models.Payout, error) {
	s.updates = append(s.updates, transferRef+"/"+status)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &models.Payout{TransferRef: transferRef, Amount: decimal.Zero}, nil
}

func webhookRequest(t *testing.T, hb *HandlerBundle, body, sig string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/webhooks/stripe", GatewayWebhook(hb))

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewBufferString(body))
	if sig != "" {
		req.Header.Set("Stripe-Signature", sig)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	bookings := &stubBookingService{}
	hb := &HandlerBundle{
		BookingService: bookings,
		Verifier:       &stubVerifier{event: &payment.Event{Type: "payment_intent.succeeded", Object: []byte(`{}`)}},
		Logger:         zap.NewNop(),
	}

	w := webhookRequest(t, hb, `{"anything": true}`, "forged")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, bookings.markPaidCalls, "unverified payloads change nothing")

	w = webhookRequest(t, hb, `{}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookPaymentSucceededMarksBookingPaid(t *testing.T) {
	bookings := &stubBookingService{}
	hb := &HandlerBundle{
		BookingService: bookings,
		Verifier: &stubVerifier{event: &payment.Event{
			Type:   "payment_intent.succeeded",
			Object: []byte(`{"id": "pi_123", "metadata": {"booking_id": "bk-1"}}`),
		}},
		Logger: zap.NewNop(),
	}

	w := webhookRequest(t, hb, `{}`, "valid-sig")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"bk-1/pi_123"}, bookings.markPaidCalls)
}

func TestWebhookPaymentForUnknownBookingIsAcknowledged(t *testing.T) {
	bookings := &stubBookingService{markPaidErr: &bookingSvc.NotFoundError{Resource: "booking", ID: "bk-x"}}
	hb := &HandlerBundle{
		BookingService: bookings,
		Verifier: &stubVerifier{event: &payment.Event{
			Type:   "payment_intent.succeeded",
			Object: []byte(`{"id": "pi_123", "metadata": {"booking_id": "bk-x"}}`),
		}},
		Logger: zap.NewNop(),
	}

	w := webhookRequest(t, hb, `{}`, "valid-sig")
	assert.Equal(t, http.StatusOK, w.Code, "the gateway must not retry unknown references")
}

func TestWebhookPayoutEventUpdatesPayout(t *testing.T) {
	payouts := &stubPayoutService{}
	hb := &HandlerBundle{
		PayoutService: payouts,
		Verifier: &stubVerifier{event: &payment.Event{
			Type:   "payout.paid",
			Object: []byte(`{"id": "po_9", "status": "paid", "arrival_date": 1774569600}`),
		}},
		Logger: zap.NewNop(),
	}

	w := webhookRequest(t, hb, `{}`, "valid-sig")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"po_9/paid"}, payouts.updates)
}

func TestWebhookIgnoresUnhandledEventTypes(t *testing.T) {
	bookings := &stubBookingService{}
	hb := &HandlerBundle{
		BookingService: bookings,
		Verifier: &stubVerifier{event: &payment.Event{
			Type:   "customer.created",
			Object: []byte(`{"id": "cus_1"}`),
		}},
		Logger: zap.NewNop(),
	}

	w := webhookRequest(t, hb, `{}`, "valid-sig")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, bookings.markPaidCalls)
}

func TestWebhookInternalFailureReturns500(t *testing.T) {
	bookings := &stubBookingService{markPaidErr: errors.New("datastore down")}
	hb := &HandlerBundle{
		BookingService: bookings,
		Verifier: &stubVerifier{event: &payment.Event{
			Type:   "payment_intent.succeeded",
			Object: []byte(`{"id": "pi_123", "metadata": {"booking_id": "bk-1"}}`),
		}},
		Logger: zap.NewNop(),
	}

	w := webhookRequest(t, hb, `{}`, "valid-sig")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
