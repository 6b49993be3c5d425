// File: chargehub/handlers/bundle.go
package handlers

import (
	stationRepoPkg "chargehub/database/repository/station"
	userRepoPkg "chargehub/database/repository/user"
	bookingSvc "chargehub/services/booking"
	"chargehub/services/payment"
	payoutSvc "chargehub/services/payout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerBundle groups all endpoint handlers and their dependencies into one struct.
type HandlerBundle struct {
	BookingService bookingSvc.BookingService
	PayoutService  payoutSvc.PayoutService
	StationRepo    stationRepoPkg.StationRepository
	UserRepo       userRepoPkg.UserRepository
	Verifier       payment.WebhookVerifier
	Logger         *zap.Logger

	// Booking endpoints
	CreateBookingHandler   gin.HandlerFunc
	GetBookingHandler      gin.HandlerFunc
	ListBookingsHandler    gin.HandlerFunc
	AcceptBookingHandler   gin.HandlerFunc
	RejectBookingHandler   gin.HandlerFunc
	StartSessionHandler    gin.HandlerFunc
	StopSessionHandler     gin.HandlerFunc
	CancelBookingHandler   gin.HandlerFunc
	CheckOverlapHandler    gin.HandlerFunc
	PayBookingHandler      gin.HandlerFunc
	ChargingHistoryHandler gin.HandlerFunc

	// Station endpoints
	ListStationsHandler    gin.HandlerFunc
	GetStationHandler      gin.HandlerFunc
	ListChargersHandler    gin.HandlerFunc
	SetAvailabilityHandler gin.HandlerFunc

	// Payout and earnings endpoints
	CreatePayoutHandler     gin.HandlerFunc
	EligibleBookingsHandler gin.HandlerFunc
	EarningsHandler         gin.HandlerFunc
	RecentPayoutsHandler    gin.HandlerFunc
	LinkAccountHandler      gin.HandlerFunc
	ListPaymentsHandler     gin.HandlerFunc

	// Gateway callbacks
	WebhookHandler gin.HandlerFunc
}

// WireHandlers fills the bundle's handler funcs from its services.
func WireHandlers(hb *HandlerBundle) {
	hb.CreateBookingHandler = CreateBooking(hb)
	hb.GetBookingHandler = GetBooking(hb)
	hb.ListBookingsHandler = ListBookings(hb)
	hb.AcceptBookingHandler = AcceptBooking(hb)
	hb.RejectBookingHandler = RejectBooking(hb)
	hb.StartSessionHandler = StartSession(hb)
	hb.StopSessionHandler = StopSession(hb)
	hb.CancelBookingHandler = CancelBooking(hb)
	hb.CheckOverlapHandler = CheckOverlap(hb)
	hb.PayBookingHandler = PayBooking(hb)
	hb.ChargingHistoryHandler = ChargingHistory(hb)

	hb.ListStationsHandler = ListStations(hb)
	hb.GetStationHandler = GetStation(hb)
	hb.ListChargersHandler = ListChargers(hb)
	hb.SetAvailabilityHandler = SetChargerAvailability(hb)

	hb.CreatePayoutHandler = CreatePayout(hb)
	hb.EligibleBookingsHandler = EligibleBookings(hb)
	hb.EarningsHandler = Earnings(hb)
	hb.RecentPayoutsHandler = RecentPayouts(hb)
	hb.LinkAccountHandler = LinkAccount(hb)
	hb.ListPaymentsHandler = ListPayments(hb)

	hb.WebhookHandler = GatewayWebhook(hb)
}
