package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingRepo "chargehub/database/repository/booking"
	"chargehub/models"
	"chargehub/services/payment"

	"github.com/shopspring/decimal"
)

var errNotFound = errors.New("not found")

// fakeBookingRepo is an in-memory BookingRepository mirroring the conditional
// update semantics of the Mongo implementation.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
	history  []models.BookingStatusRecord
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]models.Booking)}
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	copy := b
	return &copy, nil
}

func blocking(status models.BookingStatus) bool {
	for _, s := range models.BlockingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r *fakeBookingRepo) overlaps(chargerID, date string, start, end int, excludeID string) bool {
	for _, b := range r.bookings {
		if b.ChargerID != chargerID || b.BookingDate != date || b.ID == excludeID {
			continue
		}
		if !blocking(b.Status) {
			continue
		}
		if b.Start < end && b.End > start {
			return true
		}
	}
	return false
}

func (r *fakeBookingRepo) CreateWithOverlapGuard(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overlaps(b.ChargerID, b.BookingDate, b.Start, b.End, "") {
		return bookingRepo.ErrOverlap
	}
	r.bookings[b.ID] = *b
	return nil
}

func (r *fakeBookingRepo) HasOverlap(_ context.Context, chargerID, date string, start, end int, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlaps(chargerID, date, start, end, excludeID), nil
}

func (r *fakeBookingRepo) TransitionStatus(_ context.Context, id string, from, to models.BookingStatus, upd bookingRepo.TransitionUpdate) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if b.Status != from {
		return nil, bookingRepo.ErrStateChanged
	}
	b.Status = to
	if upd.CheckInTime != nil {
		b.CheckInTime = upd.CheckInTime
	}
	if upd.CheckOutTime != nil {
		b.CheckOutTime = upd.CheckOutTime
	}
	if upd.Subtotal != nil {
		b.Subtotal = *upd.Subtotal
	}
	if upd.PlatformFee != nil {
		b.PlatformFee = *upd.PlatformFee
	}
	if upd.TotalAmount != nil {
		b.TotalAmount = *upd.TotalAmount
	}
	b.UpdatedAt = time.Now()
	r.bookings[id] = b
	copy := b
	return &copy, nil
}

func (r *fakeBookingRepo) MarkPaid(_ context.Context, id, paymentRef string, paidAt time.Time) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if b.Status != models.BookingCompleted || b.IsPaid {
		return nil, bookingRepo.ErrStateChanged
	}
	b.IsPaid = true
	b.PaymentRef = paymentRef
	b.PaymentDate = &paidAt
	r.bookings[id] = b
	copy := b
	return &copy, nil
}

func (r *fakeBookingRepo) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListCompletedByUser(_ context.Context, userID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.UserID == userID && b.Status == models.BookingCompleted {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) EligibleForPayout(_ context.Context, hostID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.HostID == hostID && b.Status == models.BookingCompleted && b.IsPaid && b.PayoutID == "" {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) SumPaidSubtotalBetween(_ context.Context, hostID string, from, to time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, b := range r.bookings {
		if b.HostID != hostID || !b.IsPaid || b.PaymentDate == nil {
			continue
		}
		if b.PaymentDate.Before(from) || b.PaymentDate.After(to) {
			continue
		}
		sum = sum.Add(b.Subtotal)
	}
	return sum, nil
}

func (r *fakeBookingRepo) AppendStatusRecord(_ context.Context, rec models.BookingStatusRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, rec)
	return nil
}

// fakeStationRepo serves fixed stations and chargers.
type fakeStationRepo struct {
	stations map[string]models.ChargingStation
	chargers map[string]models.Charger
}

func (r *fakeStationRepo) GetStationByID(_ context.Context, id string) (*models.ChargingStation, error) {
	s, ok := r.stations[id]
	if !ok {
		return nil, errNotFound
	}
	return &s, nil
}

func (r *fakeStationRepo) GetChargerByID(_ context.Context, id string) (*models.Charger, error) {
	c, ok := r.chargers[id]
	if !ok {
		return nil, errNotFound
	}
	return &c, nil
}

func (r *fakeStationRepo) ListStations(_ context.Context, _ string) ([]models.ChargingStation, error) {
	var out []models.ChargingStation
	for _, s := range r.stations {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeStationRepo) ListStationsByHost(_ context.Context, hostID string) ([]models.ChargingStation, error) {
	var out []models.ChargingStation
	for _, s := range r.stations {
		if s.HostID == hostID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStationRepo) ListChargersByStation(_ context.Context, stationID string) ([]models.Charger, error) {
	var out []models.Charger
	for _, c := range r.chargers {
		if c.StationID == stationID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeStationRepo) SetChargerAvailability(_ context.Context, chargerID string, available bool) error {
	c, ok := r.chargers[chargerID]
	if !ok {
		return errNotFound
	}
	c.Available = available
	r.chargers[chargerID] = c
	return nil
}

// fakeUserRepo serves fixed users.
type fakeUserRepo struct {
	users map[string]models.User
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) SetAccountRef(_ context.Context, id, ref string) error {
	u := r.users[id]
	u.AccountRef = ref
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) SetCustomerRef(_ context.Context, id, ref string) error {
	u := r.users[id]
	u.CustomerRef = ref
	r.users[id] = u
	return nil
}

// fakeNotifier records payloads.
type fakeNotifier struct {
	mu       sync.Mutex
	payloads []models.NotificationPayload
}

func (n *fakeNotifier) Notify(_ context.Context, p models.NotificationPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, p)
	return nil
}

func (n *fakeNotifier) ofType(kind string) []models.NotificationPayload {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.NotificationPayload
	for _, p := range n.payloads {
		if p.Type == kind {
			out = append(out, p)
		}
	}
	return out
}

// fakeGateway records charge requests and returns scripted results.
type fakeGateway struct {
	mu        sync.Mutex
	charges   []payment.ChargeRequest
	chargeErr error
}

func (g *fakeGateway) CreateCharge(_ context.Context, req payment.ChargeRequest) (*payment.Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	g.charges = append(g.charges, req)
	return &payment.Charge{Ref: "pi_test_1", ClientSecret: "secret", Status: "requires_payment_method"}, nil
}

func (g *fakeGateway) CreateTransfer(_ context.Context, _ payment.TransferRequest) (*payment.Transfer, error) {
	return &payment.Transfer{Ref: "po_test_1", Status: "in_transit"}, nil
}

// fakePaymentRecorder records persisted payments.
type fakePaymentRecorder struct {
	payments []models.Payment
}

func (r *fakePaymentRecorder) CreatePayment(_ context.Context, p *models.Payment) error {
	r.payments = append(r.payments, *p)
	return nil
}
