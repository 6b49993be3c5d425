package payout

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingRepo "chargehub/database/repository/booking"
	payoutRepo "chargehub/database/repository/payout"
	"chargehub/models"
	"chargehub/services/payment"

	"github.com/shopspring/decimal"
)

var errNotFound = errors.New("not found")

// fakeBookingStore implements the booking repository surface the payout
// service touches. Claim semantics mirror the Mongo transaction: all ids must
// still be unclaimed or the claim fails as a unit.
type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

func newFakeBookingStore(bookings ...models.Booking) *fakeBookingStore {
	s := &fakeBookingStore{bookings: make(map[string]models.Booking)}
	for _, b := range bookings {
		s.bookings[b.ID] = b
	}
	return s
}

func (s *fakeBookingStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	copy := b
	return &copy, nil
}

func (s *fakeBookingStore) CreateWithOverlapGuard(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = *b
	return nil
}

func (s *fakeBookingStore) HasOverlap(context.Context, string, string, int, int, string) (bool, error) {
	return false, nil
}

func (s *fakeBookingStore) TransitionStatus(_ context.Context, id string, from, to models.BookingStatus, _ bookingRepo.TransitionUpdate) (*models.Booking, error) {
	return nil, errors.New("not used")
}

func (s *fakeBookingStore) MarkPaid(_ context.Context, id, ref string, paidAt time.Time) (*models.Booking, error) {
	return nil, errors.New("not used")
}

func (s *fakeBookingStore) ListByUser(context.Context, string) ([]models.Booking, error) {
	return nil, nil
}

func (s *fakeBookingStore) ListCompletedByUser(context.Context, string) ([]models.Booking, error) {
	return nil, nil
}

func (s *fakeBookingStore) EligibleForPayout(_ context.Context, hostID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.HostID == hostID && b.Status == models.BookingCompleted && b.IsPaid && b.PayoutID == "" {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) SumPaidSubtotalBetween(_ context.Context, hostID string, from, to time.Time) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, b := range s.bookings {
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

func (s *fakeBookingStore) AppendStatusRecord(context.Context, models.BookingStatusRecord) error {
	return nil
}

// fakePayoutStore implements PayoutRepository against the same booking map so
// claims are visible to eligibility queries.
type fakePayoutStore struct {
	mu       sync.Mutex
	payouts  map[string]models.Payout
	payments []models.Payment
	bookings *fakeBookingStore
}

func newFakePayoutStore(bookings *fakeBookingStore) *fakePayoutStore {
	return &fakePayoutStore{payouts: make(map[string]models.Payout), bookings: bookings}
}

func (s *fakePayoutStore) GetByID(_ context.Context, id string) (*models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payouts[id]
	if !ok {
		return nil, payoutRepo.ErrNotFound
	}
	copy := p
	return &copy, nil
}

func (s *fakePayoutStore) GetByTransferRef(_ context.Context, ref string) (*models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payouts {
		if p.TransferRef == ref {
			copy := p
			return &copy, nil
		}
	}
	return nil, payoutRepo.ErrNotFound
}

func (s *fakePayoutStore) ClaimAndCreate(_ context.Context, p *models.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings.mu.Lock()
	defer s.bookings.mu.Unlock()

	for _, id := range p.BookingIDs {
		b, ok := s.bookings.bookings[id]
		if !ok || b.PayoutID != "" || b.Status != models.BookingCompleted || !b.IsPaid {
			return payoutRepo.ErrBookingsClaimed
		}
	}
	for _, id := range p.BookingIDs {
		b := s.bookings.bookings[id]
		b.PayoutID = p.ID
		s.bookings.bookings[id] = b
	}
	s.payouts[p.ID] = *p
	return nil
}

func (s *fakePayoutStore) Release(_ context.Context, payoutID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings.mu.Lock()
	defer s.bookings.mu.Unlock()

	p, ok := s.payouts[payoutID]
	if !ok {
		return payoutRepo.ErrNotFound
	}
	for _, id := range p.BookingIDs {
		b := s.bookings.bookings[id]
		b.PayoutID = ""
		s.bookings.bookings[id] = b
	}
	delete(s.payouts, payoutID)
	return nil
}

func (s *fakePayoutStore) ReleaseBookings(_ context.Context, payoutID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings.mu.Lock()
	defer s.bookings.mu.Unlock()

	for id, b := range s.bookings.bookings {
		if b.PayoutID == payoutID {
			b.PayoutID = ""
			s.bookings.bookings[id] = b
		}
	}
	return nil
}

func (s *fakePayoutStore) SetTransfer(_ context.Context, payoutID, transferRef string, status models.PayoutStatus, arrival *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payouts[payoutID]
	if !ok {
		return payoutRepo.ErrNotFound
	}
	p.TransferRef = transferRef
	p.Status = status
	p.ExpectedArrival = arrival
	s.payouts[payoutID] = p
	return nil
}

func (s *fakePayoutStore) UpdateStatus(_ context.Context, payoutID string, status models.PayoutStatus, arrival *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payouts[payoutID]
	if !ok {
		return payoutRepo.ErrNotFound
	}
	p.Status = status
	if arrival != nil {
		p.ArrivalDate = arrival
	}
	s.payouts[payoutID] = p
	return nil
}

func (s *fakePayoutStore) OldestPendingByHost(_ context.Context, hostID string) (*models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var oldest *models.Payout
	for _, p := range s.payouts {
		if p.HostID != hostID {
			continue
		}
		if p.Status != models.PayoutPending && p.Status != models.PayoutInTransit {
			continue
		}
		copy := p
		if oldest == nil || copy.CreatedAt.Before(oldest.CreatedAt) {
			oldest = &copy
		}
	}
	if oldest == nil {
		return nil, payoutRepo.ErrNotFound
	}
	return oldest, nil
}

func (s *fakePayoutStore) PendingWithoutTransfer(_ context.Context, hostID string) (*models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var oldest *models.Payout
	for _, p := range s.payouts {
		if p.HostID != hostID || p.Status != models.PayoutPending || p.TransferRef != "" {
			continue
		}
		copy := p
		if oldest == nil || copy.CreatedAt.Before(oldest.CreatedAt) {
			oldest = &copy
		}
	}
	if oldest == nil {
		return nil, payoutRepo.ErrNotFound
	}
	return oldest, nil
}

func (s *fakePayoutStore) RecentByHost(_ context.Context, hostID string, limit int64) ([]models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Payout
	for _, p := range s.payouts {
		if p.HostID == hostID {
			out = append(out, p)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakePayoutStore) CreatePayment(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, *p)
	return nil
}

func (s *fakePayoutStore) ListPaymentsByUser(_ context.Context, userID string) ([]models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeUserStore serves fixed users.
type fakeUserStore struct {
	users map[string]models.User
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errNotFound
	}
	return &u, nil
}

func (s *fakeUserStore) SetAccountRef(context.Context, string, string) error  { return nil }
func (s *fakeUserStore) SetCustomerRef(context.Context, string, string) error { return nil }

// scriptedGateway records transfer requests and fails on demand.
type scriptedGateway struct {
	mu          sync.Mutex
	transfers   []payment.TransferRequest
	transferErr error
	status      string
}

func (g *scriptedGateway) CreateCharge(context.Context, payment.ChargeRequest) (*payment.Charge, error) {
	return nil, errors.New("not used")
}

func (g *scriptedGateway) CreateTransfer(_ context.Context, req payment.TransferRequest) (*payment.Transfer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.transferErr != nil {
		return nil, g.transferErr
	}
	g.transfers = append(g.transfers, req)
	status := g.status
	if status == "" {
		status = "in_transit"
	}
	return &payment.Transfer{Ref: "po_test_1", Status: status}, nil
}

// silentNotifier drops everything.
type silentNotifier struct{}

func (silentNotifier) Notify(context.Context, models.NotificationPayload) error { return nil }
