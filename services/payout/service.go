// Package payout aggregates a host's paid bookings into external transfers
// and serves the host earnings dashboard.
package payout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bookingRepo "chargehub/database/repository/booking"
	payoutRepo "chargehub/database/repository/payout"
	userRepo "chargehub/database/repository/user"
	"chargehub/models"
	"chargehub/services/notification"
	"chargehub/services/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PayoutService owns payout aggregation and host earnings reporting.
type PayoutService interface {
	// EligibleBookings lists the host's completed, paid bookings that no
	// payout has claimed.
	EligibleBookings(ctx context.Context, hostID string) ([]models.Booking, error)
	// CreatePayout claims all currently eligible bookings, creates one payout
	// for their summed subtotals, and submits the transfer to the gateway.
	CreatePayout(ctx context.Context, hostID string) (*models.Payout, error)
	// HandleTransferUpdate applies a gateway status event to the payout that
	// owns the transfer reference.
	HandleTransferUpdate(ctx context.Context, transferRef, gatewayStatus string, arrival *time.Time) (*models.Payout, error)
	Earnings(ctx context.Context, hostID string) (*models.EarningsOverview, error)
	UnpaidBalance(ctx context.Context, hostID string) (decimal.Decimal, error)
	NextPayout(ctx context.Context, hostID string) (*models.Payout, error)
	RecentPayouts(ctx context.Context, hostID string, limit int64) ([]models.Payout, error)
	// Payments lists the driver's charge-side payment records, newest first.
	Payments(ctx context.Context, userID string) ([]models.Payment, error)
	// LinkAccount stores the host's gateway connected-account reference.
	LinkAccount(ctx context.Context, hostID, accountRef string) error
}

// DefaultPayoutService implements PayoutService.
type DefaultPayoutService struct {
	Repo        payoutRepo.PayoutRepository
	BookingRepo bookingRepo.BookingRepository
	UserRepo    userRepo.UserRepository
	Gateway     payment.Gateway
	Notifier    notification.NotificationService
	Currency    string
	Logger      *zap.Logger

	// Now is a clock override for tests; nil means time.Now.
	Now func() time.Time
}

func (s *DefaultPayoutService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultPayoutService) EligibleBookings(ctx context.Context, hostID string) ([]models.Booking, error) {
	return s.BookingRepo.EligibleForPayout(ctx, hostID)
}

func (s *DefaultPayoutService) Payments(ctx context.Context, userID string) ([]models.Payment, error) {
	return s.Repo.ListPaymentsByUser(ctx, userID)
}

// LinkAccount validates the host exists before storing the account reference.
func (s *DefaultPayoutService) LinkAccount(ctx context.Context, hostID, accountRef string) error {
	if accountRef == "" {
		return &AccountError{HostID: hostID, Message: "account reference is required"}
	}
	if _, err := s.UserRepo.GetByID(ctx, hostID); err != nil {
		return &NotFoundError{Resource: "host", ID: hostID}
	}
	return s.UserRepo.SetAccountRef(ctx, hostID, accountRef)
}

// CreatePayout runs in three steps: claim the eligible bookings and create
// the payout document in one transaction, submit the transfer to the gateway,
// then record the transfer reference. A gateway rejection releases the claim
// so the bookings return to the eligible pool. The gateway call carries an
// idempotency key derived from the claimed booking set, so a retried call
// after a transport failure cannot move the money twice.
//
// A transport failure leaves a pending payout with no transfer reference and
// its bookings still claimed. The next call finds that payout and resubmits
// its transfer under the same idempotency key before looking at the eligible
// pool, so stranded money drains on retry instead of sitting forever.
func (s *DefaultPayoutService) CreatePayout(ctx context.Context, hostID string) (*models.Payout, error) {
	host, err := s.UserRepo.GetByID(ctx, hostID)
	if err != nil {
		return nil, &NotFoundError{Resource: "host", ID: hostID}
	}
	if host.AccountRef == "" {
		return nil, &AccountError{HostID: hostID, Message: "no connected payout account"}
	}

	stuck, err := s.Repo.PendingWithoutTransfer(ctx, hostID)
	if err == nil {
		s.Logger.Info("resuming payout with unsubmitted transfer",
			zap.String("payoutID", stuck.ID), zap.String("hostID", hostID))
		return s.submitTransfer(ctx, stuck)
	}
	if !errors.Is(err, payoutRepo.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for unsubmitted payouts: %w", err)
	}

	eligible, err := s.BookingRepo.EligibleForPayout(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to load eligible bookings: %w", err)
	}
	if len(eligible) == 0 {
		return nil, &NoEligibleBookingsError{HostID: hostID}
	}

	// Hosts keep the subtotal; the platform fee was retained at charge time.
	amount := decimal.Zero
	ids := make([]string, 0, len(eligible))
	for _, b := range eligible {
		amount = amount.Add(b.Subtotal)
		ids = append(ids, b.ID)
	}

	p := &models.Payout{
		ID:           uuid.New().String(),
		HostID:       hostID,
		Amount:       amount,
		Currency:     s.Currency,
		AccountRef:   host.AccountRef,
		Status:       models.PayoutPending,
		BookingIDs:   ids,
		BookingCount: len(ids),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.Repo.ClaimAndCreate(ctx, p); err != nil {
		if errors.Is(err, payoutRepo.ErrBookingsClaimed) {
			return nil, &NoEligibleBookingsError{HostID: hostID}
		}
		return nil, fmt.Errorf("failed to claim bookings for payout: %w", err)
	}

	return s.submitTransfer(ctx, p)
}

// submitTransfer sends the payout's transfer to the gateway and records the
// result. The idempotency key is derived from the claimed booking set, so
// resubmitting the same payout after a transport failure cannot move the
// money twice.
func (s *DefaultPayoutService) submitTransfer(ctx context.Context, p *models.Payout) (*models.Payout, error) {
	transfer, err := s.Gateway.CreateTransfer(ctx, payment.TransferRequest{
		Amount:     p.Amount,
		Currency:   p.Currency,
		AccountRef: p.AccountRef,
		Metadata: map[string]string{
			"payout_id":     p.ID,
			"host_id":       p.HostID,
			"booking_count": fmt.Sprintf("%d", len(p.BookingIDs)),
			"booking_ids":   strings.Join(p.BookingIDs, ","),
		},
		IdempotencyKey: transferKey(p.HostID, p.BookingIDs),
	})
	if err != nil {
		var gwErr *payment.GatewayError
		if errors.As(err, &gwErr) {
			// Business rejection: give the bookings back.
			if relErr := s.Repo.Release(ctx, p.ID); relErr != nil {
				s.Logger.Error("failed to release payout claim after gateway rejection",
					zap.String("payoutID", p.ID), zap.Error(relErr))
			}
			return nil, fmt.Errorf("gateway rejected payout for host %s: %w", p.HostID, err)
		}
		// Transport failure: the transfer may or may not exist. Keep the
		// claim; the next CreatePayout resubmits under the same key.
		s.Logger.Error("transfer submission failed, payout left pending",
			zap.String("payoutID", p.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to submit transfer for payout %s: %w", p.ID, err)
	}

	status := models.PayoutInTransit
	if transfer.Status == "paid" {
		status = models.PayoutPaid
	}
	if err := s.Repo.SetTransfer(ctx, p.ID, transfer.Ref, status, transfer.ExpectedArrival); err != nil {
		s.Logger.Error("failed to record transfer on payout",
			zap.String("payoutID", p.ID), zap.String("transferRef", transfer.Ref), zap.Error(err))
	}
	p.TransferRef = transfer.Ref
	p.Status = status
	p.ExpectedArrival = transfer.ExpectedArrival

	s.notifyHost(ctx, p.HostID, p.ID, fmt.Sprintf("Payout of %s %s submitted for %d bookings",
		p.Amount.StringFixed(2), strings.ToUpper(p.Currency), len(p.BookingIDs)))
	s.Logger.Info("payout transfer submitted",
		zap.String("payoutID", p.ID),
		zap.String("hostID", p.HostID),
		zap.String("amount", p.Amount.String()),
		zap.Int("bookings", len(p.BookingIDs)))
	return p, nil
}

// HandleTransferUpdate maps the gateway's transfer status onto the payout.
// Unknown references return NotFoundError; callers decide whether that is a
// hard error or an event for some other system.
func (s *DefaultPayoutService) HandleTransferUpdate(ctx context.Context, transferRef, gatewayStatus string, arrival *time.Time) (*models.Payout, error) {
	p, err := s.Repo.GetByTransferRef(ctx, transferRef)
	if err != nil {
		if errors.Is(err, payoutRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "payout", ID: transferRef}
		}
		return nil, err
	}

	status, ok := payoutStatusFromGateway(gatewayStatus)
	if !ok {
		s.Logger.Warn("ignoring unknown transfer status",
			zap.String("transferRef", transferRef), zap.String("status", gatewayStatus))
		return p, nil
	}
	if p.Status == status {
		return p, nil
	}

	if err := s.Repo.UpdateStatus(ctx, p.ID, status, arrival); err != nil {
		return nil, fmt.Errorf("failed to update payout %s: %w", p.ID, err)
	}
	p.Status = status
	if arrival != nil {
		p.ArrivalDate = arrival
	}

	if status == models.PayoutFailed {
		// Failed transfers give the bookings back for the next run. The
		// payout itself stays in failed status as history.
		if err := s.Repo.ReleaseBookings(ctx, p.ID); err != nil {
			s.Logger.Error("failed to release bookings of failed payout",
				zap.String("payoutID", p.ID), zap.Error(err))
		}
	}

	s.notifyHost(ctx, p.HostID, p.ID, fmt.Sprintf("Your payout is now %s", status))
	return p, nil
}

func payoutStatusFromGateway(status string) (models.PayoutStatus, bool) {
	switch status {
	case "pending":
		return models.PayoutPending, true
	case "in_transit":
		return models.PayoutInTransit, true
	case "paid":
		return models.PayoutPaid, true
	case "failed":
		return models.PayoutFailed, true
	case "canceled", "cancelled":
		return models.PayoutCancelled, true
	default:
		return "", false
	}
}

// transferKey derives a deterministic idempotency key from the claimed
// booking set, independent of payout document ids.
func transferKey(hostID string, bookingIDs []string) string {
	sorted := append([]string(nil), bookingIDs...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(hostID + "|" + strings.Join(sorted, ",")))
	return "payout:" + hex.EncodeToString(sum[:16])
}

func (s *DefaultPayoutService) notifyHost(ctx context.Context, hostID, payoutID, message string) {
	if s.Notifier == nil {
		return
	}
	payload := models.NotificationPayload{
		UserID:    hostID,
		Type:      models.NotifyPayoutUpdate,
		Message:   message,
		Data:      map[string]string{"payout_id": payoutID},
		CreatedAt: s.now().UTC(),
	}
	if err := s.Notifier.Notify(ctx, payload); err != nil {
		s.Logger.Warn("failed to enqueue payout notification",
			zap.String("payoutID", payoutID), zap.Error(err))
	}
}
