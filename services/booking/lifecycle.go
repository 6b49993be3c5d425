package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "chargehub/database/repository/booking"
	"chargehub/models"
	"chargehub/services/payment"
	"chargehub/services/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const cancellationNoticeHours = 24

// HostAccept moves a pending booking to confirmed. Only the host of the
// booked station may accept.
func (s *DefaultBookingService) HostAccept(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.BookingPending, models.BookingConfirmed, bookingRepo.TransitionUpdate{},
		func(b *models.Booking) error { return requireHost(b, actorID) }, "accepted by host")
}

// HostReject cancels a pending booking on the host's behalf.
func (s *DefaultBookingService) HostReject(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.BookingPending, models.BookingCancelled, bookingRepo.TransitionUpdate{},
		func(b *models.Booking) error { return requireHost(b, actorID) }, "rejected by host")
}

// StartSession moves a pending or confirmed booking to in_progress and stamps
// the check-in time. Only the booking's driver may start; a session that is
// already in_progress, completed, or cancelled cannot start again.
func (s *DefaultBookingService) StartSession(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, err
	}
	if err := requireDriver(b, actorID); err != nil {
		return nil, err
	}
	if !b.Status.CanTransition(models.BookingInProgress) {
		return nil, &InvalidStateError{Current: b.Status, Attempted: "start session"}
	}

	checkIn := s.now().UTC()
	return s.transition(ctx, bookingID, b.Status, models.BookingInProgress,
		bookingRepo.TransitionUpdate{CheckInTime: &checkIn}, nil, "session started")
}

// StopSession completes an in-progress booking. The charge is recomputed
// from the actual wall-clock duration between check-in and check-out; a
// driver who stays longer than reserved pays for the time used.
func (s *DefaultBookingService) StopSession(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, err
	}
	if err := requireDriver(b, actorID); err != nil {
		return nil, err
	}
	if !b.Status.CanTransition(models.BookingCompleted) {
		return nil, &InvalidStateError{Current: b.Status, Attempted: "stop session"}
	}
	if b.CheckInTime == nil {
		return nil, &ValidationError{Message: "session was never started"}
	}

	checkOut := s.now().UTC()
	hours := pricing.WallClockHours(*b.CheckInTime, checkOut)
	subtotal, fee, total := pricing.Quote(b.HourlyRate, hours, s.FeeRate)

	upd := bookingRepo.TransitionUpdate{
		CheckOutTime: &checkOut,
		Subtotal:     &subtotal,
		PlatformFee:  &fee,
		TotalAmount:  &total,
	}
	return s.transition(ctx, bookingID, models.BookingInProgress, models.BookingCompleted, upd, nil, "session stopped")
}

// Cancel lets the driver cancel a pending or confirmed booking, provided the
// scheduled start is more than 24 hours away.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, err
	}
	if err := requireDriver(b, actorID); err != nil {
		return nil, err
	}
	if !b.Status.CanTransition(models.BookingCancelled) {
		return nil, &InvalidStateError{Current: b.Status, Attempted: "cancel"}
	}

	startAt, err := scheduledStart(b)
	if err != nil {
		return nil, err
	}
	if startAt.Sub(s.now().UTC()) < cancellationNoticeHours*time.Hour {
		return nil, &ValidationError{Message: "bookings can only be cancelled more than 24 hours before the scheduled start"}
	}

	return s.transition(ctx, bookingID, b.Status, models.BookingCancelled, bookingRepo.TransitionUpdate{}, nil, "cancelled by driver")
}

// MarkPaid records the gateway charge against a completed booking. Marking
// an already-paid booking with the same reference is a no-op success, so a
// replayed webhook cannot double-count revenue.
func (s *DefaultBookingService) MarkPaid(ctx context.Context, bookingID, paymentRef string) (*models.Booking, error) {
	paidAt := s.now().UTC()
	b, err := s.Repo.MarkPaid(ctx, bookingID, paymentRef, paidAt)
	if err == nil {
		s.notify(ctx, b.UserID, models.NotifyBookingStatus, b.ID, "Payment received for your charging session")
		return b, nil
	}
	if errors.Is(err, bookingRepo.ErrStateChanged) {
		current, getErr := s.Repo.GetByID(ctx, bookingID)
		if getErr != nil {
			return nil, getErr
		}
		if current.IsPaid {
			return current, nil
		}
		return nil, &InvalidStateError{Current: current.Status, Attempted: "mark paid"}
	}
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, &NotFoundError{Resource: "booking", ID: bookingID}
	}
	return nil, err
}

// InitiatePayment creates a gateway charge for a completed, unpaid booking
// and persists a payment record. The charge routes the host's share to the
// host's connected account; the platform keeps the fee.
func (s *DefaultBookingService) InitiatePayment(ctx context.Context, bookingID, actorID string) (*payment.Charge, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, err
	}
	if err := requireDriver(b, actorID); err != nil {
		return nil, err
	}
	if b.Status != models.BookingCompleted {
		return nil, &InvalidStateError{Current: b.Status, Attempted: "pay"}
	}
	if b.IsPaid {
		return nil, &ValidationError{Message: "booking is already paid"}
	}

	driver, err := s.UserRepo.GetByID(ctx, b.UserID)
	if err != nil {
		return nil, &NotFoundError{Resource: "user", ID: b.UserID}
	}
	host, err := s.UserRepo.GetByID(ctx, b.HostID)
	if err != nil {
		return nil, &NotFoundError{Resource: "user", ID: b.HostID}
	}

	req := payment.ChargeRequest{
		Amount:         b.TotalAmount,
		Currency:       b.Currency,
		CustomerRef:    driver.CustomerRef,
		DestinationRef: host.AccountRef,
		DestinationAmt: b.Subtotal,
		Metadata:       map[string]string{"booking_id": b.ID},
		IdempotencyKey: "charge:" + b.ID,
	}
	charge, err := s.Gateway.CreateCharge(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to initiate payment for booking %s: %w", b.ID, err)
	}

	rec := &models.Payment{
		ID:          uuid.New().String(),
		UserID:      b.UserID,
		BookingID:   b.ID,
		Amount:      b.TotalAmount,
		PlatformFee: b.PlatformFee,
		HostPortion: b.Subtotal,
		Currency:    b.Currency,
		Status:      charge.Status,
		ChargeRef:   charge.Ref,
		CreatedAt:   s.now().UTC(),
	}
	if s.PaymentRepo != nil {
		if err := s.PaymentRepo.CreatePayment(ctx, rec); err != nil {
			s.Logger.Warn("failed to persist payment record",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
	}
	return charge, nil
}

// transition runs the permission check, enforces the transition table, and
// applies the conditional update. A concurrent status change surfaces as
// InvalidStateError with the status that won.
func (s *DefaultBookingService) transition(ctx context.Context, bookingID string, from, to models.BookingStatus,
	upd bookingRepo.TransitionUpdate, check func(*models.Booking) error, reason string) (*models.Booking, error) {

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, err
	}
	if check != nil {
		if err := check(b); err != nil {
			return nil, err
		}
	}
	if b.Status != from || !from.CanTransition(to) {
		return nil, &InvalidStateError{Current: b.Status, Attempted: string(to)}
	}

	updated, err := s.Repo.TransitionStatus(ctx, bookingID, from, to, upd)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStateChanged) {
			current, getErr := s.Repo.GetByID(ctx, bookingID)
			if getErr != nil {
				return nil, getErr
			}
			return nil, &InvalidStateError{Current: current.Status, Attempted: string(to)}
		}
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, err
	}

	s.recordStatus(ctx, bookingID, from, to, "", reason)
	s.notify(ctx, updated.UserID, models.NotifyBookingStatus, updated.ID,
		fmt.Sprintf("Your booking is now %s", to))
	s.Logger.Info("booking transitioned",
		zap.String("bookingID", bookingID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return updated, nil
}

func requireDriver(b *models.Booking, actorID string) error {
	if b.UserID != actorID {
		return &PermissionError{Message: "only the booking's driver may perform this action"}
	}
	return nil
}

func requireHost(b *models.Booking, actorID string) error {
	if b.HostID != actorID {
		return &PermissionError{Message: "only the station host may perform this action"}
	}
	return nil
}

func scheduledStart(b *models.Booking) (time.Time, error) {
	day, err := time.Parse("2006-01-02", b.BookingDate)
	if err != nil {
		return time.Time{}, &ValidationError{Message: "booking has an invalid date"}
	}
	return day.Add(time.Duration(b.Start) * time.Minute), nil
}
