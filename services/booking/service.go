package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "chargehub/database/repository/booking"
	"chargehub/models"
	"chargehub/services/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Create validates the requested window, prices it, and reserves the charger.
// Overlap detection and insertion happen atomically in the repository, so two
// concurrent requests for the same charger window cannot both succeed.
func (s *DefaultBookingService) Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if in.UserID == "" {
		return nil, &ValidationError{Message: "user id is required"}
	}
	if _, err := time.Parse("2006-01-02", in.BookingDate); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid booking date %q, expected YYYY-MM-DD", in.BookingDate)}
	}
	start, err := pricing.MinutesOfDay(in.StartTime)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid start time %q", in.StartTime)}
	}
	end, err := pricing.MinutesOfDay(in.EndTime)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid end time %q", in.EndTime)}
	}
	// Bookings must fall within a single calendar day.
	if end <= start {
		return nil, &ValidationError{Message: "end time must be after start time on the same day"}
	}

	charger, err := s.StationRepo.GetChargerByID(ctx, in.ChargerID)
	if err != nil {
		return nil, &NotFoundError{Resource: "charger", ID: in.ChargerID}
	}
	if !charger.IsActive || !charger.Available {
		return nil, &ValidationError{Message: "charger is not available for booking"}
	}
	station, err := s.StationRepo.GetStationByID(ctx, charger.StationID)
	if err != nil {
		return nil, &NotFoundError{Resource: "station", ID: charger.StationID}
	}
	if station.Status != models.StationOpen {
		return nil, &ValidationError{Message: "station is not open for bookings"}
	}
	if !charger.Open247 {
		if err := withinOpeningHours(station, start, end); err != nil {
			return nil, err
		}
	}

	subtotal, fee, total := pricing.Quote(charger.Price, pricing.DurationHours(start, end), s.FeeRate)

	nowUTC := s.now().UTC()
	b := &models.Booking{
		ID:          uuid.New().String(),
		UserID:      in.UserID,
		HostID:      station.HostID,
		StationID:   station.ID,
		ChargerID:   charger.ID,
		PlugID:      in.PlugID,
		Status:      models.BookingPending,
		BookingDate: in.BookingDate,
		Start:       start,
		End:         end,
		HourlyRate:  charger.Price,
		Subtotal:    subtotal,
		PlatformFee: fee,
		TotalAmount: total,
		Currency:    s.Currency,
		CreatedAt:   nowUTC,
		UpdatedAt:   nowUTC,
	}

	if err := s.Repo.CreateWithOverlapGuard(ctx, b); err != nil {
		if errors.Is(err, bookingRepo.ErrOverlap) {
			s.notify(ctx, in.UserID, models.NotifyBookingConflict, b.ID,
				fmt.Sprintf("Charger %s is already booked for the requested window", charger.ID))
			return nil, &ConflictError{ChargerID: charger.ID, Message: "requested window overlaps an existing booking"}
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.recordStatus(ctx, b.ID, "", models.BookingPending, in.UserID, "booking created")
	s.Logger.Info("booking created",
		zap.String("bookingID", b.ID),
		zap.String("chargerID", charger.ID),
		zap.String("total", b.TotalAmount.String()))
	return b, nil
}

// Get returns a booking visible to its driver or its host.
func (s *DefaultBookingService) Get(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, err
	}
	if b.UserID != actorID && b.HostID != actorID {
		return nil, &PermissionError{Message: "booking belongs to another user"}
	}
	return b, nil
}

// ListForUser returns the user's bookings, newest first.
func (s *DefaultBookingService) ListForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// ChargingHistory returns completed sessions with estimated energy usage.
// Usage is the charger power rating in kW times billed hours.
func (s *DefaultBookingService) ChargingHistory(ctx context.Context, userID string) ([]ChargingHistoryEntry, error) {
	completed, err := s.Repo.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries := make([]ChargingHistoryEntry, 0, len(completed))
	for _, b := range completed {
		hours := pricing.DurationHours(b.Start, b.End)
		if b.CheckInTime != nil && b.CheckOutTime != nil {
			hours = pricing.WallClockHours(*b.CheckInTime, *b.CheckOutTime)
		}
		entry := ChargingHistoryEntry{
			BookingID:     b.ID,
			BookingDate:   b.BookingDate,
			DurationHours: hours,
			Subtotal:      b.Subtotal,
			PlatformFee:   b.PlatformFee,
			TotalAmount:   b.TotalAmount,
		}
		if charger, err := s.StationRepo.GetChargerByID(ctx, b.ChargerID); err == nil {
			entry.UsageKWh = charger.PowerRating.Mul(hours).Round(2)
		}
		if station, err := s.StationRepo.GetStationByID(ctx, b.StationID); err == nil {
			entry.StationName = station.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// notify enqueues a notification; delivery failures are logged, never fatal.
func (s *DefaultBookingService) notify(ctx context.Context, userID, kind, bookingID, message string) {
	if s.Notifier == nil {
		return
	}
	payload := models.NotificationPayload{
		UserID:    userID,
		Type:      kind,
		Message:   message,
		Data:      map[string]string{"booking_id": bookingID},
		CreatedAt: s.now().UTC(),
	}
	if err := s.Notifier.Notify(ctx, payload); err != nil {
		s.Logger.Warn("failed to enqueue notification",
			zap.String("type", kind), zap.String("bookingID", bookingID), zap.Error(err))
	}
}

func (s *DefaultBookingService) recordStatus(ctx context.Context, bookingID string, from, to models.BookingStatus, actorID, reason string) {
	rec := models.BookingStatusRecord{
		ID:        uuid.New().String(),
		BookingID: bookingID,
		OldStatus: from,
		NewStatus: to,
		ChangedBy: actorID,
		Reason:    reason,
		Timestamp: s.now().UTC(),
	}
	if err := s.Repo.AppendStatusRecord(ctx, rec); err != nil {
		s.Logger.Warn("failed to record status change",
			zap.String("bookingID", bookingID), zap.Error(err))
	}
}
