package payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	payoutRepo "chargehub/database/repository/payout"
	"chargehub/models"

	"github.com/shopspring/decimal"
)

// Earnings rolls up the host's paid booking subtotals for today, the current
// week (Monday start), and the current month. Windows are computed in UTC
// against the payment date.
func (s *DefaultPayoutService) Earnings(ctx context.Context, hostID string) (*models.EarningsOverview, error) {
	now := s.now().UTC()

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := dayStart.AddDate(0, 0, -mondayOffset(dayStart.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	today, err := s.BookingRepo.SumPaidSubtotalBetween(ctx, hostID, dayStart, now)
	if err != nil {
		return nil, fmt.Errorf("failed to sum today's earnings: %w", err)
	}
	week, err := s.BookingRepo.SumPaidSubtotalBetween(ctx, hostID, weekStart, now)
	if err != nil {
		return nil, fmt.Errorf("failed to sum weekly earnings: %w", err)
	}
	month, err := s.BookingRepo.SumPaidSubtotalBetween(ctx, hostID, monthStart, now)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly earnings: %w", err)
	}

	return &models.EarningsOverview{Today: today, ThisWeek: week, ThisMonth: month}, nil
}

// UnpaidBalance sums the subtotals of the host's eligible bookings. It reads
// the same predicate CreatePayout claims from, so the balance shown always
// matches what the next payout would transfer.
func (s *DefaultPayoutService) UnpaidBalance(ctx context.Context, hostID string) (decimal.Decimal, error) {
	eligible, err := s.BookingRepo.EligibleForPayout(ctx, hostID)
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for _, b := range eligible {
		balance = balance.Add(b.Subtotal)
	}
	return balance, nil
}

// NextPayout returns the host's oldest payout still awaiting settlement, or
// nil when everything has arrived.
func (s *DefaultPayoutService) NextPayout(ctx context.Context, hostID string) (*models.Payout, error) {
	p, err := s.Repo.OldestPendingByHost(ctx, hostID)
	if errors.Is(err, payoutRepo.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// RecentPayouts returns the host's latest payouts, newest first.
func (s *DefaultPayoutService) RecentPayouts(ctx context.Context, hostID string, limit int64) ([]models.Payout, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.Repo.RecentByHost(ctx, hostID, limit)
}

func mondayOffset(d time.Weekday) int {
	if d == time.Sunday {
		return 6
	}
	return int(d) - 1
}
