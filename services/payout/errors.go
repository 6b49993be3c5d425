package payout

import "fmt"

// NoEligibleBookingsError means the host has no completed, paid, unclaimed
// bookings to aggregate.
type NoEligibleBookingsError struct {
	HostID string
}

func (e *NoEligibleBookingsError) Error() string {
	return fmt.Sprintf("host %s has no bookings eligible for payout", e.HostID)
}

// AccountError means the host cannot receive transfers yet.
type AccountError struct {
	HostID  string
	Message string
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("host %s: %s", e.HostID, e.Message)
}

// NotFoundError reports a missing payout or host.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
