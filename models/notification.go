package models

import "time"

// Notification event types published to drivers and hosts.
const (
	NotifyBookingConflict = "booking_conflict"
	NotifyBookingStatus   = "booking_status"
	NotifyPayoutUpdate    = "payout_update"
)

// NotificationPayload is the task body queued for best-effort delivery.
type NotificationPayload struct {
	UserID    string            `json:"user_id"`
	Type      string            `json:"type"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
