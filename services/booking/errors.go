package booking

import (
	"fmt"

	"chargehub/models"
)

// ValidationError reports malformed or business-invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ConflictError reports a scheduling overlap on a charger.
type ConflictError struct {
	ChargerID string
	Message   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking conflict on charger %s: %s", e.ChargerID, e.Message)
}

// InvalidStateError reports an illegal lifecycle transition attempt.
type InvalidStateError struct {
	Current   models.BookingStatus
	Attempted string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a booking in status %q", e.Attempted, e.Current)
}

// PermissionError reports an actor/role mismatch.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Message)
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
