package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GatewayError is a business rejection from the payment provider (declined
// card, invalid account). It is never retried.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway rejected operation (%s): %s", e.Code, e.Message)
}

// InfrastructureError is a transient transport failure (timeout, connection
// reset). Callers may retry with backoff; requests carry idempotency keys so
// a retried call is safe.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// ChargeRequest asks the gateway to collect a driver payment.
type ChargeRequest struct {
	Amount         decimal.Decimal
	Currency       string
	CustomerRef    string
	DestinationRef string          // host connected account, optional
	DestinationAmt decimal.Decimal // host portion when DestinationRef set
	Metadata       map[string]string
	IdempotencyKey string
}

// Charge is the gateway's handle for a created charge.
type Charge struct {
	Ref          string
	ClientSecret string
	Status       string
}

// TransferRequest asks the gateway to move funds to a host's account.
type TransferRequest struct {
	Amount         decimal.Decimal
	Currency       string
	AccountRef     string
	Metadata       map[string]string
	IdempotencyKey string
}

// Transfer is the gateway's handle for a created payout transfer.
type Transfer struct {
	Ref             string
	Status          string
	ExpectedArrival *time.Time
}

// Gateway is the narrow boundary the booking and payout flows call into.
// Implementations are injected; nothing in the core touches a process-wide
// payment client.
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	CreateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error)
}
