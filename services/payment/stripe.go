package payment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway on Stripe Connect. The API client is built
// from an injected key so tests and callers never depend on global state.
type StripeGateway struct {
	api    *client.API
	logger *zap.Logger
}

// NewStripeGateway constructs a StripeGateway with its own API client.
func NewStripeGateway(secretKey string, logger *zap.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, logger: logger}
}

func (g *StripeGateway) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:   stripe.Int64(minorUnits(req.Amount)),
		Currency: stripe.String(req.Currency),
	}
	if req.CustomerRef != "" {
		params.Customer = stripe.String(req.CustomerRef)
	}
	if req.DestinationRef != "" {
		params.TransferData = &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(req.DestinationRef),
			Amount:      stripe.Int64(minorUnits(req.DestinationAmt)),
		}
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, g.wrapErr("create charge", err)
	}
	return &Charge{
		Ref:          pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

func (g *StripeGateway) CreateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error) {
	params := &stripe.PayoutParams{
		Params: stripe.Params{
			Context:       ctx,
			StripeAccount: stripe.String(req.AccountRef),
		},
		Amount:   stripe.Int64(minorUnits(req.Amount)),
		Currency: stripe.String(req.Currency),
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	po, err := g.api.Payouts.New(params)
	if err != nil {
		return nil, g.wrapErr("create transfer", err)
	}

	t := &Transfer{
		Ref:    po.ID,
		Status: string(po.Status),
	}
	if po.ArrivalDate > 0 {
		arrival := time.Unix(po.ArrivalDate, 0).UTC()
		t.ExpectedArrival = &arrival
	}
	return t, nil
}

// wrapErr sorts a stripe failure into the business/infrastructure taxonomy.
func (g *StripeGateway) wrapErr(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		msg := stripeErr.Msg
		if msg == "" {
			msg = stripeErr.Error()
		}
		g.logger.Warn("stripe rejected operation",
			zap.String("op", op),
			zap.String("code", string(stripeErr.Code)),
			zap.String("type", string(stripeErr.Type)))
		return &GatewayError{Code: string(stripeErr.Code), Message: msg}
	}
	g.logger.Error("stripe call failed", zap.String("op", op), zap.Error(err))
	return &InfrastructureError{Op: op, Err: err}
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
