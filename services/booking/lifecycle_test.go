package booking

import (
	"context"
	"testing"
	"time"

	"chargehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "2026-03-15", "09:00", "11:00")

	b, err := f.svc.HostAccept(ctx, b.ID, "host-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, b.Status)

	b, err = f.svc.StartSession(ctx, b.ID, "driver-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingInProgress, b.Status)
	require.NotNil(t, b.CheckInTime)
	assert.Equal(t, f.clock, b.CheckInTime.UTC())

	f.clock = f.clock.Add(90 * time.Minute)
	b, err = f.svc.StopSession(ctx, b.ID, "driver-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, b.Status)
	require.NotNil(t, b.CheckOutTime)

	// Status notifications were sent for each transition.
	assert.Len(t, f.notifier.ofType(models.NotifyBookingStatus), 3)
}

func TestStopSessionRecomputesFromWallClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// Reserved two hours but only charged for what was used.
	b := f.create(t, "2026-03-15", "09:00", "11:00")
	assert.True(t, b.Subtotal.Equal(d("20.00")))

	_, err := f.svc.HostAccept(ctx, b.ID, "host-1")
	require.NoError(t, err)
	_, err = f.svc.StartSession(ctx, b.ID, "driver-1")
	require.NoError(t, err)

	f.clock = f.clock.Add(105 * time.Minute) // 1h45m actual
	b, err = f.svc.StopSession(ctx, b.ID, "driver-1")
	require.NoError(t, err)

	assert.True(t, b.Subtotal.Equal(d("17.50")), "got %s", b.Subtotal)
	assert.True(t, b.PlatformFee.Equal(d("2.63")), "got %s", b.PlatformFee)
	assert.True(t, b.TotalAmount.Equal(d("20.13")), "got %s", b.TotalAmount)
}

func TestStartSessionWithoutHostConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "2026-03-15", "09:00", "11:00")
	require.Equal(t, models.BookingPending, b.Status)

	// Plugging in does not wait for the host to accept.
	b, err := f.svc.StartSession(ctx, b.ID, "driver-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingInProgress, b.Status)
	require.NotNil(t, b.CheckInTime)

	_, err = f.svc.StartSession(ctx, b.ID, "driver-1")
	var sErr *InvalidStateError
	assert.ErrorAs(t, err, &sErr, "a running session cannot start again")
}

func TestTransitionPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "2026-03-15", "09:00", "11:00")

	var pErr *PermissionError
	_, err := f.svc.HostAccept(ctx, b.ID, "driver-1")
	assert.ErrorAs(t, err, &pErr, "drivers cannot accept")

	_, err = f.svc.HostReject(ctx, b.ID, "someone-else")
	assert.ErrorAs(t, err, &pErr, "strangers cannot reject")

	_, err = f.svc.HostAccept(ctx, b.ID, "host-1")
	require.NoError(t, err)

	_, err = f.svc.StartSession(ctx, b.ID, "host-1")
	assert.ErrorAs(t, err, &pErr, "only the driver starts the session")

	_, err = f.svc.Cancel(ctx, b.ID, "host-1")
	assert.ErrorAs(t, err, &pErr, "only the driver cancels")
}

func TestIllegalTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "2026-03-15", "09:00", "11:00")

	var sErr *InvalidStateError
	_, err := f.svc.StopSession(ctx, b.ID, "driver-1")
	assert.ErrorAs(t, err, &sErr, "cannot stop a pending booking")

	_, err = f.svc.HostAccept(ctx, b.ID, "host-1")
	require.NoError(t, err)
	_, err = f.svc.HostAccept(ctx, b.ID, "host-1")
	assert.ErrorAs(t, err, &sErr, "cannot accept twice")
	_, err = f.svc.HostReject(ctx, b.ID, "host-1")
	assert.ErrorAs(t, err, &sErr, "cannot reject a confirmed booking")

	_, err = f.svc.StartSession(ctx, b.ID, "driver-1")
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, b.ID, "driver-1")
	assert.ErrorAs(t, err, &sErr, "cannot cancel mid-session")
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "2026-03-15", "09:00", "11:00")

	_, err := f.svc.Cancel(ctx, b.ID, "driver-1")
	require.NoError(t, err)

	var sErr *InvalidStateError
	_, err = f.svc.HostAccept(ctx, b.ID, "host-1")
	assert.ErrorAs(t, err, &sErr)
	_, err = f.svc.StartSession(ctx, b.ID, "driver-1")
	assert.ErrorAs(t, err, &sErr)
	_, err = f.svc.Cancel(ctx, b.ID, "driver-1")
	assert.ErrorAs(t, err, &sErr)
}

func TestCancelWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "2026-03-15", "09:00", "11:00")

	// 2026-03-14 10:00 is less than 24h before the 09:00 start.
	f.clock = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	_, err := f.svc.Cancel(ctx, b.ID, "driver-1")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	// A day earlier is fine.
	f.clock = time.Date(2026, 3, 13, 10, 0, 0, 0, time.UTC)
	cancelled, err := f.svc.Cancel(ctx, b.ID, "driver-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := completedBooking(t, f)

	paid, err := f.svc.MarkPaid(ctx, b.ID, "pi_123")
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, "pi_123", paid.PaymentRef)
	require.NotNil(t, paid.PaymentDate)

	// A webhook replay is acknowledged without overwriting anything.
	again, err := f.svc.MarkPaid(ctx, b.ID, "pi_456")
	require.NoError(t, err)
	assert.Equal(t, "pi_123", again.PaymentRef)
}

func TestMarkPaidRequiresCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, "2026-03-15", "09:00", "11:00")

	var sErr *InvalidStateError
	_, err := f.svc.MarkPaid(ctx, b.ID, "pi_123")
	assert.ErrorAs(t, err, &sErr)

	var nfErr *NotFoundError
	_, err = f.svc.MarkPaid(ctx, "no-such-booking", "pi_123")
	assert.ErrorAs(t, err, &nfErr)
}

func TestInitiatePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := completedBooking(t, f)

	charge, err := f.svc.InitiatePayment(ctx, b.ID, "driver-1")
	require.NoError(t, err)
	assert.Equal(t, "pi_test_1", charge.Ref)

	require.Len(t, f.gateway.charges, 1)
	req := f.gateway.charges[0]
	assert.True(t, req.Amount.Equal(b.TotalAmount))
	assert.True(t, req.DestinationAmt.Equal(b.Subtotal), "host gets the subtotal, fee stays with the platform")
	assert.Equal(t, "cus_1", req.CustomerRef)
	assert.Equal(t, "acct_1", req.DestinationRef)
	assert.Equal(t, "charge:"+b.ID, req.IdempotencyKey)
	assert.Equal(t, b.ID, req.Metadata["booking_id"])

	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, b.ID, f.payments.payments[0].BookingID)
	assert.Equal(t, "pi_test_1", f.payments.payments[0].ChargeRef)
}

func TestInitiatePaymentRejectsAlreadyPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := completedBooking(t, f)
	_, err := f.svc.MarkPaid(ctx, b.ID, "pi_1")
	require.NoError(t, err)

	_, err = f.svc.InitiatePayment(ctx, b.ID, "driver-1")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func completedBooking(t *testing.T, f *fixture) *models.Booking {
	t.Helper()
	ctx := context.Background()
	b := f.create(t, "2026-03-15", "09:00", "11:00")
	_, err := f.svc.HostAccept(ctx, b.ID, "host-1")
	require.NoError(t, err)
	_, err = f.svc.StartSession(ctx, b.ID, "driver-1")
	require.NoError(t, err)
	f.clock = f.clock.Add(2 * time.Hour)
	done, err := f.svc.StopSession(ctx, b.ID, "driver-1")
	require.NoError(t, err)
	return done
}
