// Package pricing holds the time and money arithmetic for the marketplace.
// All monetary values are fixed-point decimals; floats would drift across
// repeated fee computations.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	sixty          = decimal.NewFromInt(60)
	minutesPerDay  = 24 * 60
	secondsPerHour = decimal.NewFromInt(3600)
)

// MinutesOfDay parses a wall-clock "15:04" string into minutes from midnight.
func MinutesOfDay(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ClockString renders minutes from midnight back to "15:04".
func ClockString(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return time.Date(0, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format("15:04")
}

// DurationHours computes the scheduled duration between two minutes-of-day
// marks as decimal hours. When end precedes start the end is treated as the
// following calendar day; whether a caller accepts such a window is the
// caller's decision.
func DurationHours(start, end int) decimal.Decimal {
	minutes := end - start
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(4)
}

// WallClockHours computes the actual elapsed duration between check-in and
// check-out as decimal hours.
func WallClockHours(checkIn, checkOut time.Time) decimal.Decimal {
	seconds := decimal.NewFromFloat(checkOut.Sub(checkIn).Seconds())
	return seconds.Div(secondsPerHour).Round(4)
}

// ProratedSubtotal splits the duration into whole hours and leftover minutes
// and charges rate per hour plus rate/60 per minute, quantized to 2 decimal
// places, round half up.
func ProratedSubtotal(hourlyRate, durationHours decimal.Decimal) decimal.Decimal {
	wholeHours := durationHours.Floor()
	leftoverMinutes := durationHours.Sub(wholeHours).Mul(sixty)

	subtotal := hourlyRate.Mul(wholeHours).
		Add(hourlyRate.Div(sixty).Mul(leftoverMinutes))
	return subtotal.Round(2)
}

// ApplyPlatformFee computes the marketplace fee on a subtotal and the
// resulting total owed by the driver. The fee rate comes from configuration;
// it is never hard-coded at call sites.
func ApplyPlatformFee(subtotal, feeRate decimal.Decimal) (fee, total decimal.Decimal) {
	fee = subtotal.Mul(feeRate).Round(2)
	total = subtotal.Add(fee)
	return fee, total
}

// Quote prices a duration at an hourly rate: prorated subtotal, platform fee,
// and driver total.
func Quote(hourlyRate, durationHours, feeRate decimal.Decimal) (subtotal, fee, total decimal.Decimal) {
	subtotal = ProratedSubtotal(hourlyRate, durationHours)
	fee, total = ApplyPlatformFee(subtotal, feeRate)
	return subtotal, fee, total
}
