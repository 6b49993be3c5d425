package booking

import (
	"context"
	"fmt"

	"chargehub/models"
	"chargehub/services/pricing"
)

// HasOverlap reports whether the clock window collides with a blocking
// booking on the charger. excludeID may be empty.
func (s *DefaultBookingService) HasOverlap(ctx context.Context, chargerID, date, startClock, endClock, excludeID string) (bool, error) {
	start, err := pricing.MinutesOfDay(startClock)
	if err != nil {
		return false, &ValidationError{Message: fmt.Sprintf("invalid start time %q", startClock)}
	}
	end, err := pricing.MinutesOfDay(endClock)
	if err != nil {
		return false, &ValidationError{Message: fmt.Sprintf("invalid end time %q", endClock)}
	}
	return s.Repo.HasOverlap(ctx, chargerID, date, start, end, excludeID)
}

// withinOpeningHours validates the window against the station's posted hours.
func withinOpeningHours(station *models.ChargingStation, start, end int) error {
	opening, err := pricing.MinutesOfDay(station.OpeningTime)
	if err != nil {
		return nil // unparseable hours never block a booking
	}
	closing, err := pricing.MinutesOfDay(station.ClosingTime)
	if err != nil {
		return nil
	}
	if start < opening || end > closing {
		return &ValidationError{Message: fmt.Sprintf(
			"requested window is outside station hours %s-%s", station.OpeningTime, station.ClosingTime)}
	}
	return nil
}
