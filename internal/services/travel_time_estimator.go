package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smarttransit/schoolbus-scheduler/internal/database"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// travelTimeSamples is the slice of the store the estimator reads and appends to
type travelTimeSamples interface {
	CreateTravelTime(ctx context.Context, sample *models.TravelTime) error
	GetLatestTravelTime(ctx context.Context, key models.TravelTimeKey) (*models.TravelTime, error)
}

// TravelTimeEstimator keeps duration samples between stop pairs. Samples are
// append-only and the most recent one per key wins; there is no blending
// across keys.
type TravelTimeEstimator struct {
	now func() time.Time
}

// NewTravelTimeEstimator creates a new TravelTimeEstimator
func NewTravelTimeEstimator() *TravelTimeEstimator {
	return &TravelTimeEstimator{now: time.Now}
}

// RecordSample appends an observation stamped with the current time at the
// microsecond precision TIMESTAMPTZ keeps
func (e *TravelTimeEstimator) RecordSample(ctx context.Context, q travelTimeSamples, key models.TravelTimeKey, durationMinutes int) (*models.TravelTime, error) {
	sample := &models.TravelTime{
		TravelTimeKey:   key,
		DurationMinutes: durationMinutes,
		LastUpdated:     e.now().UTC().Truncate(time.Microsecond),
	}
	if err := validateEntity(sample); err != nil {
		return nil, err
	}

	if err := q.CreateTravelTime(ctx, sample); err != nil {
		return nil, fmt.Errorf("failed to record travel time: %w", err)
	}
	return sample, nil
}

// Estimate returns the duration in minutes of the winning sample for key
func (e *TravelTimeEstimator) Estimate(ctx context.Context, q travelTimeSamples, key models.TravelTimeKey) (int, error) {
	sample, err := q.GetLatestTravelTime(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, &DataError{
			Code:       NoEstimateAvailable,
			FromStopID: key.FromStopID,
			ToStopID:   key.ToStopID,
			Message:    fmt.Sprintf("no travel time sample for %s", key),
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get travel time: %w", err)
	}
	return sample.DurationMinutes, nil
}
