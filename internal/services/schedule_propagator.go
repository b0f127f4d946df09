package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// SchedulePropagator derives arrival times along a route from a seed time at
// the first stop and the travel-time samples between consecutive stops
type SchedulePropagator struct {
	estimator *TravelTimeEstimator
}

// NewSchedulePropagator creates a new SchedulePropagator
func NewSchedulePropagator(estimator *TravelTimeEstimator) *SchedulePropagator {
	return &SchedulePropagator{estimator: estimator}
}

// PropagationRun fixes the inputs shared by every leg of one route run
type PropagationRun struct {
	Seed      models.ClockTime
	TimeOfDay models.TimeOfDay
	DayOfWeek models.DayOfWeek
}

// Propagate returns a copy of stops (ordered by sequence) with recomputed
// arrival times. It never substitutes a default duration: a missing sample
// for any leg fails with ScheduleIncomplete naming that leg.
func (p *SchedulePropagator) Propagate(ctx context.Context, q travelTimeSamples, stops []models.RouteStop, run PropagationRun) ([]models.RouteStop, error) {
	if len(stops) == 0 {
		return nil, &DataError{Code: ScheduleIncomplete, Message: "route has no stops"}
	}
	if !run.Seed.IsValid() {
		return nil, validationErrorf(InvalidField, "seed", "seed time %d is outside the day", int(run.Seed))
	}

	out := append([]models.RouteStop(nil), stops...)
	out[0].ScheduledArrivalTime = run.Seed

	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], &out[i]
		key := models.TravelTimeKey{
			FromStopID: prev.StopID,
			ToStopID:   cur.StopID,
			TimeOfDay:  run.TimeOfDay,
			DayOfWeek:  run.DayOfWeek,
		}

		minutes, err := p.estimator.Estimate(ctx, q, key)
		if errors.Is(err, NoEstimateAvailable) {
			return nil, &DataError{
				Code:       ScheduleIncomplete,
				RouteID:    cur.RouteID,
				FromStopID: prev.StopID,
				ToStopID:   cur.StopID,
				Message: fmt.Sprintf("no travel time from stop %d to stop %d (%s, %s)",
					prev.StopID, cur.StopID, run.TimeOfDay, run.DayOfWeek),
			}
		}
		if err != nil {
			return nil, err
		}

		arrival, ok := prev.ScheduledArrivalTime.AddMinutes(minutes)
		if !ok {
			return nil, validationErrorf(NonMonotonicSchedule, fmt.Sprintf("stops[%d].scheduled_arrival_time", i),
				"stop %d would arrive %d minutes after %s, past midnight", cur.StopID, minutes, prev.ScheduledArrivalTime)
		}
		cur.ScheduledArrivalTime = arrival
	}

	if err := ValidateSequence(out); err != nil {
		return nil, err
	}
	return out, nil
}
