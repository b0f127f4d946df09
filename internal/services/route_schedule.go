package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/schoolbus-scheduler/internal/database"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// activeRoute loads a route that mutations may touch
func activeRoute(ctx context.Context, tx database.Tx, routeID int64) (*models.Route, error) {
	route, err := tx.GetRouteByID(ctx, routeID)
	if err != nil {
		return nil, reference("route_id", routeID, err)
	}
	if !route.IsActive {
		return nil, validationErrorf(InactiveReference, "route_id", "route %d is not active", routeID)
	}
	return route, nil
}

// DefineRouteStops replaces the ordered stop list of a route. The batch is
// validated as a whole and either fully persisted or not at all.
func (e *ConsistencyEngine) DefineRouteStops(ctx context.Context, routeID int64, stops []models.RouteStop) ([]models.RouteStop, error) {
	batch := make([]models.RouteStop, len(stops))
	for i, stop := range stops {
		stop.ID = 0
		stop.RouteID = routeID
		if err := validateEntity(&stop); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Field = fmt.Sprintf("stops[%d].%s", i, verr.Field)
			}
			return nil, err
		}
		batch[i] = stop
	}
	if err := ValidateSequence(batch); err != nil {
		return nil, err
	}

	fields := logrus.Fields{"route_id": routeID, "stops": len(batch)}
	err := e.mutate(ctx, "define_route_stops", fields, func(ctx context.Context, m *mutation) error {
		if err := m.tx.Lock(ctx, database.RouteLockKey(routeID)); err != nil {
			return err
		}
		if _, err := activeRoute(ctx, m.tx, routeID); err != nil {
			return err
		}
		for i, stop := range batch {
			busStop, err := m.tx.GetBusStopByID(ctx, stop.StopID)
			if err != nil {
				return reference(fmt.Sprintf("stops[%d].stop_id", i), stop.StopID, err)
			}
			if !busStop.IsActive {
				return validationErrorf(InactiveReference, fmt.Sprintf("stops[%d].stop_id", i),
					"bus stop %d is not active", stop.StopID)
			}
		}
		m.validated()

		err := m.tx.ReplaceRouteStops(ctx, routeID, batch)
		if errors.Is(err, database.ErrDuplicate) {
			return validationErrorf(InvalidSequenceOrder, "stops", "duplicate sequence number in route %d", routeID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// StopsForRoute returns the stops of a route ordered by sequence number
func (e *ConsistencyEngine) StopsForRoute(ctx context.Context, routeID int64) ([]models.RouteStop, error) {
	var stops []models.RouteStop
	err := e.read(ctx, "stops_for_route", func(ctx context.Context, tx database.Tx) error {
		if _, err := tx.GetRouteByID(ctx, routeID); err != nil {
			return reference("route_id", routeID, err)
		}
		var err error
		stops, err = tx.StopsForRoute(ctx, routeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stops, nil
}

// RecomputeSchedule propagates arrival times along a route for a run on the
// given date. The morning or afternoon samples are chosen from the route's
// direction and the weekday from date. A nil seed keeps the current arrival
// time of the first stop. On any failure the stored schedule is untouched.
func (e *ConsistencyEngine) RecomputeSchedule(ctx context.Context, routeID int64, date time.Time, seed *models.ClockTime) ([]models.RouteStop, error) {
	var result []models.RouteStop

	fields := logrus.Fields{"route_id": routeID, "date": models.DateKey(date)}
	err := e.mutate(ctx, "recompute_schedule", fields, func(ctx context.Context, m *mutation) error {
		if err := m.tx.Lock(ctx, database.RouteLockKey(routeID)); err != nil {
			return err
		}
		route, err := activeRoute(ctx, m.tx, routeID)
		if err != nil {
			return err
		}
		stops, err := m.tx.StopsForRoute(ctx, routeID)
		if err != nil {
			return err
		}
		if len(stops) == 0 {
			return &DataError{Code: ScheduleIncomplete, RouteID: routeID, Message: fmt.Sprintf("route %d has no stops", routeID)}
		}

		run := PropagationRun{
			Seed:      stops[0].ScheduledArrivalTime,
			TimeOfDay: route.Direction.TimeOfDay(),
			DayOfWeek: models.DayOfWeekFor(date.Weekday()),
		}
		if seed != nil {
			run.Seed = *seed
		}

		updated, err := e.propagator.Propagate(ctx, m.tx, stops, run)
		if err != nil {
			var derr *DataError
			if errors.As(err, &derr) {
				derr.RouteID = routeID
			}
			return err
		}
		m.validated()

		if err := m.tx.UpdateScheduledArrivals(ctx, updated); err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecomputeSummary reports the outcome of a batch recompute
type RecomputeSummary struct {
	Date       time.Time
	Recomputed []int64
	Failed     map[int64]error
}

// RecomputeActiveRoutes recomputes every active route for date, each in its
// own transaction. A failing route is recorded and skipped; the returned
// error only reports that the route list itself could not be read.
func (e *ConsistencyEngine) RecomputeActiveRoutes(ctx context.Context, date time.Time) (*RecomputeSummary, error) {
	var routes []models.Route
	err := e.read(ctx, "list_active_routes", func(ctx context.Context, tx database.Tx) error {
		var err error
		routes, err = tx.ListActiveRoutes(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	summary := &RecomputeSummary{Date: models.DateOnly(date), Failed: map[int64]error{}}
	for _, route := range routes {
		if ctx.Err() != nil {
			summary.Failed[route.ID] = translateError("recompute_schedule", ctx.Err())
			continue
		}
		if _, err := e.RecomputeSchedule(ctx, route.ID, date, nil); err != nil {
			summary.Failed[route.ID] = err
			continue
		}
		summary.Recomputed = append(summary.Recomputed, route.ID)
	}

	e.logger.WithFields(logrus.Fields{
		"date":       models.DateKey(date),
		"routes":     len(routes),
		"recomputed": len(summary.Recomputed),
		"failed":     len(summary.Failed),
	}).Info("Recomputed route schedules")

	return summary, nil
}
