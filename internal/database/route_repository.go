package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// RouteRepository handles database operations for routes and route_stops tables
type RouteRepository struct {
	q sqlx.ExtContext
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(q sqlx.ExtContext) *RouteRepository {
	return &RouteRepository{q: q}
}

// CreateRoute inserts a route
func (r *RouteRepository) CreateRoute(ctx context.Context, route *models.Route) error {
	query := `
		INSERT INTO routes (name, direction, is_active)
		VALUES ($1, $2, $3)
		RETURNING route_id, created_at
	`
	err := r.q.QueryRowxContext(ctx, query, route.Name, route.Direction, route.IsActive).
		Scan(&route.ID, &route.CreatedAt)
	return classify("create route", err)
}

// GetRouteByID retrieves a route by id
func (r *RouteRepository) GetRouteByID(ctx context.Context, id int64) (*models.Route, error) {
	query := `
		SELECT route_id, name, direction, is_active, created_at
		FROM routes
		WHERE route_id = $1
	`
	route := &models.Route{}
	if err := sqlx.GetContext(ctx, r.q, route, query, id); err != nil {
		return nil, classify("get route", err)
	}
	return route, nil
}

// ListActiveRoutes returns all active routes ordered by id
func (r *RouteRepository) ListActiveRoutes(ctx context.Context) ([]models.Route, error) {
	query := `
		SELECT route_id, name, direction, is_active, created_at
		FROM routes
		WHERE is_active
		ORDER BY route_id
	`
	routes := []models.Route{}
	if err := sqlx.SelectContext(ctx, r.q, &routes, query); err != nil {
		return nil, classify("list active routes", err)
	}
	return routes, nil
}

// StopsForRoute returns the stops of a route ordered by sequence number
func (r *RouteRepository) StopsForRoute(ctx context.Context, routeID int64) ([]models.RouteStop, error) {
	query := `
		SELECT route_stop_id, route_id, stop_id, sequence_number, scheduled_arrival_time
		FROM route_stops
		WHERE route_id = $1
		ORDER BY sequence_number
	`
	stops := []models.RouteStop{}
	if err := sqlx.SelectContext(ctx, r.q, &stops, query, routeID); err != nil {
		return nil, classify("list route stops", err)
	}
	return stops, nil
}

// ReplaceRouteStops deletes the route's current stops and inserts the given
// list. Run it inside a transaction: on its own it is not atomic.
func (r *RouteRepository) ReplaceRouteStops(ctx context.Context, routeID int64, stops []models.RouteStop) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM route_stops WHERE route_id = $1`, routeID); err != nil {
		return classify("clear route stops", err)
	}

	query := `
		INSERT INTO route_stops (route_id, stop_id, sequence_number, scheduled_arrival_time)
		VALUES ($1, $2, $3, $4)
		RETURNING route_stop_id
	`
	for i := range stops {
		stops[i].RouteID = routeID
		err := r.q.QueryRowxContext(ctx, query,
			routeID, stops[i].StopID, stops[i].SequenceNumber, stops[i].ScheduledArrivalTime,
		).Scan(&stops[i].ID)
		if err != nil {
			return classify("insert route stop", err)
		}
	}
	return nil
}

// UpdateScheduledArrivals rewrites the arrival time of each given route stop
func (r *RouteRepository) UpdateScheduledArrivals(ctx context.Context, stops []models.RouteStop) error {
	query := `
		UPDATE route_stops
		SET scheduled_arrival_time = $1
		WHERE route_stop_id = $2 AND route_id = $3
	`
	for _, stop := range stops {
		result, err := r.q.ExecContext(ctx, query, stop.ScheduledArrivalTime, stop.ID, stop.RouteID)
		if err != nil {
			return classify("update scheduled arrival", err)
		}
		if err := requireOneRow("update scheduled arrival", result); err != nil {
			return err
		}
	}
	return nil
}
