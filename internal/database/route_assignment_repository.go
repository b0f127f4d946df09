package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// RouteAssignmentRepository handles database operations for route_assignments table
type RouteAssignmentRepository struct {
	q sqlx.ExtContext
}

// NewRouteAssignmentRepository creates a new RouteAssignmentRepository
func NewRouteAssignmentRepository(q sqlx.ExtContext) *RouteAssignmentRepository {
	return &RouteAssignmentRepository{q: q}
}

const routeAssignmentColumns = `assignment_id, route_id, bus_id, driver_id, assignment_date, status, created_at, updated_at`

// CreateRouteAssignment inserts an assignment
func (r *RouteAssignmentRepository) CreateRouteAssignment(ctx context.Context, a *models.RouteAssignment) error {
	query := `
		INSERT INTO route_assignments (route_id, bus_id, driver_id, assignment_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING assignment_id, created_at, updated_at
	`
	err := r.q.QueryRowxContext(ctx, query,
		a.RouteID, a.BusID, a.DriverID, models.DateOnly(a.Date), a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return classify("create route assignment", err)
}

// UpdateRouteAssignment rewrites every mutable column of an assignment
func (r *RouteAssignmentRepository) UpdateRouteAssignment(ctx context.Context, a *models.RouteAssignment) error {
	query := `
		UPDATE route_assignments
		SET route_id = $1, bus_id = $2, driver_id = $3, assignment_date = $4, status = $5,
			updated_at = NOW()
		WHERE assignment_id = $6
		RETURNING updated_at
	`
	err := r.q.QueryRowxContext(ctx, query,
		a.RouteID, a.BusID, a.DriverID, models.DateOnly(a.Date), a.Status, a.ID,
	).Scan(&a.UpdatedAt)
	return classify("update route assignment", err)
}

// GetRouteAssignmentByID retrieves an assignment by id
func (r *RouteAssignmentRepository) GetRouteAssignmentByID(ctx context.Context, id int64) (*models.RouteAssignment, error) {
	query := `SELECT ` + routeAssignmentColumns + ` FROM route_assignments WHERE assignment_id = $1`
	a := &models.RouteAssignment{}
	if err := sqlx.GetContext(ctx, r.q, a, query, id); err != nil {
		return nil, classify("get route assignment", err)
	}
	return a, nil
}

// ListLiveAssignmentsByDate returns the scheduled and in-progress assignments on a date
func (r *RouteAssignmentRepository) ListLiveAssignmentsByDate(ctx context.Context, date time.Time) ([]models.RouteAssignment, error) {
	query := `SELECT ` + routeAssignmentColumns + `
		FROM route_assignments
		WHERE assignment_date = $1 AND status IN ('scheduled', 'in_progress')
		ORDER BY assignment_id
	`
	assignments := []models.RouteAssignment{}
	if err := sqlx.SelectContext(ctx, r.q, &assignments, query, models.DateOnly(date)); err != nil {
		return nil, classify("list live assignments", err)
	}
	return assignments, nil
}
