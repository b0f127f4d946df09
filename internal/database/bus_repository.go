package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// BusRepository handles database operations for buses table
type BusRepository struct {
	q sqlx.ExtContext
}

// NewBusRepository creates a new BusRepository
func NewBusRepository(q sqlx.ExtContext) *BusRepository {
	return &BusRepository{q: q}
}

// CreateBus inserts a bus
func (r *BusRepository) CreateBus(ctx context.Context, bus *models.Bus) error {
	query := `
		INSERT INTO buses (vehicle_number, capacity, wheelchair_accessible, status)
		VALUES ($1, $2, $3, $4)
		RETURNING bus_id, created_at
	`
	err := r.q.QueryRowxContext(ctx, query,
		bus.VehicleNumber, bus.Capacity, bus.WheelchairAccessible, bus.Status,
	).Scan(&bus.ID, &bus.CreatedAt)
	return classify("create bus", err)
}

// GetBusByID retrieves a bus by id
func (r *BusRepository) GetBusByID(ctx context.Context, id int64) (*models.Bus, error) {
	query := `
		SELECT bus_id, vehicle_number, capacity, wheelchair_accessible, status, created_at
		FROM buses
		WHERE bus_id = $1
	`
	bus := &models.Bus{}
	if err := sqlx.GetContext(ctx, r.q, bus, query, id); err != nil {
		return nil, classify("get bus", err)
	}
	return bus, nil
}

// requireOneRow turns an UPDATE that matched nothing into ErrNotFound
func requireOneRow(op string, result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
