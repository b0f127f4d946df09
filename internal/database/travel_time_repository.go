package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// TravelTimeRepository handles database operations for travel_times table.
// Rows are only ever inserted.
type TravelTimeRepository struct {
	q sqlx.ExtContext
}

// NewTravelTimeRepository creates a new TravelTimeRepository
func NewTravelTimeRepository(q sqlx.ExtContext) *TravelTimeRepository {
	return &TravelTimeRepository{q: q}
}

const travelTimeSelect = `
	SELECT travel_time_id, from_stop_id, to_stop_id, time_of_day, day_of_week,
		   duration_minutes, last_updated
	FROM travel_times
	WHERE from_stop_id = $1 AND to_stop_id = $2 AND time_of_day = $3 AND day_of_week = $4
	ORDER BY last_updated DESC, travel_time_id DESC
`

// CreateTravelTime appends a sample
func (r *TravelTimeRepository) CreateTravelTime(ctx context.Context, t *models.TravelTime) error {
	query := `
		INSERT INTO travel_times (
			from_stop_id, to_stop_id, time_of_day, day_of_week, duration_minutes, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING travel_time_id
	`
	err := r.q.QueryRowxContext(ctx, query,
		t.FromStopID, t.ToStopID, t.TimeOfDay, t.DayOfWeek, t.DurationMinutes, t.LastUpdated,
	).Scan(&t.ID)
	return classify("create travel time", err)
}

// GetLatestTravelTime returns the sample that currently wins for key
func (r *TravelTimeRepository) GetLatestTravelTime(ctx context.Context, key models.TravelTimeKey) (*models.TravelTime, error) {
	sample := &models.TravelTime{}
	err := sqlx.GetContext(ctx, r.q, sample, travelTimeSelect+` LIMIT 1`,
		key.FromStopID, key.ToStopID, key.TimeOfDay, key.DayOfWeek)
	if err != nil {
		return nil, classify("get latest travel time", err)
	}
	return sample, nil
}

// ListTravelTimes returns the full sample history of key, newest first
func (r *TravelTimeRepository) ListTravelTimes(ctx context.Context, key models.TravelTimeKey) ([]models.TravelTime, error) {
	samples := []models.TravelTime{}
	err := sqlx.SelectContext(ctx, r.q, &samples, travelTimeSelect,
		key.FromStopID, key.ToStopID, key.TimeOfDay, key.DayOfWeek)
	if err != nil {
		return nil, classify("list travel times", err)
	}
	return samples, nil
}
