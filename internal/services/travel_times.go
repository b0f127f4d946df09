package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/schoolbus-scheduler/internal/database"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// RecordTravelTime appends a travel-time observation between two existing stops
func (e *ConsistencyEngine) RecordTravelTime(ctx context.Context, key models.TravelTimeKey, durationMinutes int) (*models.TravelTime, error) {
	var sample *models.TravelTime

	fields := logrus.Fields{"key": key.String(), "duration_minutes": durationMinutes}
	err := e.mutate(ctx, "record_travel_time", fields, func(ctx context.Context, m *mutation) error {
		if _, err := m.tx.GetBusStopByID(ctx, key.FromStopID); err != nil {
			return reference("from_stop_id", key.FromStopID, err)
		}
		if _, err := m.tx.GetBusStopByID(ctx, key.ToStopID); err != nil {
			return reference("to_stop_id", key.ToStopID, err)
		}
		m.validated()

		var err error
		sample, err = e.estimator.RecordSample(ctx, m.tx, key, durationMinutes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sample, nil
}

// EstimateTravelTime returns the duration in minutes of the latest sample for
// exactly this key
func (e *ConsistencyEngine) EstimateTravelTime(ctx context.Context, key models.TravelTimeKey) (int, error) {
	var minutes int
	err := e.read(ctx, "estimate_travel_time", func(ctx context.Context, tx database.Tx) error {
		var err error
		minutes, err = e.estimator.Estimate(ctx, tx, key)
		return err
	})
	return minutes, err
}

// TravelTimeHistory returns every sample recorded for key, winning sample first
func (e *ConsistencyEngine) TravelTimeHistory(ctx context.Context, key models.TravelTimeKey) ([]models.TravelTime, error) {
	var samples []models.TravelTime
	err := e.read(ctx, "travel_time_history", func(ctx context.Context, tx database.Tx) error {
		var err error
		samples, err = tx.ListTravelTimes(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}
