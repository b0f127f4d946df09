package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/smarttransit/schoolbus-scheduler/internal/database"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func morningMonday(from, to int64) models.TravelTimeKey {
	return models.TravelTimeKey{FromStopID: from, ToStopID: to, TimeOfDay: models.TimeOfDayMorning, DayOfWeek: models.Monday}
}

// withTx runs fn in a memory store transaction and fails the test on store errors
func withTx(t *testing.T, store *database.MemoryStore, fn func(ctx context.Context, tx database.Tx)) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.InTx(ctx, func(tx database.Tx) error {
		fn(ctx, tx)
		return nil
	}))
}

func TestTravelTimeEstimator_RoundTrip(t *testing.T) {
	store := database.NewMemoryStore()
	estimator := NewTravelTimeEstimator()

	withTx(t, store, func(ctx context.Context, tx database.Tx) {
		_, err := estimator.Estimate(ctx, tx, morningMonday(1, 2))
		var derr *DataError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, NoEstimateAvailable, derr.Code)
		assert.Equal(t, int64(1), derr.FromStopID)
		assert.Equal(t, int64(2), derr.ToStopID)

		sample, err := estimator.RecordSample(ctx, tx, morningMonday(1, 2), 12)
		require.NoError(t, err)
		assert.NotZero(t, sample.ID)
		assert.False(t, sample.LastUpdated.IsZero())

		minutes, err := estimator.Estimate(ctx, tx, morningMonday(1, 2))
		require.NoError(t, err)
		assert.Equal(t, 12, minutes)

		// Exact key only: the afternoon and the reverse direction stay unknown
		afternoon := morningMonday(1, 2)
		afternoon.TimeOfDay = models.TimeOfDayAfternoon
		_, err = estimator.Estimate(ctx, tx, afternoon)
		assert.True(t, errors.Is(err, NoEstimateAvailable))
		_, err = estimator.Estimate(ctx, tx, morningMonday(2, 1))
		assert.True(t, errors.Is(err, NoEstimateAvailable))
	})
}

func TestTravelTimeEstimator_LatestWins(t *testing.T) {
	store := database.NewMemoryStore()
	estimator := NewTravelTimeEstimator()
	fixed := time.Date(2024, 2, 26, 7, 0, 0, 0, time.UTC)
	estimator.now = func() time.Time { return fixed }

	withTx(t, store, func(ctx context.Context, tx database.Tx) {
		_, err := estimator.RecordSample(ctx, tx, morningMonday(1, 2), 10)
		require.NoError(t, err)
		// Same timestamp: the later insert wins
		_, err = estimator.RecordSample(ctx, tx, morningMonday(1, 2), 14)
		require.NoError(t, err)

		minutes, err := estimator.Estimate(ctx, tx, morningMonday(1, 2))
		require.NoError(t, err)
		assert.Equal(t, 14, minutes)
	})
}

func TestTravelTimeEstimator_RejectsInvalidSamples(t *testing.T) {
	store := database.NewMemoryStore()
	estimator := NewTravelTimeEstimator()

	withTx(t, store, func(ctx context.Context, tx database.Tx) {
		_, err := estimator.RecordSample(ctx, tx, morningMonday(1, 2), 0)
		assert.True(t, errors.Is(err, InvalidField))

		_, err = estimator.RecordSample(ctx, tx, morningMonday(3, 3), 5)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "from_stop_id", verr.Field)

		_, err = estimator.RecordSample(ctx, tx, morningMonday(1, 2), math.MaxInt)
		require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
		assert.Equal(t, InvalidField, verr.Code)
		assert.Equal(t, "duration_minutes", verr.Field)

		_, err = estimator.Estimate(ctx, tx, morningMonday(1, 2))
		assert.True(t, errors.Is(err, NoEstimateAvailable))
	})
}

func TestTravelTimeEstimator_StampsMicrosecondPrecision(t *testing.T) {
	store := database.NewMemoryStore()
	estimator := NewTravelTimeEstimator()
	estimator.now = func() time.Time {
		return time.Date(2024, 3, 4, 7, 0, 0, 123456789, time.UTC)
	}

	withTx(t, store, func(ctx context.Context, tx database.Tx) {
		sample, err := estimator.RecordSample(ctx, tx, morningMonday(1, 2), 10)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 4, 7, 0, 0, 123456000, time.UTC), sample.LastUpdated)
	})
}

func TestSchedulePropagator_Propagate(t *testing.T) {
	store := database.NewMemoryStore()
	estimator := NewTravelTimeEstimator()
	propagator := NewSchedulePropagator(estimator)
	run := PropagationRun{Seed: models.MustParseClockTime("07:00"), TimeOfDay: models.TimeOfDayMorning, DayOfWeek: models.Monday}

	route := []models.RouteStop{
		{RouteID: 4, StopID: 1, SequenceNumber: 0},
		{RouteID: 4, StopID: 2, SequenceNumber: 1},
		{RouteID: 4, StopID: 3, SequenceNumber: 2},
	}

	withTx(t, store, func(ctx context.Context, tx database.Tx) {
		_, err := estimator.RecordSample(ctx, tx, morningMonday(1, 2), 10)
		require.NoError(t, err)

		t.Run("Missing Leg", func(t *testing.T) {
			_, err := propagator.Propagate(ctx, tx, route, run)
			var derr *DataError
			require.True(t, errors.As(err, &derr), "expected DataError, got %v", err)
			assert.Equal(t, ScheduleIncomplete, derr.Code)
			assert.Equal(t, int64(2), derr.FromStopID)
			assert.Equal(t, int64(3), derr.ToStopID)
			assert.Equal(t, int64(4), derr.RouteID)
		})

		_, err = estimator.RecordSample(ctx, tx, morningMonday(2, 3), 8)
		require.NoError(t, err)

		t.Run("All Legs Known", func(t *testing.T) {
			out, err := propagator.Propagate(ctx, tx, route, run)
			require.NoError(t, err)
			require.Len(t, out, 3)
			assert.Equal(t, "07:00:00", out[0].ScheduledArrivalTime.String())
			assert.Equal(t, "07:10:00", out[1].ScheduledArrivalTime.String())
			assert.Equal(t, "07:18:00", out[2].ScheduledArrivalTime.String())

			// Input is not modified
			assert.Equal(t, models.ClockTime(0), route[1].ScheduledArrivalTime)
		})

		t.Run("Past Midnight", func(t *testing.T) {
			late := run
			late.Seed = models.MustParseClockTime("23:55")
			_, err := propagator.Propagate(ctx, tx, route, late)
			assert.True(t, errors.Is(err, NonMonotonicSchedule))
		})

		t.Run("Other Day Has No Samples", func(t *testing.T) {
			tuesday := run
			tuesday.DayOfWeek = models.Tuesday
			_, err := propagator.Propagate(ctx, tx, route, tuesday)
			assert.True(t, errors.Is(err, ScheduleIncomplete))
		})

		t.Run("No Stops", func(t *testing.T) {
			_, err := propagator.Propagate(ctx, tx, nil, run)
			assert.True(t, errors.Is(err, ScheduleIncomplete))
		})
	})
}
