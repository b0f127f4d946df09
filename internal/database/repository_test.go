package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepositoryTest(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateUser Duplicate Username", func(t *testing.T) {
		db, mock, cleanup := setupRepositoryTest(t)
		defer cleanup()
		repo := NewUserRepository(db)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("jdoe", "driver", "jdoe@example.com", "2125550142").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

		err := repo.CreateUser(ctx, &models.User{
			Username: "jdoe", Role: models.RoleDriver, Email: "jdoe@example.com", Phone: "2125550142",
		})
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetDriverByID Not Found", func(t *testing.T) {
		db, mock, cleanup := setupRepositoryTest(t)
		defer cleanup()
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM drivers`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		driver, err := repo.GetDriverByID(ctx, 99)
		assert.Nil(t, driver)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRouteRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("StopsForRoute", func(t *testing.T) {
		db, mock, cleanup := setupRepositoryTest(t)
		defer cleanup()
		repo := NewRouteRepository(db)

		rows := sqlmock.NewRows([]string{"route_stop_id", "route_id", "stop_id", "sequence_number", "scheduled_arrival_time"}).
			AddRow(int64(1), int64(3), int64(10), 1, "07:10:00").
			AddRow(int64(2), int64(3), int64(11), 2, "07:18:00")
		mock.ExpectQuery(`SELECT (.+) FROM route_stops WHERE route_id = \$1 ORDER BY sequence_number`).
			WithArgs(int64(3)).
			WillReturnRows(rows)

		stops, err := repo.StopsForRoute(ctx, 3)
		require.NoError(t, err)
		require.Len(t, stops, 2)
		assert.Equal(t, models.MustParseClockTime("07:10:00"), stops[0].ScheduledArrivalTime)
		assert.Equal(t, models.MustParseClockTime("07:18:00"), stops[1].ScheduledArrivalTime)
		assert.Equal(t, int64(11), stops[1].StopID)
	})

	t.Run("ReplaceRouteStops", func(t *testing.T) {
		db, mock, cleanup := setupRepositoryTest(t)
		defer cleanup()
		repo := NewRouteRepository(db)

		mock.ExpectExec(`DELETE FROM route_stops WHERE route_id = \$1`).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO route_stops`).
			WithArgs(int64(3), int64(10), 1, models.MustParseClockTime("07:10:00")).
			WillReturnRows(sqlmock.NewRows([]string{"route_stop_id"}).AddRow(int64(7)))
		mock.ExpectQuery(`INSERT INTO route_stops`).
			WithArgs(int64(3), int64(11), 2, models.MustParseClockTime("07:18:00")).
			WillReturnRows(sqlmock.NewRows([]string{"route_stop_id"}).AddRow(int64(8)))

		stops := []models.RouteStop{
			{StopID: 10, SequenceNumber: 1, ScheduledArrivalTime: models.MustParseClockTime("07:10")},
			{StopID: 11, SequenceNumber: 2, ScheduledArrivalTime: models.MustParseClockTime("07:18")},
		}
		require.NoError(t, repo.ReplaceRouteStops(ctx, 3, stops))
		assert.Equal(t, int64(7), stops[0].ID)
		assert.Equal(t, int64(8), stops[1].ID)
		assert.Equal(t, int64(3), stops[1].RouteID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateScheduledArrivals Missing Row", func(t *testing.T) {
		db, mock, cleanup := setupRepositoryTest(t)
		defer cleanup()
		repo := NewRouteRepository(db)

		mock.ExpectExec(`UPDATE route_stops`).
			WithArgs(models.MustParseClockTime("07:20:00"), int64(5), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateScheduledArrivals(ctx, []models.RouteStop{
			{ID: 5, RouteID: 3, ScheduledArrivalTime: models.MustParseClockTime("07:20")},
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRouteAssignmentRepository(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	db, mock, cleanup := setupRepositoryTest(t)
	defer cleanup()
	repo := NewRouteAssignmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"assignment_id", "route_id", "bus_id", "driver_id", "assignment_date", "status", "created_at", "updated_at",
	}).AddRow(int64(1), int64(3), int64(5), int64(7), date, "in_progress", now, now)

	// A timestamp later in the day still selects the calendar date
	mock.ExpectQuery(`SELECT (.+) FROM route_assignments WHERE assignment_date = \$1 AND status IN`).
		WithArgs(date).
		WillReturnRows(rows)

	live, err := repo.ListLiveAssignmentsByDate(ctx, date.Add(15*time.Hour))
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, models.AssignmentStatusInProgress, live[0].Status)
	assert.Equal(t, int64(5), live[0].BusID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTravelTimeRepository(t *testing.T) {
	ctx := context.Background()
	key := models.TravelTimeKey{
		FromStopID: 10, ToStopID: 11,
		TimeOfDay: models.TimeOfDayMorning, DayOfWeek: models.Monday,
	}

	t.Run("GetLatestTravelTime", func(t *testing.T) {
		db, mock, cleanup := setupRepositoryTest(t)
		defer cleanup()
		repo := NewTravelTimeRepository(db)

		updated := time.Date(2024, 2, 26, 7, 30, 0, 0, time.UTC)
		rows := sqlmock.NewRows([]string{
			"travel_time_id", "from_stop_id", "to_stop_id", "time_of_day", "day_of_week", "duration_minutes", "last_updated",
		}).AddRow(int64(4), int64(10), int64(11), "morning", "monday", 8, updated)
		mock.ExpectQuery(`ORDER BY last_updated DESC, travel_time_id DESC LIMIT 1`).
			WithArgs(int64(10), int64(11), "morning", "monday").
			WillReturnRows(rows)

		sample, err := repo.GetLatestTravelTime(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 8, sample.DurationMinutes)
		assert.Equal(t, key, sample.TravelTimeKey)
		assert.True(t, updated.Equal(sample.LastUpdated))
	})

	t.Run("GetLatestTravelTime No Samples", func(t *testing.T) {
		db, mock, cleanup := setupRepositoryTest(t)
		defer cleanup()
		repo := NewTravelTimeRepository(db)

		mock.ExpectQuery(`FROM travel_times`).
			WithArgs(int64(10), int64(11), "morning", "monday").
			WillReturnRows(sqlmock.NewRows([]string{"travel_time_id"}))

		_, err := repo.GetLatestTravelTime(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
