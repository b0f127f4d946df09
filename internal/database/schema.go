package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Tables lists every table of the schema, referenced tables last
var Tables = []string{
	"travel_times",
	"route_assignments",
	"route_stops",
	"routes",
	"buses",
	"student_stop_assignments",
	"bus_stops",
	"students",
	"drivers",
	"users",
}

// schema creates the tables of the scheduling system. Statements are
// idempotent so Migrate can run on every deploy.
var schema = []string{
	`DO $$ BEGIN
		CREATE TYPE user_role AS ENUM ('admin', 'driver', 'parent');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN
		CREATE TYPE route_direction AS ENUM ('to_school', 'from_school');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN
		CREATE TYPE assignment_status AS ENUM ('scheduled', 'in_progress', 'completed');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN
		CREATE TYPE time_of_day AS ENUM ('morning', 'afternoon');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

	`CREATE TABLE IF NOT EXISTS users (
		user_id    BIGSERIAL PRIMARY KEY,
		username   VARCHAR(150) NOT NULL UNIQUE,
		role       user_role NOT NULL,
		email      VARCHAR(255) NOT NULL,
		phone      VARCHAR(20) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS drivers (
		driver_id      BIGSERIAL PRIMARY KEY,
		user_id        BIGINT NOT NULL UNIQUE REFERENCES users(user_id),
		first_name     VARCHAR(100) NOT NULL,
		last_name      VARCHAR(100) NOT NULL,
		license_number VARCHAR(100) NOT NULL,
		phone          VARCHAR(20) NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		student_id     BIGSERIAL PRIMARY KEY,
		first_name     VARCHAR(100) NOT NULL,
		last_name      VARCHAR(100) NOT NULL,
		grade          VARCHAR(10) NOT NULL,
		address        TEXT NOT NULL,
		latitude       DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
		longitude      DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
		special_needs  BOOLEAN NOT NULL DEFAULT FALSE,
		guardian_phone VARCHAR(20) NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS bus_stops (
		stop_id    BIGSERIAL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		address    TEXT NOT NULL,
		latitude   DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
		longitude  DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS student_stop_assignments (
		assignment_id    BIGSERIAL PRIMARY KEY,
		student_id       BIGINT NOT NULL REFERENCES students(student_id),
		stop_id          BIGINT NOT NULL REFERENCES bus_stops(stop_id),
		walking_distance DOUBLE PRECISION NOT NULL CHECK (walking_distance >= 0),
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS student_stop_assignments_one_active
		ON student_stop_assignments (student_id) WHERE is_active`,
	`CREATE TABLE IF NOT EXISTS buses (
		bus_id                BIGSERIAL PRIMARY KEY,
		vehicle_number        VARCHAR(100) NOT NULL,
		capacity              INTEGER NOT NULL CHECK (capacity > 0),
		wheelchair_accessible BOOLEAN NOT NULL DEFAULT FALSE,
		status                VARCHAR(50) NOT NULL CHECK (status IN ('active', 'maintenance', 'retired')),
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS routes (
		route_id   BIGSERIAL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		direction  route_direction NOT NULL,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS route_stops (
		route_stop_id          BIGSERIAL PRIMARY KEY,
		route_id               BIGINT NOT NULL REFERENCES routes(route_id),
		stop_id                BIGINT NOT NULL REFERENCES bus_stops(stop_id),
		sequence_number        INTEGER NOT NULL CHECK (sequence_number >= 0),
		scheduled_arrival_time TIME NOT NULL,
		UNIQUE (route_id, sequence_number)
	)`,
	`CREATE TABLE IF NOT EXISTS route_assignments (
		assignment_id   BIGSERIAL PRIMARY KEY,
		route_id        BIGINT NOT NULL REFERENCES routes(route_id),
		bus_id          BIGINT NOT NULL REFERENCES buses(bus_id),
		driver_id       BIGINT NOT NULL REFERENCES drivers(driver_id),
		assignment_date DATE NOT NULL,
		status          assignment_status NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS route_assignments_live_bus
		ON route_assignments (bus_id, assignment_date) WHERE status IN ('scheduled', 'in_progress')`,
	`CREATE UNIQUE INDEX IF NOT EXISTS route_assignments_live_driver
		ON route_assignments (driver_id, assignment_date) WHERE status IN ('scheduled', 'in_progress')`,
	`CREATE TABLE IF NOT EXISTS travel_times (
		travel_time_id   BIGSERIAL PRIMARY KEY,
		from_stop_id     BIGINT NOT NULL REFERENCES bus_stops(stop_id),
		to_stop_id       BIGINT NOT NULL REFERENCES bus_stops(stop_id),
		time_of_day      time_of_day NOT NULL,
		day_of_week      VARCHAR(10) NOT NULL,
		duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0 AND duration_minutes <= 1440),
		last_updated     TIMESTAMPTZ NOT NULL,
		CHECK (from_stop_id <> to_stop_id)
	)`,
	`CREATE INDEX IF NOT EXISTS travel_times_lookup
		ON travel_times (from_stop_id, to_stop_id, time_of_day, day_of_week, last_updated DESC, travel_time_id DESC)`,
}

// Migrate applies the schema
func Migrate(ctx context.Context, db DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i+1, err)
		}
	}
	return nil
}

// Truncate deletes every row and resets the id sequences
func Truncate(ctx context.Context, db DB) error {
	query := `TRUNCATE TABLE ` + strings.Join(Tables, ", ") + ` RESTART IDENTITY CASCADE`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}

// RowCounts returns the number of rows in each table
func RowCounts(ctx context.Context, db DB) (map[string]int, error) {
	counts := make(map[string]int, len(Tables))
	for _, table := range Tables {
		var n int
		if err := sqlx.GetContext(ctx, db, &n, `SELECT COUNT(*) FROM `+table); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
