package models

import "time"

// Route is a named, directed sequence of stops. Its stops are read through
// the store (StopsForRoute), never held on the route itself.
type Route struct {
	ID        int64     `json:"route_id" db:"route_id"`
	Name      string    `json:"name" db:"name" validate:"required,max=255"`
	Direction Direction `json:"direction" db:"direction" validate:"enum"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RouteStop places a stop on a route at a sequence position with its
// scheduled arrival time
type RouteStop struct {
	ID                   int64     `json:"route_stop_id" db:"route_stop_id"`
	RouteID              int64     `json:"route_id" db:"route_id"`
	StopID               int64     `json:"stop_id" db:"stop_id" validate:"gt=0"`
	SequenceNumber       int       `json:"sequence_number" db:"sequence_number" validate:"gte=0"`
	ScheduledArrivalTime ClockTime `json:"scheduled_arrival_time" db:"scheduled_arrival_time" validate:"gte=0,lt=86400"`
}

// RouteAssignment is the daily fact that a bus and driver run a route on a date
type RouteAssignment struct {
	ID        int64            `json:"assignment_id" db:"assignment_id"`
	RouteID   int64            `json:"route_id" db:"route_id" validate:"gt=0"`
	BusID     int64            `json:"bus_id" db:"bus_id" validate:"gt=0"`
	DriverID  int64            `json:"driver_id" db:"driver_id" validate:"gt=0"`
	Date      time.Time        `json:"date" db:"assignment_date" validate:"required"`
	Status    AssignmentStatus `json:"status" db:"status" validate:"enum"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

// SameRun reports whether a and b describe the same route run: same route,
// bus, driver and date
func (a *RouteAssignment) SameRun(b *RouteAssignment) bool {
	return a.RouteID == b.RouteID &&
		a.BusID == b.BusID &&
		a.DriverID == b.DriverID &&
		DateKey(a.Date) == DateKey(b.Date)
}
