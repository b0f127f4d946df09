package models

import "time"

// Student is a rider picked up at (or dropped off near) a bus stop
type Student struct {
	ID            int64     `json:"student_id" db:"student_id"`
	FirstName     string    `json:"first_name" db:"first_name" validate:"required,max=100"`
	LastName      string    `json:"last_name" db:"last_name" validate:"required,max=100"`
	Grade         string    `json:"grade" db:"grade" validate:"required,max=10"`
	Address       string    `json:"address" db:"address" validate:"required"`
	Latitude      float64   `json:"latitude" db:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64   `json:"longitude" db:"longitude" validate:"gte=-180,lte=180"`
	SpecialNeeds  bool      `json:"special_needs" db:"special_needs"`
	GuardianPhone string    `json:"guardian_phone" db:"guardian_phone" validate:"required,max=20"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// BusStop is a pick-up/drop-off point
type BusStop struct {
	ID        int64     `json:"stop_id" db:"stop_id"`
	Name      string    `json:"name" db:"name" validate:"required,max=255"`
	Address   string    `json:"address" db:"address" validate:"required"`
	Latitude  float64   `json:"latitude" db:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64   `json:"longitude" db:"longitude" validate:"gte=-180,lte=180"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StudentStopAssignment maps a student to the stop they walk to.
// Rows are never deleted: a new assignment retires the previous one by
// clearing IsActive, so at most one row per student is active.
type StudentStopAssignment struct {
	ID              int64     `json:"assignment_id" db:"assignment_id"`
	StudentID       int64     `json:"student_id" db:"student_id" validate:"gt=0"`
	StopID          int64     `json:"stop_id" db:"stop_id" validate:"gt=0"`
	WalkingDistance float64   `json:"walking_distance" db:"walking_distance" validate:"gte=0"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
