package models

import (
	"fmt"
	"strings"
	"time"
)

// Enum is implemented by every closed set of string values stored in the database
type Enum interface {
	IsValid() bool
}

// Role represents the role a user account was created with
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDriver Role = "driver"
	RoleParent Role = "parent"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDriver, RoleParent:
		return true
	}
	return false
}

// ParseRole converts a raw string into a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return r, nil
}

// BusStatus represents the operational status of a bus
type BusStatus string

const (
	BusStatusActive      BusStatus = "active"
	BusStatusMaintenance BusStatus = "maintenance"
	BusStatusRetired     BusStatus = "retired"
)

// IsValid reports whether s is a known bus status
func (s BusStatus) IsValid() bool {
	switch s {
	case BusStatusActive, BusStatusMaintenance, BusStatusRetired:
		return true
	}
	return false
}

// ParseBusStatus converts a raw string into a BusStatus
func ParseBusStatus(s string) (BusStatus, error) {
	st := BusStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("invalid bus status: %q", s)
	}
	return st, nil
}

// Direction represents which way a route runs
type Direction string

const (
	DirectionToSchool   Direction = "to_school"
	DirectionFromSchool Direction = "from_school"
)

// IsValid reports whether d is a known direction
func (d Direction) IsValid() bool {
	return d == DirectionToSchool || d == DirectionFromSchool
}

// ParseDirection converts a raw string into a Direction
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("invalid route direction: %q", s)
	}
	return d, nil
}

// TimeOfDay returns the travel-time bucket a route running in direction d uses.
// Morning runs go to school, afternoon runs come back.
func (d Direction) TimeOfDay() TimeOfDay {
	if d == DirectionFromSchool {
		return TimeOfDayAfternoon
	}
	return TimeOfDayMorning
}

// AssignmentStatus represents the lifecycle state of a route assignment
type AssignmentStatus string

const (
	AssignmentStatusScheduled  AssignmentStatus = "scheduled"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
)

// IsValid reports whether s is a known assignment status
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusScheduled, AssignmentStatusInProgress, AssignmentStatusCompleted:
		return true
	}
	return false
}

// IsLive reports whether an assignment in this status still holds its bus and driver
func (s AssignmentStatus) IsLive() bool {
	return s == AssignmentStatusScheduled || s == AssignmentStatusInProgress
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case AssignmentStatusScheduled:
		return next == AssignmentStatusInProgress || next == AssignmentStatusCompleted
	case AssignmentStatusInProgress:
		return next == AssignmentStatusCompleted
	}
	return false
}

// ParseAssignmentStatus converts a raw string into an AssignmentStatus
func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	st := AssignmentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("invalid assignment status: %q", s)
	}
	return st, nil
}

// TimeOfDay is the traffic period a travel-time sample was observed in
type TimeOfDay string

const (
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
)

// IsValid reports whether t is a known time of day
func (t TimeOfDay) IsValid() bool {
	return t == TimeOfDayMorning || t == TimeOfDayAfternoon
}

// ParseTimeOfDay converts a raw string into a TimeOfDay
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t := TimeOfDay(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid time of day: %q", s)
	}
	return t, nil
}

// DayOfWeek is the weekday a travel-time sample applies to
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

var weekdays = map[time.Weekday]DayOfWeek{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// DayOfWeekFor returns the DayOfWeek of the given weekday
func DayOfWeekFor(w time.Weekday) DayOfWeek {
	return weekdays[w]
}

// IsValid reports whether d is a known day
func (d DayOfWeek) IsValid() bool {
	for _, v := range weekdays {
		if v == d {
			return true
		}
	}
	return false
}

// ParseDayOfWeek accepts full day names and three-letter abbreviations ("Mon")
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	for _, d := range weekdays {
		if string(d) == raw || (len(raw) == 3 && strings.HasPrefix(string(d), raw)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid day of week: %q", s)
}
