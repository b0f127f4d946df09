package models

import (
	"fmt"
	"time"
)

// TravelTimeKey identifies the bucket a travel-time sample belongs to
type TravelTimeKey struct {
	FromStopID int64     `json:"from_stop_id" db:"from_stop_id" validate:"gt=0,nefield=ToStopID"`
	ToStopID   int64     `json:"to_stop_id" db:"to_stop_id" validate:"gt=0"`
	TimeOfDay  TimeOfDay `json:"time_of_day" db:"time_of_day" validate:"enum"`
	DayOfWeek  DayOfWeek `json:"day_of_week" db:"day_of_week" validate:"enum"`
}

func (k TravelTimeKey) String() string {
	return fmt.Sprintf("%d->%d/%s/%s", k.FromStopID, k.ToStopID, k.TimeOfDay, k.DayOfWeek)
}

// TravelTime is one observed duration between two stops. Samples are
// append-only: the most recently updated sample for a key wins.
type TravelTime struct {
	ID int64 `json:"travel_time_id" db:"travel_time_id"`
	TravelTimeKey
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes" validate:"gt=0,lte=1440"`
	LastUpdated     time.Time `json:"last_updated" db:"last_updated"`
}

// Supersedes reports whether t wins over other for the same key: later
// LastUpdated first, then the higher id
func (t *TravelTime) Supersedes(other *TravelTime) bool {
	if !t.LastUpdated.Equal(other.LastUpdated) {
		return t.LastUpdated.After(other.LastUpdated)
	}
	return t.ID > other.ID
}
