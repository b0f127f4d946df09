package services

import (
	"context"
	"fmt"
	"time"

	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// liveAssignmentLister is the slice of the store the detector reads
type liveAssignmentLister interface {
	ListLiveAssignmentsByDate(ctx context.Context, date time.Time) ([]models.RouteAssignment, error)
}

// ConflictDetector enforces bus and driver exclusivity per date
type ConflictDetector struct{}

// NewConflictDetector creates a new ConflictDetector
func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{}
}

// Check rejects candidate when its bus or driver already appears in another
// scheduled or in-progress assignment on the same date. Completed assignments
// never conflict, and a candidate never conflicts with its own stored row.
// Must run in the same transaction that persists candidate.
func (d *ConflictDetector) Check(ctx context.Context, q liveAssignmentLister, candidate *models.RouteAssignment) error {
	if !candidate.Status.IsLive() {
		return nil
	}

	live, err := q.ListLiveAssignmentsByDate(ctx, candidate.Date)
	if err != nil {
		return fmt.Errorf("failed to list live assignments: %w", err)
	}

	var driverClash *models.RouteAssignment
	for i := range live {
		other := &live[i]
		if candidate.ID != 0 && other.ID == candidate.ID {
			continue
		}
		// Bus collisions are reported ahead of driver collisions
		if other.BusID == candidate.BusID {
			return &ConflictError{Code: BusDoubleBooked, Candidate: *candidate, Existing: *other}
		}
		if other.DriverID == candidate.DriverID && driverClash == nil {
			driverClash = other
		}
	}

	if driverClash != nil {
		return &ConflictError{Code: DriverDoubleBooked, Candidate: *candidate, Existing: *driverClash}
	}
	return nil
}
