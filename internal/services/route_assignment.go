package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/schoolbus-scheduler/internal/database"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// AssignRoute creates (ID == 0) or updates a route assignment after checking
// its references and bus/driver exclusivity for the date. Submitting a run
// identical to a stored live one returns the stored row unchanged.
func (e *ConsistencyEngine) AssignRoute(ctx context.Context, in models.RouteAssignment) (*models.RouteAssignment, error) {
	candidate := in
	candidate.Date = models.DateOnly(candidate.Date)
	if candidate.Status == "" {
		candidate.Status = models.AssignmentStatusScheduled
	}
	if err := validateEntity(&candidate); err != nil {
		return nil, err
	}

	var result *models.RouteAssignment
	fields := logrus.Fields{
		"assignment_id": candidate.ID,
		"route_id":      candidate.RouteID,
		"bus_id":        candidate.BusID,
		"driver_id":     candidate.DriverID,
		"date":          models.DateKey(candidate.Date),
	}
	err := e.mutate(ctx, "assign_route", fields, func(ctx context.Context, m *mutation) error {
		err := m.tx.Lock(ctx,
			database.BusDateLockKey(candidate.BusID, candidate.Date),
			database.DriverDateLockKey(candidate.DriverID, candidate.Date),
		)
		if err != nil {
			return err
		}
		if err := checkAssignmentReferences(ctx, m.tx, &candidate); err != nil {
			return err
		}

		var existing *models.RouteAssignment
		if candidate.ID != 0 {
			existing, err = m.tx.GetRouteAssignmentByID(ctx, candidate.ID)
			if err != nil {
				return reference("assignment_id", candidate.ID, err)
			}
			if existing.Status == models.AssignmentStatusCompleted {
				return validationErrorf(AssignmentImmutable, "assignment_id", "assignment %d is completed", existing.ID)
			}
			if candidate.Status != existing.Status && !existing.Status.CanTransitionTo(candidate.Status) {
				return validationErrorf(InvalidStatusTransition, "status", "cannot move assignment %d from %s to %s",
					existing.ID, existing.Status, candidate.Status)
			}
			if existing.SameRun(&candidate) && existing.Status == candidate.Status {
				result = existing
				return nil
			}
		} else if candidate.Status.IsLive() {
			same, err := findLiveRun(ctx, m.tx, &candidate)
			if err != nil {
				return err
			}
			if same != nil {
				result = same
				return nil
			}
		}

		if err := e.conflicts.Check(ctx, m.tx, &candidate); err != nil {
			return err
		}
		m.validated()

		if existing != nil {
			candidate.CreatedAt = existing.CreatedAt
			err = m.tx.UpdateRouteAssignment(ctx, &candidate)
		} else {
			err = m.tx.CreateRouteAssignment(ctx, &candidate)
		}
		if errors.Is(err, database.ErrDuplicate) {
			// Another run won the bus or driver between check and write; a
			// retry reports the collision precisely
			return &InfrastructureError{Code: StoreUnavailable, Op: "assign_route", Err: err}
		}
		if err != nil {
			return err
		}
		result = &candidate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateAssignmentStatus moves an assignment along its lifecycle:
// scheduled -> in_progress -> completed, or scheduled -> completed.
// Completed assignments are immutable.
func (e *ConsistencyEngine) UpdateAssignmentStatus(ctx context.Context, assignmentID int64, status models.AssignmentStatus) (*models.RouteAssignment, error) {
	if !status.IsValid() {
		return nil, validationErrorf(InvalidField, "status", "unknown assignment status %q", status)
	}

	var result *models.RouteAssignment
	fields := logrus.Fields{"assignment_id": assignmentID, "status": status}
	err := e.mutate(ctx, "update_assignment_status", fields, func(ctx context.Context, m *mutation) error {
		a, err := m.tx.GetRouteAssignmentByID(ctx, assignmentID)
		if err != nil {
			return reference("assignment_id", assignmentID, err)
		}
		err = m.tx.Lock(ctx, database.BusDateLockKey(a.BusID, a.Date), database.DriverDateLockKey(a.DriverID, a.Date))
		if err != nil {
			return err
		}

		if a.Status == models.AssignmentStatusCompleted {
			return validationErrorf(AssignmentImmutable, "assignment_id", "assignment %d is completed", a.ID)
		}
		if a.Status == status {
			result = a
			return nil
		}
		if !a.Status.CanTransitionTo(status) {
			return validationErrorf(InvalidStatusTransition, "status", "cannot move assignment %d from %s to %s",
				a.ID, a.Status, status)
		}

		a.Status = status
		if err := e.conflicts.Check(ctx, m.tx, a); err != nil {
			return err
		}
		m.validated()

		if err := m.tx.UpdateRouteAssignment(ctx, a); err != nil {
			return err
		}
		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkAssignmentReferences requires an active route, a bus in service and an
// existing driver
func checkAssignmentReferences(ctx context.Context, tx database.Tx, a *models.RouteAssignment) error {
	if _, err := activeRoute(ctx, tx, a.RouteID); err != nil {
		return err
	}

	bus, err := tx.GetBusByID(ctx, a.BusID)
	if err != nil {
		return reference("bus_id", a.BusID, err)
	}
	if !bus.InService() {
		return validationErrorf(InactiveReference, "bus_id", "bus %d is %s", bus.ID, bus.Status)
	}

	if _, err := tx.GetDriverByID(ctx, a.DriverID); err != nil {
		return reference("driver_id", a.DriverID, err)
	}
	return nil
}

// findLiveRun returns the live assignment describing the same run as a, if any
func findLiveRun(ctx context.Context, tx database.Tx, a *models.RouteAssignment) (*models.RouteAssignment, error) {
	live, err := tx.ListLiveAssignmentsByDate(ctx, a.Date)
	if err != nil {
		return nil, err
	}
	for i := range live {
		if live[i].SameRun(a) {
			return &live[i], nil
		}
	}
	return nil, nil
}
