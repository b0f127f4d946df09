package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/schoolbus-scheduler/internal/database"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
	"github.com/smarttransit/schoolbus-scheduler/pkg/geo"
)

// AssignStudentToStop makes stopID the student's active stop. The walking
// distance is computed from the coordinates and must not exceed the configured
// radius. Any previous active assignment is retired in the same transaction.
// Assigning the stop the student already uses returns that assignment.
func (e *ConsistencyEngine) AssignStudentToStop(ctx context.Context, studentID, stopID int64) (*models.StudentStopAssignment, error) {
	var result *models.StudentStopAssignment

	fields := logrus.Fields{"student_id": studentID, "stop_id": stopID}
	err := e.mutate(ctx, "assign_student_to_stop", fields, func(ctx context.Context, m *mutation) error {
		if err := m.tx.Lock(ctx, database.StudentLockKey(studentID)); err != nil {
			return err
		}

		student, err := m.tx.GetStudentByID(ctx, studentID)
		if err != nil {
			return reference("student_id", studentID, err)
		}
		stop, err := m.tx.GetBusStopByID(ctx, stopID)
		if err != nil {
			return reference("stop_id", stopID, err)
		}
		if !stop.IsActive {
			return validationErrorf(InactiveReference, "stop_id", "bus stop %d is not active", stopID)
		}

		distance, err := geo.Distance(student.Latitude, student.Longitude, stop.Latitude, stop.Longitude)
		if err != nil {
			return validationErrorf(InvalidField, "latitude", "%v", err)
		}
		if distance > e.policy.MaxWalkingDistanceMeters {
			return validationErrorf(ExcessiveWalkingDistance, "walking_distance",
				"stop %d is %.0f m from student %d, limit is %.0f m",
				stopID, distance, studentID, e.policy.MaxWalkingDistanceMeters)
		}
		m.validated()

		current, err := m.tx.GetActiveStopAssignment(ctx, studentID)
		switch {
		case err == nil && current.StopID == stopID:
			result = current
			return nil
		case err == nil:
			if err := m.tx.DeactivateStopAssignment(ctx, current.ID); err != nil {
				return err
			}
		case !errors.Is(err, database.ErrNotFound):
			return err
		}

		assignment := &models.StudentStopAssignment{
			StudentID:       studentID,
			StopID:          stopID,
			WalkingDistance: distance,
			IsActive:        true,
		}
		if err := m.tx.CreateStopAssignment(ctx, assignment); err != nil {
			return err
		}
		result = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StopAssignmentHistory lists every stop assignment of a student, newest first
func (e *ConsistencyEngine) StopAssignmentHistory(ctx context.Context, studentID int64) ([]models.StudentStopAssignment, error) {
	var history []models.StudentStopAssignment
	err := e.read(ctx, "stop_assignment_history", func(ctx context.Context, tx database.Tx) error {
		if _, err := tx.GetStudentByID(ctx, studentID); err != nil {
			return reference("student_id", studentID, err)
		}
		var err error
		history, err = tx.ListStopAssignmentsByStudent(ctx, studentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}
