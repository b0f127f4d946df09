package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// StudentRepository handles database operations for students, bus_stops and
// student_stop_assignments tables
type StudentRepository struct {
	q sqlx.ExtContext
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(q sqlx.ExtContext) *StudentRepository {
	return &StudentRepository{q: q}
}

// CreateStudent inserts a student
func (r *StudentRepository) CreateStudent(ctx context.Context, s *models.Student) error {
	query := `
		INSERT INTO students (
			first_name, last_name, grade, address, latitude, longitude,
			special_needs, guardian_phone
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING student_id, created_at
	`
	err := r.q.QueryRowxContext(ctx, query,
		s.FirstName, s.LastName, s.Grade, s.Address, s.Latitude, s.Longitude,
		s.SpecialNeeds, s.GuardianPhone,
	).Scan(&s.ID, &s.CreatedAt)
	return classify("create student", err)
}

// GetStudentByID retrieves a student by id
func (r *StudentRepository) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `
		SELECT student_id, first_name, last_name, grade, address, latitude, longitude,
			   special_needs, guardian_phone, created_at
		FROM students
		WHERE student_id = $1
	`
	student := &models.Student{}
	if err := sqlx.GetContext(ctx, r.q, student, query, id); err != nil {
		return nil, classify("get student", err)
	}
	return student, nil
}

// CreateBusStop inserts a bus stop
func (r *StudentRepository) CreateBusStop(ctx context.Context, stop *models.BusStop) error {
	query := `
		INSERT INTO bus_stops (name, address, latitude, longitude, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING stop_id, created_at
	`
	err := r.q.QueryRowxContext(ctx, query,
		stop.Name, stop.Address, stop.Latitude, stop.Longitude, stop.IsActive,
	).Scan(&stop.ID, &stop.CreatedAt)
	return classify("create bus stop", err)
}

// GetBusStopByID retrieves a bus stop by id
func (r *StudentRepository) GetBusStopByID(ctx context.Context, id int64) (*models.BusStop, error) {
	query := `
		SELECT stop_id, name, address, latitude, longitude, is_active, created_at
		FROM bus_stops
		WHERE stop_id = $1
	`
	stop := &models.BusStop{}
	if err := sqlx.GetContext(ctx, r.q, stop, query, id); err != nil {
		return nil, classify("get bus stop", err)
	}
	return stop, nil
}

// GetActiveStopAssignment retrieves the student's current stop assignment
func (r *StudentRepository) GetActiveStopAssignment(ctx context.Context, studentID int64) (*models.StudentStopAssignment, error) {
	query := `
		SELECT assignment_id, student_id, stop_id, walking_distance, is_active, created_at
		FROM student_stop_assignments
		WHERE student_id = $1 AND is_active
		ORDER BY assignment_id DESC
		LIMIT 1
	`
	assignment := &models.StudentStopAssignment{}
	if err := sqlx.GetContext(ctx, r.q, assignment, query, studentID); err != nil {
		return nil, classify("get active stop assignment", err)
	}
	return assignment, nil
}

// DeactivateStopAssignment retires an assignment, keeping the row for history
func (r *StudentRepository) DeactivateStopAssignment(ctx context.Context, assignmentID int64) error {
	query := `UPDATE student_stop_assignments SET is_active = FALSE WHERE assignment_id = $1`
	result, err := r.q.ExecContext(ctx, query, assignmentID)
	if err != nil {
		return classify("deactivate stop assignment", err)
	}
	return requireOneRow("deactivate stop assignment", result)
}

// CreateStopAssignment inserts a stop assignment
func (r *StudentRepository) CreateStopAssignment(ctx context.Context, a *models.StudentStopAssignment) error {
	query := `
		INSERT INTO student_stop_assignments (student_id, stop_id, walking_distance, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING assignment_id, created_at
	`
	err := r.q.QueryRowxContext(ctx, query, a.StudentID, a.StopID, a.WalkingDistance, a.IsActive).
		Scan(&a.ID, &a.CreatedAt)
	return classify("create stop assignment", err)
}

// ListStopAssignmentsByStudent returns every assignment a student ever had, newest first
func (r *StudentRepository) ListStopAssignmentsByStudent(ctx context.Context, studentID int64) ([]models.StudentStopAssignment, error) {
	query := `
		SELECT assignment_id, student_id, stop_id, walking_distance, is_active, created_at
		FROM student_stop_assignments
		WHERE student_id = $1
		ORDER BY assignment_id DESC
	`
	assignments := []models.StudentStopAssignment{}
	if err := sqlx.SelectContext(ctx, r.q, &assignments, query, studentID); err != nil {
		return nil, classify("list stop assignments", err)
	}
	return assignments, nil
}
