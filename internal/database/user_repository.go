package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// UserRepository handles database operations for users and drivers tables
type UserRepository struct {
	q sqlx.ExtContext
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(q sqlx.ExtContext) *UserRepository {
	return &UserRepository{q: q}
}

// CreateUser inserts a user and fills in its id and created_at
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, role, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id, created_at
	`
	err := r.q.QueryRowxContext(ctx, query, user.Username, user.Role, user.Email, user.Phone).
		Scan(&user.ID, &user.CreatedAt)
	return classify("create user", err)
}

// GetUserByID retrieves a user by id
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT user_id, username, role, email, phone, created_at
		FROM users
		WHERE user_id = $1
	`
	user := &models.User{}
	if err := sqlx.GetContext(ctx, r.q, user, query, id); err != nil {
		return nil, classify("get user", err)
	}
	return user, nil
}

// CreateDriver inserts a driver profile
func (r *UserRepository) CreateDriver(ctx context.Context, driver *models.Driver) error {
	query := `
		INSERT INTO drivers (user_id, first_name, last_name, license_number, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING driver_id, created_at
	`
	err := r.q.QueryRowxContext(ctx, query,
		driver.UserID, driver.FirstName, driver.LastName, driver.LicenseNumber, driver.Phone,
	).Scan(&driver.ID, &driver.CreatedAt)
	return classify("create driver", err)
}

// GetDriverByID retrieves a driver by id
func (r *UserRepository) GetDriverByID(ctx context.Context, id int64) (*models.Driver, error) {
	return r.getDriver(ctx, "driver_id", id)
}

// GetDriverByUserID retrieves the driver profile linked to a user
func (r *UserRepository) GetDriverByUserID(ctx context.Context, userID int64) (*models.Driver, error) {
	return r.getDriver(ctx, "user_id", userID)
}

func (r *UserRepository) getDriver(ctx context.Context, column string, value int64) (*models.Driver, error) {
	query := `
		SELECT driver_id, user_id, first_name, last_name, license_number, phone, created_at
		FROM drivers
		WHERE ` + column + ` = $1
	`
	driver := &models.Driver{}
	if err := sqlx.GetContext(ctx, r.q, driver, query, value); err != nil {
		return nil, classify("get driver", err)
	}
	return driver, nil
}
