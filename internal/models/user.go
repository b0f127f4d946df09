package models

import "time"

// User is a login account. Its role is fixed when the account is created.
type User struct {
	ID        int64     `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username" validate:"required,max=150"`
	Role      Role      `json:"role" db:"role" validate:"enum"`
	Email     string    `json:"email" db:"email" validate:"required,email,max=255"`
	Phone     string    `json:"phone" db:"phone" validate:"required,max=20"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Driver is the operational profile of a user with the driver role.
// Each user has at most one driver profile.
type Driver struct {
	ID            int64     `json:"driver_id" db:"driver_id"`
	UserID        int64     `json:"user_id" db:"user_id" validate:"gt=0"`
	FirstName     string    `json:"first_name" db:"first_name" validate:"required,max=100"`
	LastName      string    `json:"last_name" db:"last_name" validate:"required,max=100"`
	LicenseNumber string    `json:"license_number" db:"license_number" validate:"required,max=100"`
	Phone         string    `json:"phone" db:"phone" validate:"required,max=20"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// FullName returns "First Last"
func (d *Driver) FullName() string {
	return d.FirstName + " " + d.LastName
}
