package models

import "time"

// Bus is a vehicle that can be assigned to route runs
type Bus struct {
	ID                   int64     `json:"bus_id" db:"bus_id"`
	VehicleNumber        string    `json:"vehicle_number" db:"vehicle_number" validate:"required,max=100"`
	Capacity             int       `json:"capacity" db:"capacity" validate:"gt=0"`
	WheelchairAccessible bool      `json:"wheelchair_accessible" db:"wheelchair_accessible"`
	Status               BusStatus `json:"status" db:"status" validate:"enum"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}

// InService reports whether the bus can take new assignments
func (b *Bus) InService() bool {
	return b.Status == BusStatusActive
}
