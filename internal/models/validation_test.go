package models

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstFieldError(t *testing.T, err error) validator.FieldError {
	t.Helper()
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
	return verrs[0]
}

func TestValidate(t *testing.T) {
	t.Run("Valid Student", func(t *testing.T) {
		s := &Student{
			FirstName: "Ada", LastName: "Lovelace", Grade: "5", Address: "1 Main St",
			Latitude: 40.0, Longitude: -73.0, GuardianPhone: "2125550142",
		}
		assert.NoError(t, Validate(s))
	})

	t.Run("Latitude Out Of Range", func(t *testing.T) {
		s := &Student{
			FirstName: "Ada", LastName: "Lovelace", Grade: "5", Address: "1 Main St",
			Latitude: 91, Longitude: -73.0, GuardianPhone: "2125550142",
		}
		fe := firstFieldError(t, Validate(s))
		assert.Equal(t, "latitude", fe.Field())
	})

	t.Run("Unknown Enum", func(t *testing.T) {
		b := &Bus{VehicleNumber: "SB-5", Capacity: 40, Status: "parked"}
		fe := firstFieldError(t, Validate(b))
		assert.Equal(t, "status", fe.Field())
		assert.Equal(t, "enum", fe.Tag())
	})

	t.Run("Zero Capacity", func(t *testing.T) {
		b := &Bus{VehicleNumber: "SB-5", Capacity: 0, Status: BusStatusActive}
		fe := firstFieldError(t, Validate(b))
		assert.Equal(t, "capacity", fe.Field())
	})

	t.Run("Travel Time Same Stop", func(t *testing.T) {
		tt := &TravelTime{
			TravelTimeKey:   TravelTimeKey{FromStopID: 1, ToStopID: 1, TimeOfDay: TimeOfDayMorning, DayOfWeek: Monday},
			DurationMinutes: 5,
		}
		fe := firstFieldError(t, Validate(tt))
		assert.Equal(t, "from_stop_id", fe.Field())
	})

	t.Run("Travel Time Longer Than A Day", func(t *testing.T) {
		tt := &TravelTime{
			TravelTimeKey:   TravelTimeKey{FromStopID: 1, ToStopID: 2, TimeOfDay: TimeOfDayMorning, DayOfWeek: Monday},
			DurationMinutes: MinutesPerDay + 1,
		}
		fe := firstFieldError(t, Validate(tt))
		assert.Equal(t, "duration_minutes", fe.Field())
		assert.Equal(t, "lte", fe.Tag())

		tt.DurationMinutes = MinutesPerDay
		assert.NoError(t, Validate(tt))
	})
}
