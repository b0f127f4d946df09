package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/schoolbus-scheduler/internal/database"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// RegisterUser creates a user. The role is fixed from here on.
func (e *ConsistencyEngine) RegisterUser(ctx context.Context, in models.User) (*models.User, error) {
	user := in
	phone, err := e.normalisePhone("phone", user.Phone)
	if err != nil {
		return nil, err
	}
	user.Phone = phone
	if err := validateEntity(&user); err != nil {
		return nil, err
	}

	err = e.mutate(ctx, "register_user", logrus.Fields{"username": user.Username, "role": user.Role},
		func(ctx context.Context, m *mutation) error {
			m.validated()
			err := m.tx.CreateUser(ctx, &user)
			if errors.Is(err, database.ErrDuplicate) {
				return validationErrorf(InvalidField, "username", "username %q is taken", user.Username)
			}
			return err
		})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterDriver links a driver profile to a user with the driver role.
// A user has at most one driver profile.
func (e *ConsistencyEngine) RegisterDriver(ctx context.Context, in models.Driver) (*models.Driver, error) {
	driver := in
	phone, err := e.normalisePhone("phone", driver.Phone)
	if err != nil {
		return nil, err
	}
	driver.Phone = phone
	if err := validateEntity(&driver); err != nil {
		return nil, err
	}

	err = e.mutate(ctx, "register_driver", logrus.Fields{"user_id": driver.UserID},
		func(ctx context.Context, m *mutation) error {
			user, err := m.tx.GetUserByID(ctx, driver.UserID)
			if err != nil {
				return reference("user_id", driver.UserID, err)
			}
			if user.Role != models.RoleDriver {
				return validationErrorf(InvalidField, "user_id", "user %d has role %s, not driver", user.ID, user.Role)
			}

			existing, err := m.tx.GetDriverByUserID(ctx, driver.UserID)
			switch {
			case err == nil:
				return validationErrorf(InvalidField, "user_id", "user %d already has driver %d", user.ID, existing.ID)
			case !errors.Is(err, database.ErrNotFound):
				return err
			}
			m.validated()

			err = m.tx.CreateDriver(ctx, &driver)
			if errors.Is(err, database.ErrDuplicate) {
				return validationErrorf(InvalidField, "user_id", "user %d already has a driver", user.ID)
			}
			return err
		})
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// RegisterStudent creates a student
func (e *ConsistencyEngine) RegisterStudent(ctx context.Context, in models.Student) (*models.Student, error) {
	student := in
	phone, err := e.normalisePhone("guardian_phone", student.GuardianPhone)
	if err != nil {
		return nil, err
	}
	student.GuardianPhone = phone
	if err := validateEntity(&student); err != nil {
		return nil, err
	}

	err = e.mutate(ctx, "register_student", logrus.Fields{"special_needs": student.SpecialNeeds},
		func(ctx context.Context, m *mutation) error {
			m.validated()
			return m.tx.CreateStudent(ctx, &student)
		})
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// RegisterBusStop creates a bus stop
func (e *ConsistencyEngine) RegisterBusStop(ctx context.Context, in models.BusStop) (*models.BusStop, error) {
	stop := in
	if err := validateEntity(&stop); err != nil {
		return nil, err
	}

	err := e.mutate(ctx, "register_bus_stop", logrus.Fields{"name": stop.Name},
		func(ctx context.Context, m *mutation) error {
			m.validated()
			return m.tx.CreateBusStop(ctx, &stop)
		})
	if err != nil {
		return nil, err
	}
	return &stop, nil
}

// RegisterBus creates a bus
func (e *ConsistencyEngine) RegisterBus(ctx context.Context, in models.Bus) (*models.Bus, error) {
	bus := in
	if err := validateEntity(&bus); err != nil {
		return nil, err
	}

	err := e.mutate(ctx, "register_bus", logrus.Fields{"vehicle_number": bus.VehicleNumber},
		func(ctx context.Context, m *mutation) error {
			m.validated()
			return m.tx.CreateBus(ctx, &bus)
		})
	if err != nil {
		return nil, err
	}
	return &bus, nil
}

// RegisterRoute creates a route without stops; see DefineRouteStops
func (e *ConsistencyEngine) RegisterRoute(ctx context.Context, in models.Route) (*models.Route, error) {
	route := in
	if err := validateEntity(&route); err != nil {
		return nil, err
	}

	err := e.mutate(ctx, "register_route", logrus.Fields{"name": route.Name, "direction": route.Direction},
		func(ctx context.Context, m *mutation) error {
			m.validated()
			return m.tx.CreateRoute(ctx, &route)
		})
	if err != nil {
		return nil, err
	}
	return &route, nil
}
