package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// Store is the transactional entity store the scheduling engine runs against.
// InTx runs fn in one all-or-nothing scope: either every write fn made is
// committed or none is visible. Implementations run scopes with serializable
// isolation.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

// Tx is the set of queries available inside a transaction scope. Relations
// are explicit queries (StopsForRoute, ListStopAssignmentsByStudent...) rather
// than object references.
type Tx interface {
	UserStore
	StudentStore
	BusStore
	RouteStore
	AssignmentStore
	TravelTimeStore

	// Lock takes advisory locks held until the scope ends
	Lock(ctx context.Context, keys ...string) error
}

// UserStore covers users and their driver profiles
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateDriver(ctx context.Context, driver *models.Driver) error
	GetDriverByID(ctx context.Context, id int64) (*models.Driver, error)
	GetDriverByUserID(ctx context.Context, userID int64) (*models.Driver, error)
}

// StudentStore covers students, stops and the student-to-stop mapping
type StudentStore interface {
	CreateStudent(ctx context.Context, student *models.Student) error
	GetStudentByID(ctx context.Context, id int64) (*models.Student, error)
	CreateBusStop(ctx context.Context, stop *models.BusStop) error
	GetBusStopByID(ctx context.Context, id int64) (*models.BusStop, error)

	// GetActiveStopAssignment returns ErrNotFound when the student has none
	GetActiveStopAssignment(ctx context.Context, studentID int64) (*models.StudentStopAssignment, error)
	DeactivateStopAssignment(ctx context.Context, assignmentID int64) error
	CreateStopAssignment(ctx context.Context, assignment *models.StudentStopAssignment) error
	ListStopAssignmentsByStudent(ctx context.Context, studentID int64) ([]models.StudentStopAssignment, error)
}

// BusStore covers buses
type BusStore interface {
	CreateBus(ctx context.Context, bus *models.Bus) error
	GetBusByID(ctx context.Context, id int64) (*models.Bus, error)
}

// RouteStore covers routes and their ordered stops
type RouteStore interface {
	CreateRoute(ctx context.Context, route *models.Route) error
	GetRouteByID(ctx context.Context, id int64) (*models.Route, error)
	ListActiveRoutes(ctx context.Context) ([]models.Route, error)

	// StopsForRoute returns the route's stops ordered by sequence number
	StopsForRoute(ctx context.Context, routeID int64) ([]models.RouteStop, error)
	// ReplaceRouteStops swaps the whole stop list of a route and fills in the new ids
	ReplaceRouteStops(ctx context.Context, routeID int64, stops []models.RouteStop) error
	// UpdateScheduledArrivals rewrites scheduled_arrival_time of existing route stops
	UpdateScheduledArrivals(ctx context.Context, stops []models.RouteStop) error
}

// AssignmentStore covers daily route assignments
type AssignmentStore interface {
	CreateRouteAssignment(ctx context.Context, assignment *models.RouteAssignment) error
	UpdateRouteAssignment(ctx context.Context, assignment *models.RouteAssignment) error
	GetRouteAssignmentByID(ctx context.Context, id int64) (*models.RouteAssignment, error)
	// ListLiveAssignmentsByDate returns assignments on date with status scheduled or in_progress
	ListLiveAssignmentsByDate(ctx context.Context, date time.Time) ([]models.RouteAssignment, error)
}

// TravelTimeStore covers the append-only travel-time samples
type TravelTimeStore interface {
	CreateTravelTime(ctx context.Context, sample *models.TravelTime) error
	// GetLatestTravelTime returns the newest sample for key (last_updated, then id)
	GetLatestTravelTime(ctx context.Context, key models.TravelTimeKey) (*models.TravelTime, error)
	// ListTravelTimes returns every sample for key, newest first
	ListTravelTimes(ctx context.Context, key models.TravelTimeKey) ([]models.TravelTime, error)
}

// Advisory lock keys

// BusDateLockKey serializes assignment checks for one bus on one date
func BusDateLockKey(busID int64, date time.Time) string {
	return fmt.Sprintf("bus:%d:%s", busID, models.DateKey(date))
}

// DriverDateLockKey serializes assignment checks for one driver on one date
func DriverDateLockKey(driverID int64, date time.Time) string {
	return fmt.Sprintf("driver:%d:%s", driverID, models.DateKey(date))
}

// RouteLockKey serializes stop list and schedule changes of one route
func RouteLockKey(routeID int64) string {
	return fmt.Sprintf("route:%d", routeID)
}

// StudentLockKey serializes stop assignment changes of one student
func StudentLockKey(studentID int64) string {
	return fmt.Sprintf("student:%d", studentID)
}

// lockOrder dedupes and sorts keys so concurrent scopes acquire locks in the
// same order
func lockOrder(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	ordered := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)
	return ordered
}
