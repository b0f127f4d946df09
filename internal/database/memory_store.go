package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// MemoryStore is an in-process Store for tests and ephemeral environments.
// Scopes run one at a time against a copy of the state, and the copy replaces
// the state only when fn succeeds, which gives serializable all-or-nothing
// semantics without locks per key.
type MemoryStore struct {
	sem   chan struct{}
	state *memoryState
	now   func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		sem:   make(chan struct{}, 1),
		state: newMemoryState(),
		now:   time.Now,
	}
	return s
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Tx    = (*memoryTx)(nil)
)

type memoryState struct {
	seq             map[string]int64
	users           map[int64]models.User
	drivers         map[int64]models.Driver
	students        map[int64]models.Student
	stops           map[int64]models.BusStop
	stopAssignments map[int64]models.StudentStopAssignment
	buses           map[int64]models.Bus
	routes          map[int64]models.Route
	routeStops      map[int64][]models.RouteStop // by route id, ordered by sequence
	assignments     map[int64]models.RouteAssignment
	travelTimes     []models.TravelTime
}

func newMemoryState() *memoryState {
	return &memoryState{
		seq:             map[string]int64{},
		users:           map[int64]models.User{},
		drivers:         map[int64]models.Driver{},
		students:        map[int64]models.Student{},
		stops:           map[int64]models.BusStop{},
		stopAssignments: map[int64]models.StudentStopAssignment{},
		buses:           map[int64]models.Bus{},
		routes:          map[int64]models.Route{},
		routeStops:      map[int64][]models.RouteStop{},
		assignments:     map[int64]models.RouteAssignment{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memoryState) clone() *memoryState {
	stops := make(map[int64][]models.RouteStop, len(s.routeStops))
	for id, list := range s.routeStops {
		stops[id] = append([]models.RouteStop(nil), list...)
	}
	return &memoryState{
		seq:             cloneMap(s.seq),
		users:           cloneMap(s.users),
		drivers:         cloneMap(s.drivers),
		students:        cloneMap(s.students),
		stops:           cloneMap(s.stops),
		stopAssignments: cloneMap(s.stopAssignments),
		buses:           cloneMap(s.buses),
		routes:          cloneMap(s.routes),
		routeStops:      stops,
		assignments:     cloneMap(s.assignments),
		travelTimes:     append([]models.TravelTime(nil), s.travelTimes...),
	}
}

func (s *memoryState) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// InTx implements Store
func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return classify("begin transaction", ctx.Err())
	}
	defer func() { <-s.sem }()

	working := s.state.clone()
	if err := fn(&memoryTx{state: working, now: s.now}); err != nil {
		return err
	}

	// A scope that outlived its deadline is discarded, never half-applied
	if err := ctx.Err(); err != nil {
		return classify("commit transaction", err)
	}
	s.state = working
	return nil
}

// Ping implements Store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close implements Store
func (s *MemoryStore) Close() error {
	return nil
}

type memoryTx struct {
	state *memoryState
	now   func() time.Time
}

func notFound(op string, id int64) error {
	return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
}

func (t *memoryTx) Lock(ctx context.Context, keys ...string) error {
	return ctx.Err()
}

func (t *memoryTx) CreateUser(ctx context.Context, user *models.User) error {
	for _, u := range t.state.users {
		if u.Username == user.Username {
			return fmt.Errorf("create user %q: %w", user.Username, ErrDuplicate)
		}
	}
	user.ID = t.state.next("users")
	user.CreatedAt = t.now()
	t.state.users[user.ID] = *user
	return nil
}

func (t *memoryTx) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := t.state.users[id]
	if !ok {
		return nil, notFound("get user", id)
	}
	return &u, nil
}

func (t *memoryTx) CreateDriver(ctx context.Context, driver *models.Driver) error {
	for _, d := range t.state.drivers {
		if d.UserID == driver.UserID {
			return fmt.Errorf("create driver for user %d: %w", driver.UserID, ErrDuplicate)
		}
	}
	driver.ID = t.state.next("drivers")
	driver.CreatedAt = t.now()
	t.state.drivers[driver.ID] = *driver
	return nil
}

func (t *memoryTx) GetDriverByID(ctx context.Context, id int64) (*models.Driver, error) {
	d, ok := t.state.drivers[id]
	if !ok {
		return nil, notFound("get driver", id)
	}
	return &d, nil
}

func (t *memoryTx) GetDriverByUserID(ctx context.Context, userID int64) (*models.Driver, error) {
	for _, d := range t.state.drivers {
		if d.UserID == userID {
			return &d, nil
		}
	}
	return nil, notFound("get driver by user", userID)
}

func (t *memoryTx) CreateStudent(ctx context.Context, student *models.Student) error {
	student.ID = t.state.next("students")
	student.CreatedAt = t.now()
	t.state.students[student.ID] = *student
	return nil
}

func (t *memoryTx) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	s, ok := t.state.students[id]
	if !ok {
		return nil, notFound("get student", id)
	}
	return &s, nil
}

func (t *memoryTx) CreateBusStop(ctx context.Context, stop *models.BusStop) error {
	stop.ID = t.state.next("bus_stops")
	stop.CreatedAt = t.now()
	t.state.stops[stop.ID] = *stop
	return nil
}

func (t *memoryTx) GetBusStopByID(ctx context.Context, id int64) (*models.BusStop, error) {
	s, ok := t.state.stops[id]
	if !ok {
		return nil, notFound("get bus stop", id)
	}
	return &s, nil
}

func (t *memoryTx) GetActiveStopAssignment(ctx context.Context, studentID int64) (*models.StudentStopAssignment, error) {
	var active *models.StudentStopAssignment
	for _, a := range t.state.stopAssignments {
		if a.StudentID == studentID && a.IsActive && (active == nil || a.ID > active.ID) {
			a := a
			active = &a
		}
	}
	if active == nil {
		return nil, notFound("get active stop assignment for student", studentID)
	}
	return active, nil
}

func (t *memoryTx) DeactivateStopAssignment(ctx context.Context, assignmentID int64) error {
	a, ok := t.state.stopAssignments[assignmentID]
	if !ok {
		return notFound("deactivate stop assignment", assignmentID)
	}
	a.IsActive = false
	t.state.stopAssignments[assignmentID] = a
	return nil
}

func (t *memoryTx) CreateStopAssignment(ctx context.Context, a *models.StudentStopAssignment) error {
	if a.IsActive {
		for _, existing := range t.state.stopAssignments {
			if existing.StudentID == a.StudentID && existing.IsActive {
				return fmt.Errorf("create stop assignment for student %d: %w", a.StudentID, ErrDuplicate)
			}
		}
	}
	a.ID = t.state.next("student_stop_assignments")
	a.CreatedAt = t.now()
	t.state.stopAssignments[a.ID] = *a
	return nil
}

func (t *memoryTx) ListStopAssignmentsByStudent(ctx context.Context, studentID int64) ([]models.StudentStopAssignment, error) {
	out := []models.StudentStopAssignment{}
	for _, a := range t.state.stopAssignments {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (t *memoryTx) CreateBus(ctx context.Context, bus *models.Bus) error {
	bus.ID = t.state.next("buses")
	bus.CreatedAt = t.now()
	t.state.buses[bus.ID] = *bus
	return nil
}

func (t *memoryTx) GetBusByID(ctx context.Context, id int64) (*models.Bus, error) {
	b, ok := t.state.buses[id]
	if !ok {
		return nil, notFound("get bus", id)
	}
	return &b, nil
}

func (t *memoryTx) CreateRoute(ctx context.Context, route *models.Route) error {
	route.ID = t.state.next("routes")
	route.CreatedAt = t.now()
	t.state.routes[route.ID] = *route
	return nil
}

func (t *memoryTx) GetRouteByID(ctx context.Context, id int64) (*models.Route, error) {
	r, ok := t.state.routes[id]
	if !ok {
		return nil, notFound("get route", id)
	}
	return &r, nil
}

func (t *memoryTx) ListActiveRoutes(ctx context.Context) ([]models.Route, error) {
	out := []models.Route{}
	for _, r := range t.state.routes {
		if r.IsActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memoryTx) StopsForRoute(ctx context.Context, routeID int64) ([]models.RouteStop, error) {
	return append([]models.RouteStop{}, t.state.routeStops[routeID]...), nil
}

func (t *memoryTx) ReplaceRouteStops(ctx context.Context, routeID int64, stops []models.RouteStop) error {
	seen := make(map[int]struct{}, len(stops))
	for i := range stops {
		if _, dup := seen[stops[i].SequenceNumber]; dup {
			return fmt.Errorf("insert route stop seq %d: %w", stops[i].SequenceNumber, ErrDuplicate)
		}
		seen[stops[i].SequenceNumber] = struct{}{}
		stops[i].RouteID = routeID
		stops[i].ID = t.state.next("route_stops")
	}
	stored := append([]models.RouteStop(nil), stops...)
	sort.Slice(stored, func(i, j int) bool { return stored[i].SequenceNumber < stored[j].SequenceNumber })
	t.state.routeStops[routeID] = stored
	return nil
}

func (t *memoryTx) UpdateScheduledArrivals(ctx context.Context, stops []models.RouteStop) error {
	for _, update := range stops {
		list := t.state.routeStops[update.RouteID]
		found := false
		for i := range list {
			if list[i].ID == update.ID {
				list[i].ScheduledArrivalTime = update.ScheduledArrivalTime
				found = true
				break
			}
		}
		if !found {
			return notFound("update scheduled arrival for route stop", update.ID)
		}
	}
	return nil
}

func (t *memoryTx) CreateRouteAssignment(ctx context.Context, a *models.RouteAssignment) error {
	if err := t.checkLiveUnique(a); err != nil {
		return err
	}
	a.ID = t.state.next("route_assignments")
	a.Date = models.DateOnly(a.Date)
	a.CreatedAt = t.now()
	a.UpdatedAt = a.CreatedAt
	t.state.assignments[a.ID] = *a
	return nil
}

func (t *memoryTx) UpdateRouteAssignment(ctx context.Context, a *models.RouteAssignment) error {
	if _, ok := t.state.assignments[a.ID]; !ok {
		return notFound("update route assignment", a.ID)
	}
	if err := t.checkLiveUnique(a); err != nil {
		return err
	}
	a.Date = models.DateOnly(a.Date)
	a.UpdatedAt = t.now()
	t.state.assignments[a.ID] = *a
	return nil
}

// checkLiveUnique mirrors the partial unique indexes on route_assignments
func (t *memoryTx) checkLiveUnique(a *models.RouteAssignment) error {
	if !a.Status.IsLive() {
		return nil
	}
	day := models.DateKey(a.Date)
	for _, other := range t.state.assignments {
		if other.ID == a.ID || !other.Status.IsLive() || models.DateKey(other.Date) != day {
			continue
		}
		if other.BusID == a.BusID || other.DriverID == a.DriverID {
			return fmt.Errorf("route assignment %d collides with %d: %w", a.ID, other.ID, ErrDuplicate)
		}
	}
	return nil
}

func (t *memoryTx) GetRouteAssignmentByID(ctx context.Context, id int64) (*models.RouteAssignment, error) {
	a, ok := t.state.assignments[id]
	if !ok {
		return nil, notFound("get route assignment", id)
	}
	return &a, nil
}

func (t *memoryTx) ListLiveAssignmentsByDate(ctx context.Context, date time.Time) ([]models.RouteAssignment, error) {
	day := models.DateKey(date)
	out := []models.RouteAssignment{}
	for _, a := range t.state.assignments {
		if a.Status.IsLive() && models.DateKey(a.Date) == day {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memoryTx) CreateTravelTime(ctx context.Context, sample *models.TravelTime) error {
	sample.ID = t.state.next("travel_times")
	t.state.travelTimes = append(t.state.travelTimes, *sample)
	return nil
}

func (t *memoryTx) GetLatestTravelTime(ctx context.Context, key models.TravelTimeKey) (*models.TravelTime, error) {
	samples, _ := t.ListTravelTimes(ctx, key)
	if len(samples) == 0 {
		return nil, fmt.Errorf("get latest travel time %s: %w", key, ErrNotFound)
	}
	return &samples[0], nil
}

func (t *memoryTx) ListTravelTimes(ctx context.Context, key models.TravelTimeKey) ([]models.TravelTime, error) {
	out := []models.TravelTime{}
	for _, s := range t.state.travelTimes {
		if s.TravelTimeKey == key {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Supersedes(&out[j]) })
	return out, nil
}
