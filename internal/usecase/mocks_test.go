package usecase_test

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/college-transport-tracker/internal/domain"
	"github.com/college-transport-tracker/internal/domain/repository"
	apperrors "github.com/college-transport-tracker/internal/pkg/errors"
)

// MockRouteRepository - мок для RouteRepository
type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) ListActive(ctx context.Context) ([]domain.Route, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Route), args.Error(1)
}

func (m *MockRouteRepository) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

// MockLocationRepository - мок для LocationRepository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) ListNewestFirst(ctx context.Context) ([]domain.VehicleLocation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VehicleLocation), args.Error(1)
}

func (m *MockLocationRepository) ListByRoute(ctx context.Context, routeID string, limit int) ([]domain.VehicleLocation, error) {
	args := m.Called(ctx, routeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VehicleLocation), args.Error(1)
}

func (m *MockLocationRepository) Insert(ctx context.Context, loc domain.VehicleLocation) (string, error) {
	args := m.Called(ctx, loc)
	return args.String(0), args.Error(1)
}

// MockRouteStatusCache - мок для RouteStatusCache
type MockRouteStatusCache struct {
	mock.Mock
}

func (m *MockRouteStatusCache) GetRouteStatuses(ctx context.Context) ([]domain.RouteStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RouteStatus), args.Error(1)
}

func (m *MockRouteStatusCache) SetRouteStatuses(ctx context.Context, statuses []domain.RouteStatus, ttl time.Duration) error {
	args := m.Called(ctx, statuses, ttl)
	return args.Error(0)
}

// memStore is an in-memory route and location store. It implements both
// repositories so a submitted location is visible to the next refresh.
type memStore struct {
	mu        sync.Mutex
	routes    []domain.Route
	locations []domain.VehicleLocation

	routesErr    error
	locationsErr error
	insertErr    error

	inserts   int
	listCalls int
	// afterList runs after ListNewestFirst has copied its result, with the
	// zero-based call number.
	afterList func(call int)
}

var (
	_ repository.RouteRepository    = (*memStore)(nil)
	_ repository.LocationRepository = (*memStore)(nil)
)

func newMemStore(routes ...domain.Route) *memStore {
	return &memStore{routes: routes}
}

func (s *memStore) ListActive(ctx context.Context) ([]domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.routesErr != nil {
		return nil, s.routesErr
	}
	out := make([]domain.Route, 0, len(s.routes))
	for _, r := range s.routes {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.routes {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, apperrors.ErrRouteNotFound
}

func (s *memStore) ListNewestFirst(ctx context.Context) ([]domain.VehicleLocation, error) {
	s.mu.Lock()
	if s.locationsErr != nil {
		err := s.locationsErr
		s.mu.Unlock()
		return nil, err
	}
	out := make([]domain.VehicleLocation, len(s.locations))
	copy(out, s.locations)
	call := s.listCalls
	s.listCalls++
	hook := s.afterList
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].NewerThan(out[j]) })

	if hook != nil {
		hook(call)
	}
	return out, nil
}

func (s *memStore) ListByRoute(ctx context.Context, routeID string, limit int) ([]domain.VehicleLocation, error) {
	all, err := s.ListNewestFirst(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.VehicleLocation, 0, limit)
	for _, l := range all {
		if l.RouteID == routeID && len(out) < limit {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *memStore) Insert(ctx context.Context, loc domain.VehicleLocation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.inserts++
	s.locations = append(s.locations, loc)
	return loc.ID, nil
}

func (s *memStore) add(loc domain.VehicleLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = append(s.locations, loc)
}

func (s *memStore) setRoutesErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routesErr = err
}

func (s *memStore) insertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts
}

func (s *memStore) listCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// fakeFeed hands out subscriptions whose events are pushed by the test.
type fakeFeed struct {
	mu   sync.Mutex
	subs []*fakeSubscription
	err  error
}

func (f *fakeFeed) Subscribe(ctx context.Context, collection string, mask domain.ChangeMask) (repository.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	sub := &fakeSubscription{
		collection: collection,
		mask:       mask,
		events:     make(chan domain.ChangeEvent, 16),
	}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeFeed) last() *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		return nil
	}
	return f.subs[len(f.subs)-1]
}

type fakeSubscription struct {
	collection string
	mask       domain.ChangeMask
	events     chan domain.ChangeEvent

	mu     sync.Mutex
	closed bool
	closes atomic.Int32
}

func (s *fakeSubscription) Events() <-chan domain.ChangeEvent {
	return s.events
}

func (s *fakeSubscription) Close() error {
	s.closes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	return nil
}

// push delivers an event unless the subscription is already closed.
func (s *fakeSubscription) push(ev domain.ChangeEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.events <- ev
	return true
}

func activeRoute(id, number string) domain.Route {
	return domain.Route{
		ID:          id,
		RouteNumber: number,
		RouteName:   "Route " + number,
		VehicleType: domain.VehicleBus,
		IsActive:    true,
	}
}

func locationAt(id, routeID, where string, at time.Time) domain.VehicleLocation {
	return domain.VehicleLocation{
		ID:              id,
		RouteID:         routeID,
		CurrentLocation: where,
		EstimatedTime:   "5 mins",
		Status:          domain.StatusOnTime,
		LastUpdated:     at,
	}
}
