package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/config"
	httpDelivery "github.com/college-transport-tracker/internal/delivery/http"
	"github.com/college-transport-tracker/internal/delivery/http/handler"
	"github.com/college-transport-tracker/internal/domain"
	apperrors "github.com/college-transport-tracker/internal/pkg/errors"
	"github.com/college-transport-tracker/internal/usecase"
	"github.com/college-transport-tracker/web"
)

const (
	routeA1 = "11111111-1111-4111-8111-111111111111"
	routeB2 = "22222222-2222-4222-8222-222222222222"
)

// store - потокобезопасное хранилище в памяти для маршрутов и локаций
type store struct {
	mu        sync.Mutex
	routes    []domain.Route
	locations []domain.VehicleLocation
	routesErr error
	insertErr error
}

func (s *store) ListActive(ctx context.Context) ([]domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.routesErr != nil {
		return nil, s.routesErr
	}
	return append([]domain.Route(nil), s.routes...), nil
}

func (s *store) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.routes {
		if r.ID == id {
			route := r
			return &route, nil
		}
	}
	return nil, apperrors.ErrRouteNotFound
}

func (s *store) ListNewestFirst(ctx context.Context) ([]domain.VehicleLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.VehicleLocation, 0, len(s.locations))
	for i := len(s.locations) - 1; i >= 0; i-- {
		out = append(out, s.locations[i])
	}
	return out, nil
}

func (s *store) ListByRoute(ctx context.Context, routeID string, limit int) ([]domain.VehicleLocation, error) {
	all, _ := s.ListNewestFirst(ctx)
	out := make([]domain.VehicleLocation, 0)
	for _, l := range all {
		if l.RouteID == routeID && len(out) < limit {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *store) Insert(ctx context.Context, loc domain.VehicleLocation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.locations = append(s.locations, loc)
	return loc.ID, nil
}

func (s *store) insertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locations)
}

type checker struct{ err error }

func (c checker) Health(ctx context.Context) error { return c.err }

type testEnv struct {
	server *httpDelivery.Server
	store  *store
	vm     *usecase.RouteStatusViewModel
}

func newTestEnv(t *testing.T, health map[string]handler.HealthChecker) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	st := &store{
		routes: []domain.Route{
			{ID: routeA1, RouteNumber: "A1", RouteName: "North Campus Loop", VehicleType: domain.VehicleBus, IsActive: true},
			{ID: routeB2, RouteNumber: "B2", RouteName: "Downtown Express", VehicleType: domain.VehicleBus, IsActive: true},
		},
	}

	templates, err := web.Templates()
	require.NoError(t, err)

	vm := usecase.NewRouteStatusViewModel(st, st, nil, nil, logger, 0, time.Second)
	routeUC := usecase.NewRouteUseCase(st, st, logger, 50)
	locationUC := usecase.NewLocationUseCase(st, logger)

	if health == nil {
		health = map[string]handler.HealthChecker{"postgres": checker{}}
	}

	server := httpDelivery.NewServer(&config.Config{}, logger, httpDelivery.Handlers{
		Page:        handler.NewPageHandler(templates, vm, routeUC, locationUC, logger),
		RouteStatus: handler.NewRouteStatusHandler(vm, logger, time.Second),
		Route:       handler.NewRouteHandler(routeUC, logger),
		Location:    handler.NewLocationHandler(locationUC, vm, logger),
		Health:      handler.NewHealthHandler(health, logger),
	})
	t.Cleanup(func() { _ = vm.Dispose() })

	return &testEnv{server: server, store: st, vm: vm}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, target, contentType, body string) (int, string, http.Header) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := e.server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(raw), resp.Header
}

func decode(t *testing.T, body string) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	return env
}

type statusesPayload struct {
	Routes []struct {
		RouteNumber     string `json:"route_number"`
		CurrentLocation string `json:"current_location"`
		EstimatedTime   string `json:"estimated_time"`
		Status          string `json:"status"`
	} `json:"routes"`
	Loaded bool `json:"loaded"`
}

func TestSubmitLocation_ThenStatusesReflectIt(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body, _ := env.do(t, "POST", "/api/v1/vehicle-locations", "application/json",
		`{"route_id":"`+routeA1+`","current_location":"Library","estimated_time":"5 min","status":"delayed","latitude":"40.1","longitude":"-74.2"}`)
	require.Equal(t, 201, code, body)

	var created struct {
		ID      string `json:"id"`
		RouteID string `json:"route_id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, body).Data, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, routeA1, created.RouteID)

	code, body, _ = env.do(t, "GET", "/api/v1/route-statuses", "", "")
	require.Equal(t, 200, code)

	var snap statusesPayload
	require.NoError(t, json.Unmarshal(decode(t, body).Data, &snap))
	require.True(t, snap.Loaded)
	require.Len(t, snap.Routes, 2)
	assert.Equal(t, "A1", snap.Routes[0].RouteNumber)
	assert.Equal(t, "Library", snap.Routes[0].CurrentLocation)
	assert.Equal(t, "5 min", snap.Routes[0].EstimatedTime)
	assert.Equal(t, "delayed", snap.Routes[0].Status)
	assert.Equal(t, "Unknown", snap.Routes[1].CurrentLocation)
	assert.Equal(t, "N/A", snap.Routes[1].EstimatedTime)
	assert.Equal(t, "on-time", snap.Routes[1].Status)
}

func TestSubmitLocation_ValidationFailure(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body, _ := env.do(t, "POST", "/api/v1/vehicle-locations", "application/json",
		`{"route_id":"`+routeA1+`"}`)

	assert.Equal(t, 400, code)
	resp := decode(t, body)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_FAILURE", resp.Error.Code)
	assert.ElementsMatch(t, []interface{}{"current_location", "estimated_time"}, resp.Error.Details["fields"])
	assert.Equal(t, 0, env.store.insertCount())
}

func TestSubmitLocation_WriteFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.insertErr = errors.New("insert or update on table violates foreign key constraint")

	code, body, _ := env.do(t, "POST", "/api/v1/vehicle-locations", "application/json",
		`{"route_id":"`+routeA1+`","current_location":"Gym","estimated_time":"2 min"}`)

	assert.Equal(t, 502, code)
	resp := decode(t, body)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "WRITE_FAILURE", resp.Error.Code)
	assert.Contains(t, resp.Error.Details["reason"], "foreign key")
}

func TestSubmitLocation_MalformedBody(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body, _ := env.do(t, "POST", "/api/v1/vehicle-locations", "application/json", `{`)

	assert.Equal(t, 400, code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, body).Error.Code)
}

func TestRefreshRouteStatuses_FetchFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.routesErr = errors.New("connection refused")

	code, body, _ := env.do(t, "POST", "/api/v1/route-statuses/refresh", "", "")

	assert.Equal(t, 503, code)
	resp := decode(t, body)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FETCH_FAILURE", resp.Error.Code)
	assert.Equal(t, "Failed to fetch route information", resp.Error.Message)
}

func TestRefreshRouteStatuses_IsIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)

	_, first, _ := env.do(t, "POST", "/api/v1/route-statuses/refresh", "", "")
	_, second, _ := env.do(t, "POST", "/api/v1/route-statuses/refresh", "", "")

	var a, b statusesPayload
	require.NoError(t, json.Unmarshal(decode(t, first).Data, &a))
	require.NoError(t, json.Unmarshal(decode(t, second).Data, &b))
	assert.Equal(t, a.Routes, b.Routes)
}

func TestListRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body, _ := env.do(t, "GET", "/api/v1/routes", "", "")
	require.Equal(t, 200, code)

	var list struct {
		Routes []struct {
			ID          string `json:"id"`
			RouteNumber string `json:"route_number"`
		} `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(decode(t, body).Data, &list))
	require.Len(t, list.Routes, 2)
	assert.Equal(t, "A1", list.Routes[0].RouteNumber)
}

func TestGetRouteLocations(t *testing.T) {
	env := newTestEnv(t, nil)

	_, _, _ = env.do(t, "POST", "/api/v1/vehicle-locations", "application/json",
		`{"route_id":"`+routeB2+`","current_location":"Main Gate","estimated_time":"1 min"}`)

	code, body, _ := env.do(t, "GET", "/api/v1/routes/"+routeB2+"/locations?limit=5", "", "")
	require.Equal(t, 200, code, body)

	var history struct {
		RouteID   string `json:"route_id"`
		Locations []struct {
			CurrentLocation string `json:"current_location"`
		} `json:"locations"`
	}
	require.NoError(t, json.Unmarshal(decode(t, body).Data, &history))
	require.Len(t, history.Locations, 1)
	assert.Equal(t, "Main Gate", history.Locations[0].CurrentLocation)

	code, _, _ = env.do(t, "GET", "/api/v1/routes/"+routeB2+"/locations?limit=1000", "", "")
	assert.Equal(t, 400, code)

	code, body, _ = env.do(t, "GET", "/api/v1/routes/44444444-4444-4444-8444-444444444444/locations", "", "")
	assert.Equal(t, 404, code)
	assert.Equal(t, "ROUTE_NOT_FOUND", decode(t, body).Error.Code)
}

func TestIndexPage(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.vm.Refresh(context.Background())
	require.NoError(t, err)

	code, body, header := env.do(t, "GET", "/", "", "")

	require.Equal(t, 200, code)
	assert.Contains(t, header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Real-Time Tracking")
	assert.Contains(t, body, "North Campus Loop")
	assert.Contains(t, body, "Downtown Express")
	assert.Contains(t, body, "Coming Soon")
}

func TestIndexPage_FetchFailureShowsToast(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.routesErr = errors.New("timeout")
	_, err := env.vm.Refresh(context.Background())
	require.Error(t, err)

	code, body, _ := env.do(t, "GET", "/", "", "")

	require.Equal(t, 200, code)
	assert.Contains(t, body, "Error loading routes")
	assert.Contains(t, body, "Failed to fetch route information")
}

func TestAdminForm_SubmitRedirects(t *testing.T) {
	env := newTestEnv(t, nil)

	form := url.Values{
		"route_id":         {routeA1},
		"current_location": {"Science Building"},
		"estimated_time":   {"3 min"},
		"status":           {"on-time"},
	}
	code, _, header := env.do(t, "POST", "/admin/locations", "application/x-www-form-urlencoded", form.Encode())

	assert.Equal(t, 303, code)
	assert.Equal(t, "/admin?updated=1", header.Get("Location"))
	assert.Equal(t, 1, env.store.insertCount())

	snap := env.vm.Snapshot()
	require.True(t, snap.Loaded)
	assert.Equal(t, "Science Building", snap.Statuses[0].CurrentLocation())

	code, body, _ := env.do(t, "GET", "/admin?updated=1", "", "")
	require.Equal(t, 200, code)
	assert.Contains(t, body, "Vehicle location has been updated successfully")
}

func TestAdminForm_MissingFieldsKeepsInput(t *testing.T) {
	env := newTestEnv(t, nil)

	form := url.Values{
		"route_id":         {routeA1},
		"current_location": {"Cafeteria"},
	}
	code, body, _ := env.do(t, "POST", "/admin/locations", "application/x-www-form-urlencoded", form.Encode())

	assert.Equal(t, 400, code)
	assert.Contains(t, body, "Missing fields")
	assert.Contains(t, body, "Please fill in all required fields")
	assert.Contains(t, body, `value="Cafeteria"`)
	assert.Equal(t, 0, env.store.insertCount())
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, map[string]handler.HealthChecker{
		"postgres": checker{},
		"redis":    checker{err: errors.New("dial tcp: connection refused")},
	})

	code, body, _ := env.do(t, "GET", "/api/v1/health", "", "")

	assert.Equal(t, 503, code)
	var resp struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "healthy", resp.Components["postgres"])
	assert.Equal(t, "unhealthy", resp.Components["redis"])
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body, _ := env.do(t, "GET", "/api/v1/nope", "", "")

	assert.Equal(t, 404, code)
	assert.Equal(t, "HTTP_ERROR", decode(t, body).Error.Code)
}
