package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-bus-catalog/cache"
	"github.com/goliatone/go-bus-catalog/catalog"
	"github.com/goliatone/go-bus-catalog/internal/cachestore"
)

// fakeRepo is a map-backed catalog.RouteRepository for handler tests.
type fakeRepo struct {
	mu     sync.Mutex
	byID   map[int64]catalog.Route
	nextID int64
}

func newFakeRepo(routes ...catalog.Route) *fakeRepo {
	r := &fakeRepo{byID: make(map[int64]catalog.Route), nextID: 1}
	for _, route := range routes {
		r.byID[route.ID] = route
		if route.ID >= r.nextID {
			r.nextID = route.ID + 1
		}
	}
	return r
}

func (r *fakeRepo) List(ctx context.Context, limit, offset int) ([]catalog.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]catalog.Route, 0, len(r.byID))
	for id := int64(1); id < r.nextID; id++ {
		if route, ok := r.byID[id]; ok {
			all = append(all, route)
		}
	}
	if offset >= len(all) {
		return []catalog.Route{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id int64) (*catalog.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if route, ok := r.byID[id]; ok {
		copied := route
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeRepo) GetByRouteNo(ctx context.Context, routeNo string) (*catalog.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, route := range r.byID {
		if route.RouteNo == routeNo {
			copied := route
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) Create(ctx context.Context, fields catalog.Fields) (*catalog.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	route := catalog.Route{ID: r.nextID, Active: true}
	r.nextID++
	if v, ok := fields["route_no"].(string); ok {
		route.RouteNo = v
	}
	if v, ok := fields["origin"].(string); ok {
		route.Origin = v
	}
	r.byID[route.ID] = route
	return &route, nil
}

func (r *fakeRepo) Update(ctx context.Context, id int64, fields catalog.Fields) (*catalog.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	route, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	if v, ok := fields["route_no"].(string); ok {
		route.RouteNo = v
	}
	r.byID[id] = route
	return &route, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func newTestHandler(t *testing.T, routes ...catalog.Route) http.Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := cachestore.NewMemoryStore(cache.DefaultConfig(), log)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	svc := catalog.NewService(newFakeRepo(routes...), store, cache.NewKeySerializer(), time.Hour, log)
	return NewHandler(svc, log)
}

func doRequest(t *testing.T, h http.Handler, method, target string, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return rec, env
}

func seedRoutes() []catalog.Route {
	return []catalog.Route{
		{ID: 1, RouteNo: "A1", Origin: "Central Station", Active: true},
		{ID: 2, RouteNo: "B2", Origin: "Harbor", Active: true},
	}
}

func TestHandler_DetailsByID(t *testing.T) {
	h := newTestHandler(t, seedRoutes()...)

	rec, env := doRequest(t, h, http.MethodGet, "/v1/bus/details?id=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !env.Success {
		t.Error("expected success envelope")
	}
	data, _ := env.Data.(map[string]any)
	if data["route_no"] != "A1" {
		t.Errorf("unexpected data %v", env.Data)
	}
}

func TestHandler_DetailsByRouteNumber(t *testing.T) {
	h := newTestHandler(t, seedRoutes()...)

	rec, env := doRequest(t, h, http.MethodGet, "/v1/bus/details?route_number=B2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	data, _ := env.Data.(map[string]any)
	if data["id"] != float64(2) {
		t.Errorf("unexpected data %v", env.Data)
	}
}

func TestHandler_DetailsMissingSelector(t *testing.T) {
	h := newTestHandler(t, seedRoutes()...)

	rec, env := doRequest(t, h, http.MethodGet, "/v1/bus/details", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	if env.Success || env.Data != nil {
		t.Errorf("error envelope malformed: %+v", env)
	}
}

func TestHandler_DetailsNotFound(t *testing.T) {
	h := newTestHandler(t, seedRoutes()...)

	rec, _ := doRequest(t, h, http.MethodGet, "/v1/bus/details?id=77", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestHandler_ListDefaults(t *testing.T) {
	h := newTestHandler(t, seedRoutes()...)

	rec, env := doRequest(t, h, http.MethodGet, "/v1/bus", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	items, ok := env.Data.([]any)
	if !ok || len(items) != 2 {
		t.Errorf("expected 2 routes, got %v", env.Data)
	}
}

func TestHandler_ListPagination(t *testing.T) {
	h := newTestHandler(t, seedRoutes()...)

	_, env := doRequest(t, h, http.MethodGet, "/v1/bus?limit=1&offset=1", "")
	items, ok := env.Data.([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected 1 route, got %v", env.Data)
	}
	route, _ := items[0].(map[string]any)
	if route["route_no"] != "B2" {
		t.Errorf("unexpected page content %v", items)
	}
}

func TestHandler_Create(t *testing.T) {
	h := newTestHandler(t)

	rec, env := doRequest(t, h, http.MethodPost, "/v1/bus", `{"route_no":"C3","origin":"Old Town"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, env.Message)
	}
	data, _ := env.Data.(map[string]any)
	if data["route_no"] != "C3" {
		t.Errorf("unexpected data %v", env.Data)
	}
}

func TestHandler_CreateMissingBody(t *testing.T) {
	h := newTestHandler(t)

	rec, _ := doRequest(t, h, http.MethodPost, "/v1/bus", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestHandler_Update(t *testing.T) {
	h := newTestHandler(t, seedRoutes()...)

	rec, env := doRequest(t, h, http.MethodPut, "/v1/bus/1", `{"route_no":"A2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, env.Message)
	}
	data, _ := env.Data.(map[string]any)
	if data["route_no"] != "A2" {
		t.Errorf("unexpected data %v", env.Data)
	}

	// Read back through the cache path: must see the new value.
	_, after := doRequest(t, h, http.MethodGet, "/v1/bus/details?id=1", "")
	got, _ := after.Data.(map[string]any)
	if got["route_no"] != "A2" {
		t.Errorf("stale read after update: %v", after.Data)
	}
}

func TestHandler_UpdateErrors(t *testing.T) {
	h := newTestHandler(t, seedRoutes()...)

	if rec, _ := doRequest(t, h, http.MethodPut, "/v1/bus/1", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing body: status %d", rec.Code)
	}
	if rec, _ := doRequest(t, h, http.MethodPut, "/v1/bus/77", `{"route_no":"X1"}`); rec.Code != http.StatusNotFound {
		t.Errorf("missing id: status %d", rec.Code)
	}
	if rec, _ := doRequest(t, h, http.MethodPut, "/v1/bus/abc", `{"route_no":"X1"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id: status %d", rec.Code)
	}
}

func TestHandler_Delete(t *testing.T) {
	h := newTestHandler(t, seedRoutes()...)

	rec, env := doRequest(t, h, http.MethodDelete, "/v1/bus/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, env.Message)
	}

	if rec, _ := doRequest(t, h, http.MethodDelete, "/v1/bus/1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d", rec.Code)
	}
	if rec, _ := doRequest(t, h, http.MethodGet, "/v1/bus/details?id=1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("deleted route still served: status %d", rec.Code)
	}
}

func TestHandler_RequestIDHeader(t *testing.T) {
	h := newTestHandler(t, seedRoutes()...)

	rec, _ := doRequest(t, h, http.MethodGet, "/v1/bus", "")
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("response missing request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/bus", nil)
	req.Header.Set(requestIDHeader, "client-supplied")
	echo := httptest.NewRecorder()
	h.ServeHTTP(echo, req)
	if got := echo.Header().Get(requestIDHeader); got != "client-supplied" {
		t.Errorf("request id not echoed, got %q", got)
	}
}

func TestHandler_EnvelopeShape(t *testing.T) {
	h := newTestHandler(t, seedRoutes()...)

	rec, _ := doRequest(t, h, http.MethodGet, "/v1/bus/details?id=77", "")
	body := rec.Body.String()
	for _, field := range []string{`"success"`, `"message"`, `"data"`} {
		if !strings.Contains(body, field) {
			t.Errorf("envelope missing %s: %s", field, body)
		}
	}
}
