package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gangland/server/internal/clock"
	"github.com/gangland/server/internal/domain/game"
	"github.com/gangland/server/internal/domain/tables"
	"github.com/gangland/server/internal/gateways/memory"
)

const testKey = "0123456789abcdef0123456789abcdef"

var testNow = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

type testServer struct {
	app      *fiber.App
	sessions *Sessions
	clock    *clock.Manual
}

func newTestServer(t *testing.T, cfg ServerConfig) *testServer {
	t.Helper()
	clk := clock.NewManual(testNow)
	src := game.StaticTables(tables.Default())
	svc := game.NewService(memory.New(), src, clk)
	sessions := NewSessions(testKey, time.Hour, clk)
	app := NewServer(cfg, Deps{Game: svc, Tables: src, Sessions: sessions})
	return &testServer{app: app, sessions: sessions, clock: clk}
}

func (s *testServer) do(t *testing.T, method, path, playerID, body string) (int, APIResponse) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if playerID != "" {
		token, err := s.sessions.Issue(playerID)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t, ServerConfig{})

	if code, _ := s.do(t, http.MethodGet, "/health", "", ""); code != http.StatusOK {
		t.Errorf("GET /health = %d", code)
	}
	code, resp := s.do(t, http.MethodGet, "/api/tables", "", "")
	if code != http.StatusOK || !resp.Success {
		t.Errorf("GET /api/tables = %d, %+v", code, resp.Error)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, ServerConfig{})

	code, resp := s.do(t, http.MethodGet, "/api/me", "", "")
	if code != http.StatusUnauthorized || resp.Error.Code != "UNAUTHORIZED" {
		t.Errorf("GET /api/me without token = %d, %+v", code, resp.Error)
	}

	token, _ := s.sessions.Issue("p1")
	s.clock.Advance(2 * time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	res, _ := s.app.Test(req, -1)
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("expired token status = %d", res.StatusCode)
	}
}

func TestGameErrorStatuses(t *testing.T) {
	s := newTestServer(t, ServerConfig{})

	if code, resp := s.do(t, http.MethodPost, "/api/players", "p1", `{"username":"vito"}`); code != http.StatusCreated {
		t.Fatalf("register = %d, %+v", code, resp.Error)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"duplicate username", http.MethodPost, "/api/players", `{"username":"VITO"}`, http.StatusConflict, "CONFLICT"},
		{"bad crime id", http.MethodPost, "/api/crimes/99", "", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"travel without city", http.MethodPost, "/api/travel", `{}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"unknown listing", http.MethodPost, "/api/market/nope/buy", `{"expectedPrice":10}`, http.StatusNotFound, "NOT_FOUND"},
		{"gun without funds", http.MethodPost, "/api/shop/guns/0", "", http.StatusForbidden, "PRECONDITION_FAILED"},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			playerID := "p1"
			if tt.name == "duplicate username" {
				playerID = "p2"
			}
			code, resp := s.do(t, tt.method, tt.path, playerID, tt.body)
			if code != tt.status || resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("%s %s = %d, %+v; want %d %s", tt.method, tt.path, code, resp.Error, tt.status, tt.code)
			}
		})
	}
}

func TestCrimeCooldownReportsRemaining(t *testing.T) {
	s := newTestServer(t, ServerConfig{})
	s.do(t, http.MethodPost, "/api/players", "p1", `{"username":"vito"}`)

	if code, resp := s.do(t, http.MethodPost, "/api/crimes/0", "p1", ""); code != http.StatusOK {
		t.Fatalf("first crime = %d, %+v", code, resp.Error)
	}
	s.clock.Advance(10 * time.Second)
	code, resp := s.do(t, http.MethodPost, "/api/crimes/0", "p1", "")
	if code != http.StatusForbidden || resp.Error.Details["remaining_seconds"] != "20" {
		t.Errorf("second crime = %d, %+v", code, resp.Error)
	}
}

func TestActionRateLimit(t *testing.T) {
	s := newTestServer(t, ServerConfig{ActionRateLimit: 2})
	s.do(t, http.MethodPost, "/api/players", "p1", `{"username":"vito"}`)

	// Registration used one slot.
	s.do(t, http.MethodDelete, "/api/search", "p1", "")
	code, resp := s.do(t, http.MethodDelete, "/api/search", "p1", "")
	if code != http.StatusTooManyRequests || resp.Error.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("third action = %d, %+v", code, resp.Error)
	}
	if code, _ := s.do(t, http.MethodGet, "/api/me", "p1", ""); code != http.StatusOK {
		t.Errorf("reads are not action limited, got %d", code)
	}
}

func TestListingsPagination(t *testing.T) {
	s := newTestServer(t, ServerConfig{})
	s.do(t, http.MethodPost, "/api/players", "p1", `{"username":"vito"}`)

	code, resp := s.do(t, http.MethodGet, "/api/market?limit=5", "p1", "")
	if code != http.StatusOK || resp.Pagination == nil || resp.Pagination.Total != 0 || resp.Pagination.HasNext {
		t.Errorf("GET /api/market = %d, %+v", code, resp.Pagination)
	}
	if code, _ := s.do(t, http.MethodGet, "/api/market?carType=x", "p1", ""); code != http.StatusUnprocessableEntity {
		t.Errorf("bad carType = %d", code)
	}
}
