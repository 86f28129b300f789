package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/talgya/mini-city/internal/engine"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Seed = 99
	return &Server{Eng: engine.New(cfg)}
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if got["money"].(float64) != 50000 {
		t.Errorf("money = %v, want 50000", got["money"])
	}
	if got["grid_size"].(float64) != 25 {
		t.Errorf("grid_size = %v, want 25", got["grid_size"])
	}
	if got["running"].(bool) {
		t.Error("running = true for a stopped engine")
	}
}

func TestHandleGrid(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleGrid(rec, httptest.NewRequest(http.MethodGet, "/api/v1/grid", nil))

	var got struct {
		Size int               `json:"size"`
		Rows [][]map[string]any `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal grid: %v", err)
	}
	if got.Size != 25 || len(got.Rows) != 25 || len(got.Rows[0]) != 25 {
		t.Fatalf("grid shape = size %d, %dx%d rows", got.Size, len(got.Rows), len(got.Rows[0]))
	}
}

func TestHandleClickRejection(t *testing.T) {
	s := newTestServer(t)

	// A far corner tile is never adjacent to the starter plot, so the
	// land tool must decline without an HTTP failure.
	body := strings.NewReader(`{"x": 0, "y": 0, "tool": "land"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/click", body)
	rec := httptest.NewRecorder()
	s.handleClick(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got struct {
		Applied bool   `json:"applied"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal click response: %v", err)
	}
	if got.Applied {
		t.Error("click applied, want rejection")
	}
	if got.Message == "" {
		t.Error("rejection carries no message")
	}
}

func TestHandleClickBadTool(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/click", strings.NewReader(`{"x":1,"y":1,"tool":"volcano"}`))
	rec := httptest.NewRecorder()
	s.handleClick(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleToolSetsSelection(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tool", strings.NewReader(`{"tool":"residential"}`))
	rec := httptest.NewRecorder()
	s.handleTool(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := s.Eng.Tool(); got != engine.ToolResidential {
		t.Errorf("tool = %v, want residential", got)
	}
	// Selecting a tool never touches simulation state.
	if got := s.Eng.Stats().Money; got != 50000 {
		t.Errorf("money = %d after tool select, want 50000", got)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d denied inside the window", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("fourth request allowed, want denied")
	}
	// A different caller has its own bucket.
	if !rl.Allow("10.0.0.2") {
		t.Error("fresh IP denied")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("10.0.0.1") {
		t.Error("request denied after the window reset")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"plain", "192.0.2.7:1234", "", "192.0.2.7"},
		{"forwarded", "10.0.0.1:80", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain", "10.0.0.1:80", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
