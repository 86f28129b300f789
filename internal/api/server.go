// Package api serves the city over HTTP. GET endpoints are the read-only
// observation surface a renderer polls; POST endpoints carry the two
// inbound commands (click, tool selection); /api/v1/live streams frame
// snapshots over a websocket for clients that want smooth agent motion.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/mini-city/internal/chronicle"
	"github.com/talgya/mini-city/internal/engine"
)

// Server serves one engine's city. Zero value is not usable; fill the
// exported fields and call Start.
type Server struct {
	Eng     *engine.Engine
	Journal *chronicle.Journal // nil = no history endpoints
	Port    int

	hub *hub
}

// Start begins serving in background goroutines.
func (s *Server) Start() {
	s.hub = newHub()
	go s.hub.run()
	go s.pushFrames()

	// Clicks are cheap but a stuck mouse button shouldn't be able to
	// hammer the engine lock.
	commands := NewRateLimiter(300, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/news", s.handleNews)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/stats/history", s.handleStatsHistory)
	mux.HandleFunc("/api/v1/news/history", s.handleNewsHistory)

	mux.HandleFunc("/api/v1/click", RateLimitMiddleware(commands, s.handleClick))
	mux.HandleFunc("/api/v1/tool", RateLimitMiddleware(commands, s.handleTool))

	mux.HandleFunc("/api/v1/live", s.handleLive)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "journal", s.Journal != nil)

	go func() {
		if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware allows browser UIs to call the API. Localhost dev
// servers always pass; MINICITY_CORS adds comma-separated origins.
func corsMiddleware(next http.Handler) http.Handler {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("MINICITY_CORS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowed[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Eng.Stats()
	g := s.Eng.Grid()

	writeJSON(w, map[string]any{
		"name":         "Mini City",
		"running":      s.Eng.Running(),
		"day":          stats.Day,
		"money":        stats.Money,
		"population":   stats.Population,
		"time_of_day":  s.Eng.TimeOfDay(),
		"grid_size":    g.Size(),
		"grid_version": g.Version(),
		"tool":         s.Eng.Tool().String(),
	})
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	g := s.Eng.Grid()
	writeJSON(w, map[string]any{
		"size":    g.Size(),
		"version": g.Version(),
		"rows":    g.Rows(),
	})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.News())
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"vehicles":    s.Eng.VehicleTransforms(),
		"pedestrians": s.Eng.PedestrianTransforms(),
		"train":       s.Eng.TrainTransforms(),
	})
}

func (s *Server) handleStatsHistory(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		writeJSON(w, []chronicle.StatsRow{})
		return
	}
	rows, err := s.Journal.StatsHistory(queryLimit(r, 30))
	if err != nil {
		http.Error(w, "journal read failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleNewsHistory(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		writeJSON(w, []chronicle.HeadlineRow{})
		return
	}
	rows, err := s.Journal.RecentHeadlines(queryLimit(r, 50))
	if err != nil {
		http.Error(w, "journal read failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

// clickRequest is the body of POST /api/v1/click.
type clickRequest struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Tool string `json:"tool"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	tool, ok := engine.ToolFromString(req.Tool)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown tool %q", req.Tool), http.StatusBadRequest)
		return
	}

	// Rejections are game messages, not HTTP failures: the city simply
	// declined, and the caller shows the player why.
	if err := s.Eng.ApplyClick(req.X, req.Y, tool); err != nil {
		writeJSON(w, map[string]any{"applied": false, "message": err.Error()})
		return
	}
	writeJSON(w, map[string]any{"applied": true, "money": s.Eng.Stats().Money})
}

// toolRequest is the body of POST /api/v1/tool.
type toolRequest struct {
	Tool string `json:"tool"`
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req toolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	tool, ok := engine.ToolFromString(req.Tool)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown tool %q", req.Tool), http.StatusBadRequest)
		return
	}

	s.Eng.SetTool(tool)
	writeJSON(w, map[string]any{"tool": tool.String()})
}

// queryLimit parses ?limit=N, clamped to [1, 500].
func queryLimit(r *http.Request, def int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	if n > 500 {
		n = 500
	}
	return n
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
