// Package api provides the HTTP API for querying planner state.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/colonyplan/internal/colony"
	"github.com/talgya/colonyplan/internal/engine"
	"github.com/talgya/colonyplan/internal/persistence"
	"github.com/talgya/colonyplan/internal/planner"
)

// Server serves the world state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// SnapshotDir is where snapshot exports land.
	SnapshotDir string

	exportOnce sync.Once
	exports    *exportQuota
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can check in on the world).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/colonies", s.handleColonies)
	mux.HandleFunc("/api/v1/colony/", s.handleColonyRoutes)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats", s.handleStats)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.requireAdmin(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.requireAdmin(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := s.withCORS(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// browserOrigins lists the origins a frontend may call this API from:
// the local dev server plus COLONYSIM_CORS_ORIGINS (comma-separated).
func browserOrigins() []string {
	origins := []string{"http://localhost:5173"}
	for _, o := range strings.Split(os.Getenv("COLONYSIM_CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// withCORS answers preflight requests and marks responses for the
// allowed browser origins. The origin list is fixed at startup.
func (s *Server) withCORS(next http.Handler) http.Handler {
	origins := browserOrigins()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); slices.Contains(origins, origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin guards mutating requests behind the admin bearer token.
// Reads pass through so an endpoint can serve GET publicly.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next(w, r)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled: COLONYSIM_ADMIN_KEY is not set", http.StatusForbidden)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"name":           "colonysim",
		"tick":           s.Sim.CurrentTick(),
		"speed":          s.Eng.Speed,
		"running":        s.Eng.Running,
		"colonies":       len(s.Sim.Colonies),
		"plan_entries":   s.Sim.Stats.PlanEntries,
		"structures":     s.Sim.Stats.Structures,
		"pending_orders": s.Sim.Stats.PendingOrders,
	})
}

func (s *Server) handleColonies(w http.ResponseWriter, r *http.Request) {
	type colonySummary struct {
		ID          string `json:"id"`
		Tier        int    `json:"tier"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		Anchors     int    `json:"anchors"`
		Resources   int    `json:"resources"`
		PlanEntries int    `json:"plan_entries"`
		Roads       int    `json:"roads"`
	}

	result := make([]colonySummary, 0, len(s.Sim.Colonies))
	for _, col := range s.Sim.Colonies {
		result = append(result, colonySummary{
			ID:          col.ID,
			Tier:        col.Tier,
			Width:       col.Terrain.Width,
			Height:      col.Terrain.Height,
			Anchors:     len(col.Anchors),
			Resources:   len(col.Resources),
			PlanEntries: s.Sim.Planner.Store(col.ID).Len(),
			Roads:       col.StructureCount(colony.StructureRoad),
		})
	}
	writeJSON(w, result)
}

// handleColonyRoutes dispatches /api/v1/colony/:id/{plan,orders}.
func (s *Server) handleColonyRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/colony/:id/:view → [0]="" [1]="api" [2]="v1" [3]="colony" [4]=id [5]=view
	if len(parts) < 6 {
		http.Error(w, "usage: /api/v1/colony/:id/{plan,orders}", http.StatusBadRequest)
		return
	}

	col, ok := s.Sim.ColonyIndex[parts[4]]
	if !ok {
		http.Error(w, "colony not found", http.StatusNotFound)
		return
	}

	switch parts[5] {
	case "plan":
		s.handleColonyPlan(w, col)
	case "orders":
		orders := s.Sim.Planner.Orders(col)
		if orders == nil {
			orders = []planner.Request{}
		}
		writeJSON(w, orders)
	default:
		http.Error(w, "unknown view", http.StatusNotFound)
	}
}

type coordView struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleColonyPlan(w http.ResponseWriter, col *colony.Colony) {
	store := s.Sim.Planner.Store(col.ID)

	type planEntry struct {
		Key     string      `json:"key"`
		Coords  []coordView `json:"coords"`
		Created uint64      `json:"created_tick"`
		Built   int         `json:"built"` // coordinates with any occupant
	}

	entries := make([]planEntry, 0, store.Len())
	for _, k := range store.Keys() {
		e, ok := store.Get(k)
		if !ok {
			continue
		}
		built := 0
		coords := make([]coordView, 0, len(e.Coords))
		for _, c := range e.Coords {
			coords = append(coords, coordView{X: c.X, Y: c.Y})
			if len(col.At(c)) > 0 {
				built++
			}
		}
		entries = append(entries, planEntry{
			Key:     k.String(),
			Coords:  coords,
			Created: e.CreatedAt,
			Built:   built,
		})
	}

	writeJSON(w, map[string]any{
		"colony":  col.ID,
		"entries": entries,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	events := s.Sim.Events
	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Stats)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed})
}

// handleSnapshot exports a compressed snapshot of every plan store.
// Exports walk all stores, so each caller gets a few per hour.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.exportOnce.Do(func() { s.exports = newExportQuota(6, time.Hour) })
	if ok, wait := s.exports.take(callerAddr(r), time.Now()); !ok {
		w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
		http.Error(w, "snapshot quota exhausted", http.StatusTooManyRequests)
		return
	}

	dir := s.SnapshotDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("colonyplan-%d.snap.zst", s.Sim.CurrentTick()))

	if err := persistence.ExportSnapshotFile(path, s.Sim.Planner.EncodeStores(), s.Sim.CurrentTick()); err != nil {
		slog.Error("snapshot export failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	slog.Info("snapshot exported", "path", path)
	writeJSON(w, map[string]any{
		"tick": s.Sim.CurrentTick(),
		"path": path,
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
