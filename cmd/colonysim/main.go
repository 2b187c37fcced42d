// Command colonysim runs the automated base layout planner over a set
// of simulated colonies.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/colonyplan/internal/api"
	"github.com/talgya/colonyplan/internal/colony"
	"github.com/talgya/colonyplan/internal/engine"
	"github.com/talgya/colonyplan/internal/grid"
	"github.com/talgya/colonyplan/internal/persistence"
	"github.com/talgya/colonyplan/internal/plan"
	"github.com/talgya/colonyplan/internal/planner"
)

func main() {
	var (
		dbPath        = flag.String("db", "data/colonyplan.db", "SQLite database path")
		configPath    = flag.String("config", "", "planner config YAML (optional)")
		apiPort       = flag.Int("port", 8080, "HTTP API port")
		seed          = flag.Int64("seed", 42, "world generation seed")
		numColonies   = flag.Int("colonies", 3, "number of colonies")
		gridSize      = flag.Int("grid", 50, "colony grid width and height")
		tier          = flag.Int("tier", 4, "colony development tier")
		speed         = flag.Float64("speed", 1, "tick speed multiplier")
		snapshotEvery = flag.Uint64("snapshot-every", 500, "ticks between database saves")
		verbose       = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("colonysim — automated base layout planner")

	cfg := planner.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = planner.LoadConfig(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		slog.Info("config loaded", "path", *configPath)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", *dbPath)

	// ── Colonies (terrain always regenerated — deterministic from seed) ─
	ids := colonyIDs(db, *numColonies)
	cols := make([]*colony.Colony, 0, len(ids))
	tiles := 0
	for i, id := range ids {
		gen := grid.DefaultGenConfig()
		gen.Width, gen.Height = *gridSize, *gridSize
		gen.Seed = *seed + int64(i)

		col := colony.New(id, *tier, grid.Generate(gen))
		if err := colony.Seed(col, colony.DefaultSeedConfig(), gen.Seed); err != nil {
			slog.Error("failed to seed colony", "colony", id, "error", err)
			os.Exit(1)
		}
		tiles += col.Terrain.Width * col.Terrain.Height

		counts := grid.TileCounts(col.Terrain)
		slog.Info("colony ready",
			"colony", id,
			"anchors", len(col.Anchors),
			"resources", len(col.Resources),
			"minerals", len(col.Minerals),
			"walls", counts[grid.TileWall],
			"rough", counts[grid.TileRough],
		)
		cols = append(cols, col)
	}

	// ── Planner (restore saved plan stores) ───────────────────────────
	p := planner.New(cfg)
	saved, err := db.LoadAllPlans()
	if err != nil {
		slog.Error("failed to load plan stores", "error", err)
		os.Exit(1)
	}
	for id, store := range saved {
		p.AttachStore(id, store)
		slog.Info("plan store restored", "colony", id, "entries", store.Len())
	}

	var startTick uint64
	if tickStr, err := db.GetMeta("last_tick"); err == nil {
		if t, err := strconv.ParseUint(tickStr, 10, 64); err == nil {
			startTick = t
		}
	}

	slog.Info("world ready",
		"colonies", len(cols),
		"tiles", humanize.Comma(int64(tiles)),
		"restored_stores", len(saved),
		"tick", startTick,
	)

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(cols, p)
	sim.LastTick = startTick

	eng := engine.NewEngine(cfg.MaintainEvery, cfg.DeepSweepEvery, *snapshotEvery)
	eng.Tick = startTick
	eng.Speed = *speed

	eng.OnTick = sim.TickPlan
	eng.OnMaintain = sim.TickMaintain
	eng.OnDeepSweep = sim.TickDeepSweep
	eng.OnSnapshot = func(tick uint64) {
		if err := db.SaveWorldState(collectStores(p), tick); err != nil {
			slog.Error("periodic save failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("COLONYSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("COLONYSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:         sim,
		Eng:         eng,
		DB:          db,
		Port:        *apiPort,
		AdminKey:    adminKey,
		SnapshotDir: "data",
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nPlanning %d colonies across %s tiles.\n", len(cols), humanize.Comma(int64(tiles)))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
	if startTick > 0 {
		fmt.Printf("Resuming from tick %d\n", startTick)
	}
	fmt.Println("Starting planner... (Ctrl+C to stop)")

	eng.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveWorldState(collectStores(p), eng.Tick); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Planner stopped. Plan stores saved.")
}

// colonyIDs returns stable colony ids: reused from metadata when the
// database has them, freshly minted and recorded otherwise.
func colonyIDs(db *persistence.DB, n int) []string {
	if joined, err := db.GetMeta("colony_ids"); err == nil && joined != "" {
		ids := strings.Split(joined, ",")
		if len(ids) >= n {
			return ids[:n]
		}
		// More colonies requested than saved: mint the remainder.
		for len(ids) < n {
			ids = append(ids, newColonyID())
		}
		saveColonyIDs(db, ids)
		return ids
	}

	ids := make([]string, n)
	for i := range ids {
		ids[i] = newColonyID()
	}
	saveColonyIDs(db, ids)
	return ids
}

func newColonyID() string {
	return "col-" + uuid.NewString()[:8]
}

func saveColonyIDs(db *persistence.DB, ids []string) {
	if err := db.SaveMeta("colony_ids", strings.Join(ids, ",")); err != nil {
		slog.Error("failed to save colony ids", "error", err)
	}
}

func collectStores(p *planner.Planner) map[string]*plan.Store {
	stores := make(map[string]*plan.Store, len(p.StoreIDs()))
	for _, id := range p.StoreIDs() {
		stores[id] = p.Store(id)
	}
	return stores
}
