// Package engine provides the tick-based loop driving colony planning.
package engine

import (
	"log/slog"
	"time"
)

// Engine drives the world forward one tick at a time. Cadences are
// expressed in ticks; a zero cadence disables that layer.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval (default 1 second)
	Running  bool

	MaintainEvery  uint64 // Ticks between maintenance sweeps
	DeepSweepEvery uint64 // Ticks between staleness prunes
	SnapshotEvery  uint64 // Ticks between persistence saves

	// Callbacks for each tick layer — populated during setup.
	OnTick      func(tick uint64) // Every tick: plan step + construction
	OnMaintain  func(tick uint64)
	OnDeepSweep func(tick uint64)
	OnSnapshot  func(tick uint64)
}

// NewEngine creates an engine with default pacing and the given cadences.
func NewEngine(maintainEvery, deepSweepEvery, snapshotEvery uint64) *Engine {
	return &Engine{
		Speed:          1.0,
		Interval:       time.Second,
		MaintainEvery:  maintainEvery,
		DeepSweepEvery: deepSweepEvery,
		SnapshotEvery:  snapshotEvery,
	}
}

// Run starts the loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("engine started", "tick", e.Tick, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("engine stopped", "tick", e.Tick)
}

// Stop halts the loop after the current tick.
func (e *Engine) Stop() {
	e.Running = false
}

// Step advances the world by one tick, firing whichever layers are due.
func (e *Engine) Step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}

	if e.MaintainEvery > 0 && e.Tick%e.MaintainEvery == 0 && e.OnMaintain != nil {
		e.OnMaintain(e.Tick)
	}

	if e.DeepSweepEvery > 0 && e.Tick%e.DeepSweepEvery == 0 && e.OnDeepSweep != nil {
		e.OnDeepSweep(e.Tick)
	}

	if e.SnapshotEvery > 0 && e.Tick%e.SnapshotEvery == 0 && e.OnSnapshot != nil {
		e.OnSnapshot(e.Tick)
	}
}
