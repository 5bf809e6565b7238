// Package engine provides the host loop that drives a battle forward in
// fixed real-time steps, and the one-shot timers advanced by it.
package engine

import (
	"context"
	"log/slog"
	"time"
)

// Engine drives registered callbacks once per tick.
type Engine struct {
	Ticks    uint64        // Ticks processed so far (monotonic)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Wall-clock length of one tick (default 100ms)

	// OnTick receives the simulated time elapsed this tick, Interval
	// scaled by Speed.
	OnTick func(dt time.Duration)

	stop chan struct{}
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: 100 * time.Millisecond,
		stop:     make(chan struct{}),
	}
}

// Run starts the loop. Blocks until ctx is done or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	if e.stop == nil {
		e.stop = make(chan struct{})
	}
	interval := e.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	slog.Info("engine started", "interval", interval, "speed", e.Speed)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped", "ticks", e.Ticks, "reason", ctx.Err())
			return
		case <-e.stop:
			slog.Info("engine stopped", "ticks", e.Ticks)
			return
		case <-ticker.C:
			if e.Speed <= 0 {
				continue // paused
			}
			e.Step(time.Duration(float64(interval) * e.Speed))
		}
	}
}

// Stop halts a running loop. Safe to call more than once.
func (e *Engine) Stop() {
	if e.stop == nil {
		return
	}
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
}

// Step advances by one tick of dt simulated time without waiting.
// Tests and offline simulations call it directly.
func (e *Engine) Step(dt time.Duration) {
	e.Ticks++
	if e.OnTick != nil {
		e.OnTick(dt)
	}
}

// RunFor steps the engine offline until total simulated time has elapsed
// or done reports true, whichever comes first. It returns the number of
// ticks run.
func (e *Engine) RunFor(total, dt time.Duration, done func() bool) int {
	if dt <= 0 {
		return 0
	}
	n := 0
	for elapsed := time.Duration(0); elapsed < total; elapsed += dt {
		if done != nil && done() {
			break
		}
		e.Step(dt)
		n++
	}
	return n
}
