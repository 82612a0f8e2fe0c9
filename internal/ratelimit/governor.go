// Package ratelimit implements per-client sliding-window admission control.
package ratelimit

import (
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

// Governor tracks request timestamps per client key over a trailing window
// and admits at most maxRequests within it. It never errors: Admit returns
// only a boolean decision. Safe for concurrent use; the read-prune-append
// sequence for a key runs under a single exclusive lock (contention is low,
// admissions are microsecond-scale).
type Governor struct {
	mu          sync.Mutex
	windows     map[string][]time.Time
	maxRequests int
	window      time.Duration
	sweepEvery  time.Duration
	lastSweep   time.Time
}

// NewGovernor creates a governor admitting maxRequests per client within window.
func NewGovernor(maxRequests int, window time.Duration) *Governor {
	return &Governor{
		windows:     make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      window,
		sweepEvery:  defaultSweepInterval,
		lastSweep:   time.Now(),
	}
}

// Admit decides whether a request from clientKey at time now may proceed.
// Timestamps older than the window are pruned first; the request is recorded
// only when admitted.
func (g *Governor) Admit(clientKey string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Lazy sweep keeps memory bounded to clients active within the window.
	if now.Sub(g.lastSweep) > g.sweepEvery {
		g.sweepLocked(now)
		g.lastSweep = now
	}

	recent := pruneOld(g.windows[clientKey], now, g.window)

	if len(recent) >= g.maxRequests {
		g.windows[clientKey] = recent
		return false
	}

	g.windows[clientKey] = append(recent, now)
	return true
}

// Window returns the configured trailing window duration.
func (g *Governor) Window() time.Duration {
	return g.window
}

// Sweep removes expired timestamps and drops keys with none remaining.
func (g *Governor) Sweep(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sweepLocked(now)
}

// ActiveClients returns the number of tracked client keys.
func (g *Governor) ActiveClients() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.windows)
}

func (g *Governor) sweepLocked(now time.Time) {
	for key, stamps := range g.windows {
		recent := pruneOld(stamps, now, g.window)
		if len(recent) == 0 {
			delete(g.windows, key)
			continue
		}
		g.windows[key] = recent
	}
}

// pruneOld drops timestamps at or beyond the window age. Timestamps are
// appended in order, so the first recent one marks the cut.
func pruneOld(stamps []time.Time, now time.Time, window time.Duration) []time.Time {
	cut := len(stamps)
	for i, ts := range stamps {
		if now.Sub(ts) < window {
			cut = i
			break
		}
	}
	if cut == len(stamps) {
		return nil
	}
	return stamps[cut:]
}
