package rating

import (
	"sync"
)

// recencyTracker keeps the last N rating deltas per team-season. A
// decayed weighted average of those deltas produces a projection-time
// boost for teams trending up or down; the stored rating is untouched.
type recencyTracker struct {
	mu     sync.RWMutex
	window int
	decay  float64
	scale  float64
	deltas map[key][]float64
}

func newRecencyTracker(window int, decay, scale float64) *recencyTracker {
	if window <= 0 {
		window = 5
	}
	return &recencyTracker{
		window: window,
		decay:  decay,
		scale:  scale,
		deltas: make(map[key][]float64),
	}
}

// Record appends one game's delta for a team-season, evicting the oldest
func (t *recencyTracker) Record(teamID string, season int, delta float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key{teamID: teamID, season: season}
	buf := append(t.deltas[k], delta)
	if len(buf) > t.window {
		buf = buf[len(buf)-t.window:]
	}
	t.deltas[k] = buf
}

// Boost returns the decayed weighted average of recent deltas, scaled.
// The newest delta carries weight 1, each older one decays by the
// configured factor.
func (t *recencyTracker) Boost(teamID string, season int) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	buf := t.deltas[key{teamID: teamID, season: season}]
	if len(buf) == 0 {
		return 0
	}

	weight := 1.0
	weighted := 0.0
	total := 0.0
	for i := len(buf) - 1; i >= 0; i-- {
		weighted += buf[i] * weight
		total += weight
		weight *= t.decay
	}
	return (weighted / total) * t.scale
}

// Reset clears all tracked deltas
func (t *recencyTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deltas = make(map[key][]float64)
}
