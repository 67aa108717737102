package hub

import "time"

// Gate enforces a minimum interval between remote uploads of the same
// artifact. The first check for an artifact initializes its timestamp
// without allowing an upload; local saves proceed regardless.
type Gate struct {
	min  time.Duration
	last map[string]time.Time
	now  func() time.Time
}

// NewGate creates a gate with the given minimum upload interval.
func NewGate(min time.Duration) *Gate {
	return &Gate{
		min:  min,
		last: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Allow reports whether an upload of the named artifact may proceed now.
// It updates the artifact's timestamp only when the upload is allowed.
func (g *Gate) Allow(name string) bool {
	now := g.now()

	last, seen := g.last[name]
	if !seen {
		g.last[name] = now

		return false
	}

	if now.Sub(last) > g.min {
		g.last[name] = now

		return true
	}

	return false
}
