// Package debounce suppresses one-frame false positives by requiring a streak
// of consecutive hits before an alert fires.
package debounce

// State is the counter's position in the debounce cycle.
type State int

const (
	// Idle means no hit since the last reset or alert.
	Idle State = iota
	// Accumulating means a streak is in progress but has not reached the threshold.
	Accumulating
	// Ready means the streak has reached the threshold. Observe leaves this
	// state in the same call that enters it.
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Counter counts consecutive hits.
//
// A Counter is owned by a single goroutine; it is not safe for concurrent use.
type Counter struct {
	need int
	hits int
}

// New returns a counter that fires after need consecutive hits.
// need values below 1 are treated as 1.
func New(need int) *Counter {
	if need < 1 {
		need = 1
	}
	return &Counter{need: need}
}

// Observe records one tick's result and reports whether an alert should fire.
//
// A miss resets the streak. When the streak reaches the threshold Observe
// returns true and resets, so every alert needs a fresh streak.
func (c *Counter) Observe(hit bool) bool {
	if !hit {
		c.hits = 0
		return false
	}
	c.hits++
	if c.hits >= c.need {
		c.hits = 0
		return true
	}
	return false
}

// Reset clears the streak.
func (c *Counter) Reset() { c.hits = 0 }

// Hits returns the current streak length.
func (c *Counter) Hits() int { return c.hits }

// Need returns the configured threshold.
func (c *Counter) Need() int { return c.need }

// State classifies the current streak.
func (c *Counter) State() State {
	switch {
	case c.hits == 0:
		return Idle
	case c.hits < c.need:
		return Accumulating
	default:
		return Ready
	}
}
