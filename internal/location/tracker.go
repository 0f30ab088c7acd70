package location

import (
	"sync"

	"github.com/i474232898/weather-display/internal/weather"
)

// DefaultPlace is used until a device position has been resolved.
var DefaultPlace = weather.Place{City: "Cupertino", Region: "CA"}

// Tracker holds the current place and announces changes to it.
type Tracker struct {
	mu      sync.RWMutex
	current weather.Place
	updates chan weather.Place
}

// NewTracker starts at initial. Updates are buffered up to buffer entries;
// when the buffer is full the oldest pending update is dropped, since only
// the latest place matters.
func NewTracker(initial weather.Place, buffer int) *Tracker {
	if buffer < 1 {
		buffer = 1
	}
	return &Tracker{
		current: initial,
		updates: make(chan weather.Place, buffer),
	}
}

// Current returns the current place.
func (t *Tracker) Current() weather.Place {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Set changes the current place. It reports whether the place changed; an
// update is only emitted when it did.
func (t *Tracker) Set(p weather.Place) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p == t.current {
		return false
	}
	t.current = p

	for {
		select {
		case t.updates <- p:
			return true
		default:
		}
		// Full: drop the oldest pending update and retry.
		select {
		case <-t.updates:
		default:
		}
	}
}

// Updates delivers place changes made through Set, newest last.
func (t *Tracker) Updates() <-chan weather.Place {
	return t.updates
}
