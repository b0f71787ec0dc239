package engine

import (
	"sync"
	"time"
)

// slidingWindow admits at most maxRequests invocations per trailing window.
// Requests beyond the limit are rejected immediately rather than queued.
type slidingWindow struct {
	mu          sync.Mutex
	window      time.Duration
	maxRequests int
	admitted    []time.Time
}

func newSlidingWindow(window time.Duration, maxRequests int) *slidingWindow {
	return &slidingWindow{
		window:      window,
		maxRequests: maxRequests,
	}
}

// Allow records an admission at now if the trailing window has room.
func (w *slidingWindow) Allow(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	windowStart := now.Add(-w.window)
	valid := w.admitted[:0]
	for _, t := range w.admitted {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	w.admitted = valid

	if len(w.admitted) >= w.maxRequests {
		return false
	}

	w.admitted = append(w.admitted, now)
	return true
}
