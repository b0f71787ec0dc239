package stats

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brettboylen/originality-tracker/models"
)

// duplicateThreshold is the score below which a checked post counts as a
// likely duplicate in the daily stats.
const duplicateThreshold = 50

// Tracker keeps daily usage counters for the originality checker. Counters
// reset automatically when the date rolls over.
type Tracker struct {
	mutex           sync.RWMutex
	checkedToday    int
	duplicatesFound int
	lastReset       string
	startTime       time.Time
	lastUpdated     time.Time
	log             *logrus.Logger
	now             func() time.Time
}

// NewTracker creates a tracker starting a fresh daily window
func NewTracker(log *logrus.Logger) *Tracker {
	now := time.Now()
	return &Tracker{
		lastReset:   now.Format("2006-01-02"),
		startTime:   now,
		lastUpdated: now,
		log:         log,
		now:         time.Now,
	}
}

// SetClock overrides the tracker's time source. Tests only.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.now = now
}

// Record registers one completed analysis and its score
func (t *Tracker) Record(originalityScore int) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := t.now()
	t.resetIfNewDay(now)

	t.checkedToday++
	if originalityScore < duplicateThreshold {
		t.duplicatesFound++
	}
	t.lastUpdated = now

	t.log.WithFields(logrus.Fields{
		"originality_score": originalityScore,
		"checked_today":     t.checkedToday,
		"duplicates_found":  t.duplicatesFound,
	}).Debug("Recorded analysis")
}

// GetStatistics returns a copy of the current counters
func (t *Tracker) GetStatistics() models.Statistics {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.resetIfNewDay(t.now())

	return models.Statistics{
		CheckedToday:    t.checkedToday,
		DuplicatesFound: t.duplicatesFound,
		LastReset:       t.lastReset,
		StartTime:       t.startTime,
		LastUpdated:     t.lastUpdated,
	}
}

// resetIfNewDay zeroes the daily counters when the calendar day changes.
// Callers must hold the mutex.
func (t *Tracker) resetIfNewDay(now time.Time) {
	day := now.Format("2006-01-02")
	if day == t.lastReset {
		return
	}

	t.log.WithFields(logrus.Fields{
		"previous_day":     t.lastReset,
		"checked":          t.checkedToday,
		"duplicates_found": t.duplicatesFound,
	}).Info("Resetting daily statistics")

	t.checkedToday = 0
	t.duplicatesFound = 0
	t.lastReset = day
}
