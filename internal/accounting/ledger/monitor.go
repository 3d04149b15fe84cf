package ledger

import (
	"sync"
	"time"
)

const (
	DefaultSyncAlertThreshold = 3
	DefaultSyncAlertWindow    = 300 * time.Second
)

// SyncMonitor tracks consecutive projection failures. A streak resets on
// success or when the previous failure is older than the window.
type SyncMonitor struct {
	mu          sync.Mutex
	threshold   int
	window      time.Duration
	streak      int
	total       int64
	alerts      int64
	lastFailure time.Time
	lastError   string
}

// SyncStatus is a point-in-time copy of the monitor state.
type SyncStatus struct {
	ConsecutiveFailures int        `json:"consecutive_failures"`
	TotalFailures       int64      `json:"total_failures"`
	Alerts              int64      `json:"alerts"`
	Threshold           int        `json:"threshold"`
	WindowSeconds       float64    `json:"window_seconds"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
}

// NewSyncMonitor applies defaults for non-positive arguments.
func NewSyncMonitor(threshold int, window time.Duration) *SyncMonitor {
	if threshold <= 0 {
		threshold = DefaultSyncAlertThreshold
	}
	if window <= 0 {
		window = DefaultSyncAlertWindow
	}
	return &SyncMonitor{threshold: threshold, window: window}
}

// RecordFailure registers a failure at now and reports whether the streak
// reached the alert threshold.
func (m *SyncMonitor) RecordFailure(now time.Time, err error) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.streak > 0 && now.Sub(m.lastFailure) > m.window {
		m.streak = 0
	}
	m.streak++
	m.total++
	m.lastFailure = now
	if err != nil {
		m.lastError = err.Error()
	}
	if m.streak >= m.threshold {
		m.alerts++
		return true
	}
	return false
}

// RecordSuccess ends the current streak.
func (m *SyncMonitor) RecordSuccess() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.streak = 0
	m.mu.Unlock()
}

func (m *SyncMonitor) Snapshot() SyncStatus {
	if m == nil {
		return SyncStatus{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	status := SyncStatus{
		ConsecutiveFailures: m.streak,
		TotalFailures:       m.total,
		Alerts:              m.alerts,
		Threshold:           m.threshold,
		WindowSeconds:       m.window.Seconds(),
		LastError:           m.lastError,
	}
	if !m.lastFailure.IsZero() {
		at := m.lastFailure
		status.LastFailureAt = &at
	}
	return status
}
