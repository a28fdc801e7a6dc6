package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	breachCount  map[string]int64
	lockTimeouts int64
	sweepRuns    int64
	sweepScanned int64
	sweepSkipped int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		breachCount:  make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordBreach counts a breach flag flipping, keyed by kind.
func (m *Metrics) RecordBreach(kind string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breachCount[kind]++
}

// RecordLockTimeout counts ticket-lock acquisitions that gave up waiting.
func (m *Metrics) RecordLockTimeout() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockTimeouts++
}

// RecordSweep tracks one sweep pass over open timers.
func (m *Metrics) RecordSweep(scanned, skipped int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepRuns++
	m.sweepScanned += int64(scanned)
	m.sweepSkipped += int64(skipped)
}

// Snapshot returns a copy of all counters for the metrics endpoint.
func (m *Metrics) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	if m == nil {
		return out
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		out["request|"+k] = v
	}
	for k, v := range m.errorCount {
		out["error|"+k] = v
	}
	for k, v := range m.breachCount {
		out["breach|"+k] = v
	}
	out["lock_timeouts"] = m.lockTimeouts
	out["sweep_runs"] = m.sweepRuns
	out["sweep_scanned"] = m.sweepScanned
	out["sweep_skipped"] = m.sweepSkipped
	return out
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
