package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics keeps in-memory counters of outbound calls and their outcomes.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	outcomeCount map[string]int64
	latency      map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		outcomeCount: make(map[string]int64),
		latency:      make(map[string]time.Duration),
	}
}

// RecordRequest counts a completed HTTP exchange. Status is 0 when no
// response was received.
func (m *Metrics) RecordRequest(operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := operation + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latency[operation] += duration
}

// RecordOutcome counts a typed outcome (an error code, or "OK").
func (m *Metrics) RecordOutcome(operation, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomeCount[operation+"|"+code]++
}

// Requests returns the number of exchanges recorded for operation and status.
func (m *Metrics) Requests(operation string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount[operation+"|"+strconv.Itoa(status)]
}

// Outcomes returns the number of outcomes recorded for operation and code.
func (m *Metrics) Outcomes(operation, code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomeCount[operation+"|"+code]
}
