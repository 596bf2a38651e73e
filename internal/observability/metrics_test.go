package observability

import (
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("create_ticket", 201, 10*time.Millisecond)
	m.RecordRequest("create_ticket", 201, 5*time.Millisecond)
	m.RecordRequest("create_ticket", 0, time.Millisecond)
	m.RecordOutcome("create_ticket", "OK")

	if got := m.Requests("create_ticket", 201); got != 2 {
		t.Errorf("requests(201) = %d, want 2", got)
	}
	if got := m.Requests("create_ticket", 0); got != 1 {
		t.Errorf("requests(0) = %d, want 1", got)
	}
	if got := m.Outcomes("create_ticket", "OK"); got != 1 {
		t.Errorf("outcomes(OK) = %d, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("list_tickets", 200, time.Second)
	m.RecordOutcome("list_tickets", "OK")
	if m.Requests("list_tickets", 200) != 0 {
		t.Error("nil metrics should report zero")
	}
}
