package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/tickets", 200, 30*time.Millisecond)
	m.ObserveAPI("GET", "/api/tickets", 200, 2*time.Second)
	m.IncTicketMutation("created")
	m.SSEClients(1)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`tickethub_api_requests_total{method="GET",route="/api/tickets",status="200"} 2`,
		`tickethub_api_request_duration_seconds_bucket{method="GET",route="/api/tickets",le="0.05"} 1`,
		`tickethub_api_request_duration_seconds_bucket{method="GET",route="/api/tickets",le="+Inf"} 2`,
		`tickethub_api_request_duration_seconds_count{method="GET",route="/api/tickets"} 2`,
		`tickethub_ticket_mutations_total{kind="created"} 1`,
		`tickethub_sse_clients 1`,
		"# TYPE tickethub_api_request_duration_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q:\n%s", want, out)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", 200, time.Millisecond)
	m.IncTicketMutation("deleted")
	m.APIInflight(1)

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil metrics handler: got=%d", rec.Code)
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"route", "status"}, []string{`a"b\c`})
	want := `{route="a\"b\\c",status="unknown"}`
	if got != want {
		t.Fatalf("labelString: got=%s want=%s", got, want)
	}
}
