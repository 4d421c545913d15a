package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.GroupCreated()
	m.ExpenseRecorded()
	m.ExpenseRecorded()
	m.PaymentRecorded()

	body := scrape(t, m)
	assert.Contains(t, body, "splitledger_groups_created_total 1")
	assert.Contains(t, body, "splitledger_expenses_recorded_total 2")
	assert.Contains(t, body, "splitledger_payments_recorded_total 1")
}

func TestObserveHTTP(t *testing.T) {
	m := New()

	m.ObserveHTTP(http.MethodGet, "/api/groups/{ref}", http.StatusOK, 15*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "/api/groups/{ref}", http.StatusNotFound, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `splitledger_http_requests_total{code="200",method="GET",route="/api/groups/{ref}"} 1`)
	assert.Contains(t, body, `splitledger_http_requests_total{code="404",method="GET",route="/api/groups/{ref}"} 1`)
	assert.Contains(t, body, `splitledger_http_request_duration_seconds_count{method="GET",route="/api/groups/{ref}"} 2`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.GroupCreated()
		m.ExpenseRecorded()
		m.PaymentRecorded()
		m.SettlementComputed(3)
		m.ObserveHTTP("GET", "/", 200, time.Second)
	})
}

func TestHandlerExposesRuntimeCollectors(t *testing.T) {
	m := New()
	m.SettlementComputed(2)

	body := scrape(t, m)
	assert.Contains(t, body, "splitledger_settlement_transfers_count 1")
	assert.Contains(t, body, "go_goroutines")
}
