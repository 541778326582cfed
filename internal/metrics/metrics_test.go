package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.CardCreated()
	m.CardCreated()
	m.ObserveCreateFailure(CreateDuplicate)
	m.ObserveLookup(LookupFound)
	m.ObserveLookup(LookupNotFound)
	m.ObserveLookup(LookupNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cardsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.createFailures.WithLabelValues(CreateDuplicate)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.createFailures.WithLabelValues(CreateStore)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.lookups.WithLabelValues(LookupNotFound)))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.CardCreated()
	m.ObserveRequest("/card", http.MethodPost, http.StatusCreated, 20*time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "wishcraft_cards_created_total 1")
	assert.Contains(t, body, `wishcraft_http_request_duration_seconds_count{method="POST",route="/card",status="201"} 1`)
}
