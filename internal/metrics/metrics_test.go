package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTicketCreated()
	c.RecordTicketCreated()
	c.RecordTicketTransition("RESOLVED")
	c.RecordDropped("ticket:updated")
	c.SetListeners(3)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.ticketsCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.ticketTransitions.WithLabelValues("RESOLVED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.notifyDropped.WithLabelValues("ticket:updated")))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.streamListeners))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPRequest("GET", "/api/tickets", 200, 15*time.Millisecond)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `ssy_http_requests_total{method="GET",route="/api/tickets",status_code="200"} 1`))
}
