package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(PaymentEventsTotal.WithLabelValues("PAYED"))
	PaymentEventsTotal.WithLabelValues("PAYED").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PaymentEventsTotal.WithLabelValues("PAYED")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	OutboxEventsTotal.WithLabelValues("order.placed", "published").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ordersvc_outbox_events_total")
}
