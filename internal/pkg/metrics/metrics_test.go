package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/sessions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/sessions/:id", "200"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/sessions/12", nil))
	require.Equal(t, http.StatusOK, w.Code)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/sessions/:id", "200"))
	assert.Equal(t, before+1, after)
}

func TestBusinessCounters(t *testing.T) {
	before := testutil.ToFloat64(enrollmentsTotal.WithLabelValues(OutcomeRejectedFull))
	RecordEnrollment(OutcomeRejectedFull)
	assert.Equal(t, before+1, testutil.ToFloat64(enrollmentsTotal.WithLabelValues(OutcomeRejectedFull)))

	hits := testutil.ToFloat64(usageCacheLookups.WithLabelValues("hit"))
	RecordUsageCacheLookup(true)
	assert.Equal(t, hits+1, testutil.ToFloat64(usageCacheLookups.WithLabelValues("hit")))

	SetWebsocketSubscribers(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(wsSubscribers))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordEventPublishFailure()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "swimdesk_event_publish_failures_total"))
}
