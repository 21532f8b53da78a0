package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordCacheLookup("response", "hit")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.CacheLookups.WithLabelValues("response", "hit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CacheLookups.WithLabelValues("response", "hit")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	m.RecordCacheLookup("response", "miss")
	m.RecordCacheEviction()
	m.SetCacheEntries(3)
	m.RecordExchange("GET", 200, time.Millisecond, 10, false)
	m.RecordTransportError("timeout")
	m.RecordRedirect(302)
	m.RecordLoad("http", "ok")
	m.RecordFrameDenied()
	m.SetWindowsOpen(1)
	m.SetDownloadsQueued(1)
	m.RecordDownloadApplied("stale")

	assert.Nil(t, m.Registry())
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestSnapshotTotals(t *testing.T) {
	m := NewMetrics()

	m.RecordCacheLookup("response", "hit")
	m.RecordCacheLookup("response", "stale")
	m.RecordExchange("GET", 302, 10*time.Millisecond, 0, false)
	m.RecordExchange("GET", 200, 10*time.Millisecond, 2048, true)
	m.RecordRedirect(302)
	m.RecordTransportError("tls")

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.CacheHits)
	assert.Equal(t, int64(1), snap.CacheMisses)
	assert.Equal(t, int64(2), snap.Requests)
	assert.Equal(t, int64(1), snap.Redirects)
	assert.Equal(t, int64(1), snap.Errors)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SpilledResponses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransportRequests.WithLabelValues("GET", "3xx")))
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{0: "none", 101: "1xx", 204: "2xx", 307: "3xx", 404: "4xx", 503: "5xx"}
	for status, want := range tests {
		assert.Equal(t, want, statusClass(status))
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/v1/windows", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/v1/windows", nil)
	require.NoError(t, err)
	router.ServeHTTP(rec, req)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ControlRequests.WithLabelValues("GET", "/v1/windows", "200")))
}
