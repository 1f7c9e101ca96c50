package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSync(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.RecordSync(ResultSuccess, 40, 2, 3*time.Second)
	m.RecordSync(ResultError, 0, 0, time.Second)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.syncRunsTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.syncRunsTotal.WithLabelValues(ResultError)))
	assert.Equal(t, float64(40), testutil.ToFloat64(m.syncSystemsTotal.WithLabelValues("saved")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.syncSystemsTotal.WithLabelValues("failed")))
}

func TestCatalogSizeAndHTTP(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.SetCatalogSize(12)
	m.ObserveHTTP("/api/systems", http.StatusOK, 5*time.Millisecond)
	m.ObserveHTTP("/api/systems", http.StatusOK, 7*time.Millisecond)
	m.ObserveHTTP("", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, float64(12), testutil.ToFloat64(m.catalogSystems))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/api/systems", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("unmatched", "404")))
}

func TestDoubleRegistrationFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewWithRegistry(registry)
	require.NoError(t, err)
	_, err = NewWithRegistry(registry)
	assert.Error(t, err)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.SetCatalogSize(3)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "starsys_catalog_systems 3")
	assert.Contains(t, string(body), "# TYPE starsys_sync_duration_seconds histogram")
}
