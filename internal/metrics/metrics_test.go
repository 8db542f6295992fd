package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	assert.NotNil(t, m)
	assert.NotNil(t, m.APIRequestsTotal)
	assert.NotNil(t, m.BulkItems)
	assert.NotNil(t, m.HTTPRequestsTotal)
}

func TestRecordAPIRequest(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	m.RecordAPIRequest("GET", "civilites", 200, 20*time.Millisecond)
	m.RecordAPIRequest("GET", "civilites", 200, 30*time.Millisecond)
	m.RecordAPIRequest("POST", "civilites", 0, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.APIRequestsTotal.WithLabelValues("GET", "civilites", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequestsTotal.WithLabelValues("POST", "civilites", "error")))
}

func TestRecordValidation(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	m.RecordValidation("civilite", false, 2, 1, 0)
	m.RecordValidation("civilite", true, 0, 0, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("civilite", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("civilite", "valid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidationIssues.WithLabelValues("civilite", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ValidationIssues.WithLabelValues("civilite", "suggestion")))
}

func TestRecordFailOpen(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	m.RecordFailOpen("commande", "stock")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailOpenChecks.WithLabelValues("commande", "stock")))
}

func TestRecordBulkItem(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	m.RecordBulkItem("civilites:delete", true)
	m.RecordBulkItem("civilites:delete", true)
	m.RecordBulkItem("civilites:delete", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BulkItems.WithLabelValues("civilites:delete", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BulkItems.WithLabelValues("civilites:delete", "failure")))
}

func TestRecordNormalizerShape(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	m.RecordNormalizerShape("villes", "nested")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NormalizerShapes.WithLabelValues("villes", "nested")))
}

func TestRecordHTTPRequest(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	m.RecordHTTPRequest("GET", "/api/civilites", 200)
	m.RecordHTTPRequest("GET", "/api/civilites", 302)
	m.RecordHTTPRequest("GET", "/api/civilites", 502)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/civilites", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/civilites", "3xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/civilites", "5xx")))
}

func TestActiveConnections(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	m.IncrementActiveConnections()
	m.IncrementActiveConnections()
	m.DecrementActiveConnections()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveConnections))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordBulkItem("pays:delete", true)

	path := filepath.Join(t.TempDir(), "nested", "backoffice.prom")
	require.NoError(t, metrics.WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `backoffice_bulk_items_total{operation="pays:delete",status="success"} 1`))
}
