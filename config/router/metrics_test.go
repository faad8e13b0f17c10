package router

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ExposesRouteTemplates(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "")
	rs := newTestRouterService(t)
	mountEchoController(rs)
	require.NotNil(t, rs.MetricsRegisterer())

	serve(rs, http.MethodGet, "/ip", "")
	serve(rs, http.MethodGet, "/nowhere/42", "application/json")

	w := serve(rs, http.MethodGet, metricsPath, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/ip",status="200"} 1`)
	assert.Contains(t, w.Body.String(), `route="unmatched",status="404"`)
	assert.NotContains(t, w.Body.String(), "/nowhere/42")
}

func TestMetrics_Disabled(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	rs := newTestRouterService(t)

	assert.Nil(t, rs.MetricsRegisterer())
	assert.Equal(t, http.StatusNotFound, serve(rs, http.MethodGet, metricsPath, "application/json").Code)
}
