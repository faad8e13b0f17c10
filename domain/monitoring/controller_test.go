package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/gatherly-web/config/router"
	"github.com/akeren/gatherly-web/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubCache struct{ err error }

func (c stubCache) Ping(context.Context) error { return c.err }

type stubBackend struct {
	configured, demo bool
	circuit          string
}

func (b stubBackend) IsConfigured() bool   { return b.configured }
func (b stubBackend) IsDemoMode() bool     { return b.demo }
func (b stubBackend) CircuitState() string { return b.circuit }

func serveHealth(t *testing.T, db *gorm.DB, cache Cache, backend BackendStatus) HealthStatus {
	t.Helper()

	logger := log.NewLoggerWithJSONOutput()
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	rs.MountController(NewMonitoringControllerFactory(db, logger, cache, backend).CreateController())

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data HealthStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestHealth_NothingConfigured(t *testing.T) {
	status := serveHealth(t, nil, nil, stubBackend{demo: true})

	assert.Equal(t, 0, status.Database)
	assert.Equal(t, 0, status.Cache)
	assert.False(t, status.BackendConfigured)
	assert.True(t, status.DemoMode)
}

func TestHealth_ReportsHealthyDependencies(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	status := serveHealth(t, db, stubCache{}, stubBackend{configured: true, circuit: "closed"})

	assert.Equal(t, 1, status.Database)
	assert.Equal(t, 1, status.Cache)
	assert.True(t, status.BackendConfigured)
	assert.False(t, status.DemoMode)
	assert.Equal(t, "closed", status.BackendCircuit)
}

func TestHealth_CachePingFailure(t *testing.T) {
	status := serveHealth(t, nil, stubCache{err: errors.New("connection refused")}, nil)

	assert.Equal(t, 0, status.Cache)
	assert.False(t, status.BackendConfigured)
}

func TestMonitor_IsOperational(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	rs.MountController(NewMonitoringController(nil, logger, nil, nil))

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitor", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Monitoring successful")
}
