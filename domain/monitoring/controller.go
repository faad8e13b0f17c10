package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/akeren/gatherly-web/config/router"
	"github.com/akeren/gatherly-web/internal/log"
	"github.com/akeren/gatherly-web/pkg/constants"
	"github.com/akeren/gatherly-web/pkg/factory"
	"gorm.io/gorm"
)

const (
	monitoringRequestsPerWindow = 10
	monitoringWindow            = time.Minute
	probeTimeout                = 2 * time.Second
)

type Cache interface {
	Ping(ctx context.Context) error
}

// BackendStatus reports how waitlist submissions are currently served.
type BackendStatus interface {
	IsConfigured() bool
	IsDemoMode() bool
	CircuitState() string
}

// HealthStatus is the /health payload. Database and Cache are 1 when the
// dependency answered a ping and 0 when it failed or is not configured.
type HealthStatus struct {
	Database          int    `json:"database"`
	Cache             int    `json:"cache"`
	BackendConfigured bool   `json:"backend_configured"`
	DemoMode          bool   `json:"demo_mode"`
	BackendCircuit    string `json:"backend_circuit,omitempty"`
	Uptime            int    `json:"uptime"`
}

type MonitoringController struct {
	db        *gorm.DB
	logger    *log.Logger
	cache     Cache
	backend   BackendStatus
	startTime time.Time
}

func NewMonitoringController(db *gorm.DB, logger *log.Logger, cache Cache, backend BackendStatus) *router.RESTController {
	ctrl := &MonitoringController{
		db:        db,
		logger:    logger,
		cache:     cache,
		backend:   backend,
		startTime: time.Now(),
	}

	return router.NewRESTController("MonitoringController", "/", func(rs *router.RouterService, c *router.RESTController) {
		// Both endpoints share one small budget; they are cheap to hammer otherwise.
		limiter := factory.NewDefaultRateLimiterFactory("monitoring", monitoringRequestsPerWindow, monitoringWindow, cache, logger).CreateRateLimiter()

		rs.AddGetHandler(c, limiter, "monitor", ctrl.monitor)
		rs.AddGetHandler(c, limiter, "health", ctrl.health)
	})
}

func (ctrl *MonitoringController) monitor(*router.RequestContext) *router.ServiceResult {
	return router.OKResult("Monitoring endpoint is operational.", "Monitoring successful")
}

func (ctrl *MonitoringController) health(c *router.RequestContext) *router.ServiceResult {
	logger := router.GetLogger(c)
	logger.Info("Health check endpoint called")

	return &router.ServiceResult{
		StatusCode: http.StatusOK,
		Data:       ctrl.check(c.Request.Context(), logger),
		Message:    constants.ServiceName + " health check completed",
	}
}

func (ctrl *MonitoringController) check(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		Uptime:   int(time.Since(ctrl.startTime).Seconds()),
		Database: probe(ctx, logger, "database", ctrl.pingDatabase()),
		Cache:    probe(ctx, logger, "cache", ctrl.pingCache()),
	}

	if ctrl.backend != nil {
		status.BackendConfigured = ctrl.backend.IsConfigured()
		status.DemoMode = ctrl.backend.IsDemoMode()
		status.BackendCircuit = ctrl.backend.CircuitState()
	}

	switch {
	case !status.BackendConfigured:
		logger.Warn("Waitlist backend not configured", "demo_mode", status.DemoMode)
	case status.BackendCircuit == "open":
		logger.Error("Waitlist backend circuit is open")
	}

	return status
}

// probe runs ping with a bounded deadline. A nil ping means the dependency
// is not configured.
func probe(ctx context.Context, logger *log.Logger, name string, ping func(context.Context) error) int {
	if ping == nil {
		logger.Info("Health check skipped; not configured", "dependency", name)
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := ping(ctx); err != nil {
		logger.Error("Health check failed", "dependency", name, "error", err)
		return 0
	}

	logger.Info("Health check passed", "dependency", name)
	return 1
}

func (ctrl *MonitoringController) pingDatabase() func(context.Context) error {
	if ctrl.db == nil {
		return nil
	}

	return func(ctx context.Context) error {
		sqlDB, err := ctrl.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func (ctrl *MonitoringController) pingCache() func(context.Context) error {
	if ctrl.cache == nil {
		return nil
	}
	return ctrl.cache.Ping
}
