package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/akeren/gatherly-web/internal/log"
	apperrors "github.com/akeren/gatherly-web/pkg/errors"
	"github.com/akeren/gatherly-web/pkg/factory"
	"github.com/akeren/gatherly-web/pkg/ratelimit"
	"github.com/akeren/gatherly-web/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const globalRateLimitNamespace = "global"

type MiddlewareConfig struct {
	TimeoutDuration time.Duration
}

type RouterService struct {
	engine            *gin.Engine
	server            *http.Server
	logger            *log.Logger
	rateLimiter       ratelimit.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
	redisClient       *redis.Client
	middlewareConfig  *MiddlewareConfig
	metricsRegistry   *prometheus.Registry

	// Both maps are keyed by keyForPathAndMethod.
	handlerToControllerMap map[string]*RESTController
	rateLimitOverrides     map[string]ratelimit.RateLimiter

	notFoundView func(path string) Renderer
}

type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

// CreateRouterService builds the gin engine with the shared middleware chain.
// cache may be nil; when it exposes a Redis client the global limiter is
// shared across replicas.
func CreateRouterService(logger *log.Logger, cache factory.Cache, routerConfig *RouterConfig) *RouterService {
	if mode := utils.GetEnvTrimmed("GIN_MODE"); mode != "" {
		logger.Info("Setting Gin mode", "mode", mode)
		gin.SetMode(mode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.HandleMethodNotAllowed = true
	engine.RedirectTrailingSlash = true

	if utils.IsTracingEnabled() {
		engine.Use(otelgin.Middleware(utils.OTelServiceName()))
		logger.Info("Tracing middleware enabled")
	}

	configureTrustedProxies(engine, logger)

	rs := &RouterService{
		engine:                 engine,
		logger:                 logger,
		rateLimitRequests:      routerConfig.RateLimitRequests,
		rateLimitWindow:        routerConfig.RateLimitWindow,
		redisClient:            redisClientOf(cache),
		middlewareConfig:       &MiddlewareConfig{TimeoutDuration: routerConfig.RequestTimeout},
		rateLimitOverrides:     make(map[string]ratelimit.RateLimiter),
		handlerToControllerMap: make(map[string]*RESTController),
	}

	rs.initRateLimiting()
	rs.mountMetrics()

	engine.Use(
		rs.correlationIDMiddleware(),
		rs.loggerInjectionMiddleware(),
		rs.securityHeadersMiddleware(),
		rs.maxBodySizeMiddleware(),
		rs.corsMiddleware(),
		rs.rateLimitMiddleware(),
		rs.timeoutMiddleware(),
		rs.requestLoggingMiddleware(),
	)

	engine.NoRoute(rs.noRoute)
	engine.NoMethod(func(c *gin.Context) {
		GetLogger(c).Warn("Method not allowed", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"code":    apperrors.StatusMethodNotAllowed,
			"message": "Method not allowed",
			"data":    nil,
		})
	})

	rs.server = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       routerConfig.RequestTimeout,
		WriteTimeout:      routerConfig.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Router service initialized")
	return rs
}

func redisClientOf(cache factory.Cache) *redis.Client {
	if provider, ok := cache.(factory.RedisClientProvider); ok {
		return provider.GetClient()
	}
	return nil
}

// configureTrustedProxies applies TRUSTED_PROXIES. Gin trusts every proxy by
// default, which would let clients spoof ClientIP through X-Forwarded-For.
func configureTrustedProxies(engine *gin.Engine, logger *log.Logger) {
	proxies := parseTrustedProxiesEnv(utils.GetEnvTrimmed("TRUSTED_PROXIES"))

	if err := engine.SetTrustedProxies(proxies); err != nil {
		logger.Error("Invalid TRUSTED_PROXIES; disabling trusted proxies", "error", err)
		_ = engine.SetTrustedProxies(nil)
		return
	}

	if proxies == nil {
		logger.Info("Trusted proxies disabled (TRUSTED_PROXIES not set)")
	}
}

// parseTrustedProxiesEnv reads a comma-separated list. "*" trusts everything
// and is meant for local development.
func parseTrustedProxiesEnv(v string) []string {
	v = strings.TrimSpace(v)
	if v == "*" {
		return []string{"0.0.0.0/0", "::/0"}
	}

	var proxies []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}

func (routerService *RouterService) initRateLimiting() {
	client := routerService.redisClient

	if client != nil {
		if err := client.Ping(context.Background()).Err(); err != nil {
			routerService.logger.Warn("Failed to connect to Redis for rate limiting, falling back to in-memory", "error", err)
			client = nil
		}
	}

	routerService.rateLimiter = ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests:  routerService.rateLimitRequests,
		Window:    routerService.rateLimitWindow,
		Namespace: globalRateLimitNamespace,
		Redis:     client,
		Logger:    routerService.logger,
	})

	routerService.logger.Info("Rate limiting initialized",
		"backend", map[bool]string{true: "redis", false: "in-memory"}[client != nil],
		"requests", routerService.rateLimitRequests,
		"window", routerService.rateLimitWindow,
	)
}

func (routerService *RouterService) noRoute(c *gin.Context) {
	GetLogger(c).Warn("Route not found", "path", c.Request.URL.Path)

	if routerService.notFoundView != nil && wantsHTML(c) {
		renderView(c, PageResult(http.StatusNotFound, routerService.notFoundView(c.Request.URL.Path)))
		return
	}

	c.JSON(http.StatusNotFound, gin.H{
		"code":    apperrors.StatusNotFound,
		"message": "Route not found",
		"data":    nil,
	})
}

// SetNotFoundView renders unknown paths as an HTML page for browsers. API
// clients asking for JSON keep the JSON envelope.
func (routerService *RouterService) SetNotFoundView(view func(path string) Renderer) {
	routerService.notFoundView = view
}

func wantsHTML(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}

func (routerService *RouterService) GetEngine() *gin.Engine {
	return routerService.engine
}

func (routerService *RouterService) GetLogger(c *RequestContext) *log.Logger {
	return routerService.logger.WithCorrelationID(c.Request.Context())
}

func (routerService *RouterService) MountController(controller *RESTController) {
	controller.prepare(routerService, controller)

	routerService.logger.Info("Controller mounted",
		"name", controller.name,
		"path", controller.mountPoint,
		"version", controller.version,
		"handlers", controller.handlerCount,
	)
}

func (routerService *RouterService) RunHTTPServer() error {
	routerService.server.Addr = ":" + utils.GetEnvTrimmedOrDefault("APP_PORT", "8080")

	routerService.logger.Info("Starting HTTP server", "addr", routerService.server.Addr)

	if err := routerService.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		routerService.logger.Error("Failed to start HTTP server", "error", err)
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

func (routerService *RouterService) Shutdown(ctx context.Context) error {
	routerService.logger.Info("Shutting down HTTP server gracefully...")
	return routerService.server.Shutdown(ctx)
}

func (routerService *RouterService) Cleanup() {
	if routerService.rateLimiter != nil {
		if err := routerService.rateLimiter.Close(); err != nil {
			routerService.logger.Error("Failed to close rate limiter", "error", err)
		}
	}
	routerService.logger.Info("Router service cleanup completed")
}
