package router

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/gatherly-web/internal/log"
	apperrors "github.com/akeren/gatherly-web/pkg/errors"
	"github.com/akeren/gatherly-web/pkg/ratelimit"
	"github.com/akeren/gatherly-web/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Pages ship their stylesheet and the submit guard inline, so both need
// 'unsafe-inline'. Everything else stays same-origin.
const contentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; form-action 'self'; frame-ancestors 'none'; base-uri 'self'"

const (
	correlationHeader     = "X-Correlation-ID"
	defaultMaxBodyBytes   = 64 << 10
	defaultHSTSMaxAge     = 365 * 24 * 60 * 60
	corsAllowedHeaders    = "Content-Type, Content-Length, Accept, Accept-Encoding, Origin, Cache-Control, X-Requested-With, X-Correlation-ID"
	corsAllowedMethods    = "POST, OPTIONS, GET"
	corsAllowedOriginsEnv = "CORS_ALLOWED_ORIGIN"
)

func (routerService *RouterService) correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(correlationHeader))
		if id == "" {
			id = log.GenerateCorrelationID()
		}

		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), log.CorrelatedIDKey, id))
		c.Header(correlationHeader, id)
		c.Next()
	}
}

// loggerInjectionMiddleware stores a correlated logger on the request so
// handlers and domain services pick it up through GetLogger.
func (routerService *RouterService) loggerInjectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, log.LoggerKeyForContext, routerService.logger.WithCorrelationID(ctx))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (routerService *RouterService) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		}

		logger := GetLogger(c)
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request", args...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP request", args...)
		default:
			logger.Info("HTTP request", args...)
		}
	}
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	hsts := buildHSTSValue()

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", contentSecurityPolicy)

		if shouldSetHSTS(c) {
			h.Set("Strict-Transport-Security", hsts)
		}
		c.Next()
	}
}

// shouldSetHSTS reports whether the request arrived over HTTPS, directly or
// through a TLS-terminating proxy. HSTS_ENABLED overrides the production default.
func shouldSetHSTS(c *gin.Context) bool {
	env := strings.ToLower(utils.GetEnvTrimmed("APP_ENV"))
	if !utils.GetEnvBool("HSTS_ENABLED", env == "production" || env == "prod") {
		return false
	}

	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}

func buildHSTSValue() string {
	value := fmt.Sprintf("max-age=%d", utils.GetEnvPositiveInt("HSTS_MAX_AGE", defaultHSTSMaxAge))
	if utils.GetEnvBool("HSTS_INCLUDE_SUBDOMAINS", true) {
		value += "; includeSubDomains"
	}
	return value
}

// maxBodySizeMiddleware caps request bodies at MAX_REQUEST_BODY_BYTES. The
// waitlist form is two short fields, so the default is small.
func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	limit := utils.GetEnvPositiveInt("MAX_REQUEST_BODY_BYTES", defaultMaxBodyBytes)

	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				ErrorResult(http.StatusRequestEntityTooLarge, "Request payload too large", nil).ToJSON())
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func allowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(utils.GetEnvTrimmed(corsAllowedOriginsEnv), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func originAllowed(origin string, allowed []string) bool {
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// corsMiddleware only answers cross-origin requests from CORS_ALLOWED_ORIGIN.
// Same-origin browser requests carry no Origin header and pass untouched.
func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		allowed := allowedOrigins()
		if len(allowed) == 0 {
			GetLogger(c).Warn(corsAllowedOriginsEnv+" not set, denying cross-origin request", "origin", origin)
			c.Next()
			return
		}
		if !originAllowed(origin, allowed) {
			GetLogger(c).Warn("CORS origin not allowed", "origin", origin, "allowed_origins", allowed)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// timeoutMiddleware bounds the request context. Handlers run on the request
// goroutine; the server's read and write timeouts cut off a stuck handler.
func (routerService *RouterService) timeoutMiddleware() gin.HandlerFunc {
	timeout := routerService.middlewareConfig.TimeoutDuration

	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			GetLogger(c).Warn("Request timeout detected", "timeout", timeout)
			c.AbortWithStatusJSON(http.StatusRequestTimeout,
				ErrorResult(apperrors.StatusRequestTimeout, "Request timeout", nil).ToJSON())
		}
	}
}

// limiterFor returns the route's own limiter when one was registered and the
// global limiter otherwise, including for unmatched paths that fall through
// to NoRoute.
func (routerService *RouterService) limiterFor(c *gin.Context) ratelimit.RateLimiter {
	if route := c.FullPath(); route != "" {
		if limiter, ok := routerService.rateLimitOverrides[routerService.keyForPathAndMethod(route, c.Request.Method)]; ok {
			return limiter
		}
	}
	return routerService.rateLimiter
}

func retryAfterSeconds(window time.Duration) int {
	return max(1, int(math.Ceil(window.Seconds())))
}

func (routerService *RouterService) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := routerService.limiterFor(c)
		if limiter == nil {
			c.Next()
			return
		}

		limit, window := limiter.GetLimitDetails()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Window", window.String())

		clientIP := c.ClientIP()
		limited, err := limiter.IsLimited(clientIP)
		if err != nil {
			// Fail open; a broken limiter store should not take the site down.
			GetLogger(c).Error("Rate limiter error", "error", err, "client_ip", clientIP)
			c.Next()
			return
		}
		if !limited {
			c.Next()
			return
		}

		retryAfter := strconv.Itoa(retryAfterSeconds(window))
		GetLogger(c).Warn("Rate limit exceeded", "client_ip", clientIP, "path", c.Request.URL.Path)
		c.Header("Retry-After", retryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, TooManyRequestsResult(RateLimitResponse{
			Limit:      limit,
			Window:     window.String(),
			RetryAfter: retryAfter,
		}).ToJSON())
	}
}
