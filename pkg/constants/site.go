package constants

import "time"

const (
	// SiteName is the brand shown in page titles and the header.
	SiteName = "Gatherly"
	// ServiceName identifies this process in traces and logs.
	ServiceName = "gatherly-web"
)

// Default global rate limiting, overridable with RATE_LIMIT_REQUESTS and
// RATE_LIMIT_WINDOW.
const (
	DefaultRateLimitRequests      = 100
	DefaultRateLimitWindowMinutes = 1
	DefaultRequestTimeout         = 30 * time.Second
)

func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}
