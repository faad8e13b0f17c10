package router

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/gatherly-web/pkg/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type htmlView string

func (v htmlView) Render(w io.Writer) error {
	_, err := io.WriteString(w, string(v))
	return err
}

type brokenView struct{}

func (brokenView) Render(io.Writer) error { return errors.New("template exploded") }

func serve(rs *RouterService, method, path, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	return w
}

func mountPageController(rs *RouterService, limiter ratelimit.RateLimiter) {
	rs.MountController(NewRESTController("PageController", "/", func(rs *RouterService, c *RESTController) {
		rs.AddGetHandler(c, limiter, "hello", func(*RequestContext) *ServiceResult {
			return PageResult(http.StatusAccepted, htmlView("<p>hello</p>"))
		})
		rs.AddGetHandler(c, nil, "broken", func(*RequestContext) *ServiceResult {
			return PageResult(http.StatusOK, brokenView{})
		})
		rs.AddGetHandler(c, nil, "nothing", func(*RequestContext) *ServiceResult {
			return nil
		})
	}))
}

func TestPageResult_RendersHTML(t *testing.T) {
	rs := newTestRouterService(t)
	mountPageController(rs, nil)

	w := serve(rs, http.MethodGet, "/hello", "")

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<p>hello</p>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
}

func TestPageResult_RenderFailureIsJSON500(t *testing.T) {
	rs := newTestRouterService(t)
	mountPageController(rs, nil)

	w := serve(rs, http.MethodGet, "/broken", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to render page")
	assert.NotContains(t, w.Body.String(), "template exploded")
}

func TestNilResultIsJSON500(t *testing.T) {
	rs := newTestRouterService(t)
	mountPageController(rs, nil)

	w := serve(rs, http.MethodGet, "/nothing", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNoRoute_UsesNotFoundViewForBrowsers(t *testing.T) {
	rs := newTestRouterService(t)
	mountPageController(rs, nil)

	withoutView := serve(rs, http.MethodGet, "/missing", "text/html")
	assert.Equal(t, http.StatusNotFound, withoutView.Code)
	assert.Contains(t, withoutView.Body.String(), "Route not found")

	rs.SetNotFoundView(func(path string) Renderer { return htmlView("<h1>no " + path + "</h1>") })

	html := serve(rs, http.MethodGet, "/missing", "text/html")
	assert.Equal(t, http.StatusNotFound, html.Code)
	assert.Equal(t, "<h1>no /missing</h1>", html.Body.String())

	api := serve(rs, http.MethodGet, "/missing", "application/json")
	assert.Equal(t, http.StatusNotFound, api.Code)
	assert.Contains(t, api.Body.String(), "Route not found")
}

func TestRateLimit_HandlerOverride(t *testing.T) {
	rs := newTestRouterService(t)
	mountPageController(rs, ratelimit.NewInMemoryRateLimiter(1, time.Minute))

	first := serve(rs, http.MethodGet, "/hello", "")
	require.Equal(t, http.StatusAccepted, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := serve(rs, http.MethodGet, "/hello", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	other := serve(rs, http.MethodGet, "/broken", "")
	assert.Equal(t, "1000", other.Header().Get("X-RateLimit-Limit"))
}

func TestCORS_SameOriginRequestsSkipChecks(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://gatherly.app")
	rs := newTestRouterService(t)
	mountPageController(rs, nil)

	same := serve(rs, http.MethodGet, "/hello", "")
	assert.Empty(t, same.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set("Origin", "https://gatherly.app")
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	assert.Equal(t, "https://gatherly.app", w.Header().Get("Access-Control-Allow-Origin"))
}
