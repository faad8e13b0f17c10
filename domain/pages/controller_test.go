package pages

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/gatherly-web/config/router"
	"github.com/akeren/gatherly-web/domain/waitlist"
	"github.com/akeren/gatherly-web/internal/content"
	"github.com/akeren/gatherly-web/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *router.RouterService {
	t.Helper()

	logger := log.NewLoggerWithJSONOutput()
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})

	library, err := content.Load()
	require.NoError(t, err)

	forms := waitlist.NewWaitlistService(logger, nil, waitlist.ServiceConfig{DemoMode: true}, nil)
	rs.MountController(NewPagesControllerFactory(library, forms, logger).CreateController())

	return rs
}

func get(rs *router.RouterService, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	return w
}

func TestHomePage(t *testing.T) {
	rs := newTestRouter(t)

	w := get(rs, "/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, heroHeadline)
	assert.Contains(t, body, `name="form_id"`)
	assert.Contains(t, body, `href="/about"`)
}

func TestContentPages(t *testing.T) {
	rs := newTestRouter(t)

	for path, title := range map[string]string{
		"/about":   "About us",
		"/contact": "Contact",
		"/privacy": "Privacy policy",
		"/terms":   "Terms of service",
	} {
		t.Run(path, func(t *testing.T) {
			w := get(rs, path)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "<title>"+title+" | Gatherly</title>")
			assert.Contains(t, w.Body.String(), `aria-current="page"`)
		})
	}
}

func TestUnknownPage(t *testing.T) {
	rs := newTestRouter(t)

	t.Run("browser gets the html page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/careers", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
		w := httptest.NewRecorder()
		rs.GetEngine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Nothing lives at /careers yet.")
	})

	t.Run("api client gets json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/careers", nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		rs.GetEngine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Route not found")
	})
}

func TestNavLinks(t *testing.T) {
	library, err := content.Load()
	require.NoError(t, err)

	links := NavLinks(library)

	require.Len(t, links, 4)
	assert.Equal(t, "/about", links[0].Href)
	assert.Equal(t, "About us", links[0].Label)
}
