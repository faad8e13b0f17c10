package router

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/akeren/gatherly-web/pkg/ratelimit"
)

// joinRoute builds an absolute route without trailing slash from a mount
// point and a relative path.
func joinRoute(parts ...string) string {
	return path.Clean("/" + strings.Join(parts, "/"))
}

func (routerService *RouterService) keyForPathAndMethod(route, method string) string {
	return method + " " + route
}

// register records which controller owns a route and its optional limiter.
// A route claimed twice is a wiring bug and panics at startup.
func (routerService *RouterService) register(controller *RESTController, method, route string, limiter ratelimit.RateLimiter) {
	key := routerService.keyForPathAndMethod(route, method)

	if owner, taken := routerService.handlerToControllerMap[key]; taken {
		panic(fmt.Sprintf("route %s is already registered by controller %q", key, owner.name))
	}
	routerService.handlerToControllerMap[key] = controller

	if limiter != nil {
		routerService.rateLimitOverrides[key] = limiter
	}
}

func createHandler(handler HandlerFunction) MiddlewareFunc {
	return func(c *RequestContext) {
		result := handler(c)

		switch {
		case result == nil:
			GetLogger(c).Error("Handler returned no result", "path", c.FullPath())
			c.JSON(http.StatusInternalServerError, InternalServerErrorResult("A handler returned an undefined result.").ToJSON())
		case result.View != nil:
			renderView(c, result)
		default:
			c.JSON(result.StatusCode, result.ToJSON())
		}
	}
}

// renderView buffers the page so a failing render still yields a clean 500.
func renderView(c *RequestContext, result *ServiceResult) {
	var buf bytes.Buffer

	if err := result.View.Render(&buf); err != nil {
		GetLogger(c).Error("Failed to render view", "error", err)
		c.JSON(http.StatusInternalServerError, InternalServerErrorResult("Failed to render page").ToJSON())
		return
	}

	c.Data(result.StatusCode, "text/html; charset=utf-8", buf.Bytes())
}

func NewRESTController(name, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	return &RESTController{
		name:       name,
		mountPoint: joinRoute(mountPoint),
		prepare:    prepare,
	}
}

// NewVersionedRESTController mounts the controller under /<version>/<mountPoint>.
func NewVersionedRESTController(name, version, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	return &RESTController{
		name:       name,
		mountPoint: joinRoute(version, mountPoint),
		version:    version,
		prepare:    prepare,
	}
}

func (routerService *RouterService) addHandler(
	method string,
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	relativePath string,
	handler HandlerFunction,
	middlewares []MiddlewareFunc,
) {
	route := joinRoute(controller.mountPoint, relativePath)

	routerService.register(controller, method, route, limiter)
	routerService.engine.Handle(method, route, append(middlewares, createHandler(handler))...)
	controller.handlerCount++

	routerService.logger.Debug("Handler registered", "method", method, "path", route, "controller", controller.name)
}

func (routerService *RouterService) AddPostHandler(controller *RESTController, limiter ratelimit.RateLimiter, relativePath string, handler HandlerFunction, middlewares ...MiddlewareFunc) {
	routerService.addHandler(http.MethodPost, controller, limiter, relativePath, handler, middlewares)
}

func (routerService *RouterService) AddGetHandler(controller *RESTController, limiter ratelimit.RateLimiter, relativePath string, handler HandlerFunction, middlewares ...MiddlewareFunc) {
	routerService.addHandler(http.MethodGet, controller, limiter, relativePath, handler, middlewares)
}
