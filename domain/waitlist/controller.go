package waitlist

import (
	"net/http"
	"time"

	"github.com/akeren/gatherly-web/config/router"
	"github.com/akeren/gatherly-web/internal/web/components"
	apperrors "github.com/akeren/gatherly-web/pkg/errors"
	"github.com/akeren/gatherly-web/pkg/factory"
	"github.com/akeren/gatherly-web/pkg/ratelimit"
)

const (
	waitlistSubmissionsPerMinute = 30 // More permissive than monitoring (10/min)

	waitlistPageTitle       = "Join the waitlist | Gatherly"
	waitlistPageDescription = "Sign up to hear when Gatherly opens in your city."
)

// NewWaitlistController mounts the JSON API under /v1/waitlist.
func NewWaitlistController(service WaitlistService, limiters factory.RateLimiterFactory) *router.RESTController {
	return router.NewVersionedRESTController(
		"WaitlistController",
		"v1",
		"/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			submissionLimiter := createSubmissionRateLimiter(limiters)

			rs.AddPostHandler(c, submissionLimiter, "", submitWaitlistHandler(service))
			rs.AddGetHandler(c, nil, "/status", waitlistStatusHandler(service))
		},
	)
}

// NewWaitlistPageController mounts the server-rendered form under /waitlist.
func NewWaitlistPageController(service WaitlistService, limiters factory.RateLimiterFactory, nav []components.NavLink) *router.RESTController {
	return router.NewRESTController(
		"WaitlistPageController",
		"/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			submissionLimiter := createSubmissionRateLimiter(limiters)

			rs.AddGetHandler(c, nil, "", waitlistPageHandler(service, nav))
			rs.AddPostHandler(c, submissionLimiter, "", submitWaitlistPageHandler(service, nav))
		},
	)
}

func createSubmissionRateLimiter(limiters factory.RateLimiterFactory) ratelimit.RateLimiter {
	if limiters != nil {
		return limiters.CreateRateLimiter()
	}

	return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests: waitlistSubmissionsPerMinute,
		Window:   time.Minute,
	})
}

// NewSubmissionRateLimiterFactory builds the limiter factory for submission
// endpoints, backed by Redis when the cache exposes a client.
func NewSubmissionRateLimiterFactory(cache factory.Cache, logger ratelimit.Logger) factory.RateLimiterFactory {
	return factory.NewDefaultRateLimiterFactory("waitlist", waitlistSubmissionsPerMinute, time.Minute, cache, logger)
}

func submitWaitlistHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req SubmitWaitlistRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid request payload", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		response, err := service.Submit(ctx.Request.Context(), &req)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				response,
			)
		}

		return router.OKResult(response, response.Message)
	}
}

func waitlistStatusHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		return router.OKResult(service.Status(), "Waitlist status retrieved successfully")
	}
}

func waitlistPageHandler(service WaitlistService, nav []components.NavLink) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		return router.PageResult(http.StatusOK, waitlistPage(nav, components.WaitlistFormView{
			FormID: service.NewFormID(),
		}))
	}
}

func submitWaitlistPageHandler(service WaitlistService, nav []components.NavLink) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req SubmitWaitlistRequest

		if err := ctx.ShouldBind(&req); err != nil {
			logger.Warn("Waitlist form failed validation", "error", err)

			view := components.WaitlistFormView{
				FormID:      req.FormID,
				Name:        req.Name,
				Email:       req.Email,
				Message:     "Please fix the highlighted fields.",
				FieldErrors: fieldErrors(apperrors.FormatValidationErrors(err, &req)),
			}

			return router.PageResult(http.StatusBadRequest, waitlistPage(nav, view))
		}

		response, err := service.Submit(ctx.Request.Context(), &req)
		if response == nil {
			return router.PageResult(apperrors.HTTPStatusCode(err), waitlistPage(nav, components.WaitlistFormView{
				Name:    req.Name,
				Email:   req.Email,
				Message: apperrors.GetHumanReadableMessage(err),
			}))
		}

		view := ToFormView(response)

		if err != nil {
			// The form keeps its inputs so the visitor can retry.
			if view.Name == "" && view.Email == "" {
				view.Name, view.Email = req.Name, req.Email
			}
			if view.Message == "" {
				view.Message = apperrors.GetHumanReadableMessage(err)
			}

			return router.PageResult(apperrors.HTTPStatusCode(err), waitlistPage(nav, view))
		}

		return router.PageResult(http.StatusOK, waitlistPage(nav, view))
	}
}

// ToFormView maps a submission response onto the signup form.
func ToFormView(response *SubmissionResponse) components.WaitlistFormView {
	view := components.WaitlistFormView{
		FormID: response.FormID,
		Name:   response.Name,
		Email:  response.Email,
	}

	switch response.State {
	case StateNameSuccess:
		view.Confirmed = true
		view.Confirmation = response.Message
	case StateNameError:
		view.Message = response.Message
	}

	return view
}

func fieldErrors(validationErrors []apperrors.ValidationErrorResponse) map[string]string {
	if len(validationErrors) == 0 {
		return nil
	}

	out := make(map[string]string, len(validationErrors))
	for _, v := range validationErrors {
		out[v.Field] = v.Message
	}
	return out
}

func waitlistPage(nav []components.NavLink, view components.WaitlistFormView) router.Renderer {
	return components.Layout(
		components.PageConfig{
			Title:       waitlistPageTitle,
			Description: waitlistPageDescription,
			Path:        "/waitlist",
			Nav:         nav,
		},
		components.WaitlistSection(view),
	)
}
