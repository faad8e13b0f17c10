package waitlist

import (
	"github.com/akeren/gatherly-web/config/router"
	"github.com/akeren/gatherly-web/internal/backend"
	"github.com/akeren/gatherly-web/internal/log"
	"github.com/akeren/gatherly-web/internal/web/components"
	"github.com/akeren/gatherly-web/pkg/factory"
)

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateController() *router.RESTController
	CreatePageController(nav []components.NavLink) *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	logger   *log.Logger
	binding  *backend.Binding
	config   ServiceConfig
	recorder SubmissionRecorder
	limiters factory.RateLimiterFactory

	service WaitlistService
}

func NewWaitlistServiceFactory(
	logger *log.Logger,
	binding *backend.Binding,
	cfg ServiceConfig,
	recorder SubmissionRecorder,
	limiters factory.RateLimiterFactory,
) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		logger:   logger,
		binding:  binding,
		config:   cfg,
		recorder: recorder,
		limiters: limiters,
	}
}

// CreateService returns the shared service so the API and the HTML form see
// the same form registry.
func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	if f.service == nil {
		f.service = NewWaitlistService(f.logger, f.binding, f.config, f.recorder)
	}
	return f.service
}

func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	return NewWaitlistController(f.CreateService(), f.limiters)
}

func (f *DefaultWaitlistServiceFactory) CreatePageController(nav []components.NavLink) *router.RESTController {
	return NewWaitlistPageController(f.CreateService(), f.limiters, nav)
}
