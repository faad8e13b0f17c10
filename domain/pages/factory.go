package pages

import (
	"github.com/akeren/gatherly-web/config/router"
	"github.com/akeren/gatherly-web/domain/waitlist"
	"github.com/akeren/gatherly-web/internal/content"
	"github.com/akeren/gatherly-web/internal/log"
)

type PagesControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultPagesControllerFactory struct {
	library *content.Library
	forms   waitlist.WaitlistService
	logger  *log.Logger
}

func NewPagesControllerFactory(library *content.Library, forms waitlist.WaitlistService, logger *log.Logger) PagesControllerFactory {
	return &DefaultPagesControllerFactory{
		library: library,
		forms:   forms,
		logger:  logger,
	}
}

func (f *DefaultPagesControllerFactory) CreateController() *router.RESTController {
	return NewPagesController(f.library, f.forms, f.logger)
}
