package monitoring

import (
	"github.com/akeren/gatherly-web/config/router"
	"github.com/akeren/gatherly-web/internal/log"
	"gorm.io/gorm"
)

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	db      *gorm.DB
	logger  *log.Logger
	cache   Cache
	backend BackendStatus
}

func NewMonitoringControllerFactory(db *gorm.DB, logger *log.Logger, cache Cache, backend BackendStatus) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{
		db:      db,
		logger:  logger,
		cache:   cache,
		backend: backend,
	}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	return NewMonitoringController(f.db, f.logger, f.cache, f.backend)
}
