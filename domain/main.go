package domain

import (
	"fmt"

	"github.com/akeren/gatherly-web/config"
	"github.com/akeren/gatherly-web/domain/monitoring"
	"github.com/akeren/gatherly-web/domain/pages"
	"github.com/akeren/gatherly-web/domain/waitlist"
	"github.com/akeren/gatherly-web/internal/content"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) error {
	library, err := content.Load()
	if err != nil {
		return fmt.Errorf("load site content: %w", err)
	}

	rs := appConfig.RouterService

	waitlistFactory := waitlist.NewWaitlistServiceFactory(
		appConfig.Logger,
		appConfig.Binding,
		waitlist.ServiceConfig{
			DemoMode:  appConfig.Backend.DemoMode,
			DemoDelay: appConfig.Backend.DemoDelay,
			FormTTL:   appConfig.Backend.FormTTL,
		},
		waitlist.NewPrometheusRecorder(rs.MetricsRegisterer()),
		waitlist.NewSubmissionRateLimiterFactory(appConfig.Cache, appConfig.Logger),
	)

	nav := pages.NavLinks(library)

	rs.MountController(monitoring.NewMonitoringControllerFactory(appConfig.DB, appConfig.Logger, appConfig.Cache, appConfig.Backend).CreateController())
	rs.MountController(waitlistFactory.CreateController())
	rs.MountController(waitlistFactory.CreatePageController(nav))
	rs.MountController(pages.NewPagesControllerFactory(library, waitlistFactory.CreateService(), appConfig.Logger).CreateController())

	return nil
}
