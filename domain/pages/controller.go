package pages

import (
	"net/http"

	"github.com/akeren/gatherly-web/config/router"
	"github.com/akeren/gatherly-web/domain/waitlist"
	"github.com/akeren/gatherly-web/internal/content"
	"github.com/akeren/gatherly-web/internal/log"
	"github.com/akeren/gatherly-web/internal/web/components"
	"github.com/akeren/gatherly-web/pkg/constants"
)

const heroHeadline = "Never go to an event alone."

type PagesController struct {
	library  *content.Library
	forms    waitlist.WaitlistService
	logger   *log.Logger
	nav      []components.NavLink
	siteName string
}

// NavLinks converts the library's navigation pages into layout links.
func NavLinks(library *content.Library) []components.NavLink {
	pages := library.Nav()
	links := make([]components.NavLink, 0, len(pages))
	for _, page := range pages {
		links = append(links, components.NavLink{Label: page.Title, Href: page.Path()})
	}
	return links
}

func NewPagesController(library *content.Library, forms waitlist.WaitlistService, logger *log.Logger) *router.RESTController {
	ctrl := &PagesController{
		library:  library,
		forms:    forms,
		logger:   logger,
		nav:      NavLinks(library),
		siteName: constants.SiteName,
	}

	return router.NewRESTController(
		"PagesController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {
			routerService.AddGetHandler(controller, nil, "", ctrl.home)

			for _, slug := range library.Slugs() {
				if slug == content.HomeSlug {
					continue
				}
				routerService.AddGetHandler(controller, nil, slug, ctrl.page(slug))
			}

			routerService.SetNotFoundView(ctrl.notFound)

			if ctrl.logger != nil {
				ctrl.logger.Info("Content pages mounted", "pages", library.Slugs(), "nav_links", len(ctrl.nav))
			}
		},
	)
}

func (ctrl *PagesController) home(c *router.RequestContext) *router.ServiceResult {
	page, ok := ctrl.library.Get(content.HomeSlug)
	if !ok {
		router.GetLogger(c).Error("Home page missing from content library")
		return router.NotFoundResult("Page not found")
	}

	return router.PageResult(http.StatusOK, components.Layout(
		components.PageConfig{
			Title:       page.Title,
			Description: page.Description,
			Path:        page.Path(),
			Nav:         ctrl.nav,
		},
		components.Hero(heroHeadline, page.Description),
		components.Prose(page.HTML),
		components.WaitlistSection(components.WaitlistFormView{FormID: ctrl.forms.NewFormID()}),
	))
}

func (ctrl *PagesController) page(slug string) router.HandlerFunction {
	return func(c *router.RequestContext) *router.ServiceResult {
		page, ok := ctrl.library.Get(slug)
		if !ok {
			router.GetLogger(c).Error("Mounted page missing from library", "slug", slug)
			return router.NotFoundResult("Page not found")
		}

		return router.PageResult(http.StatusOK, components.Layout(
			components.PageConfig{
				Title:       page.Title + " | " + ctrl.siteName,
				Description: page.Description,
				Path:        page.Path(),
				Nav:         ctrl.nav,
			},
			components.Prose(page.HTML),
		))
	}
}

func (ctrl *PagesController) notFound(path string) router.Renderer {
	return components.Layout(
		components.PageConfig{
			Title: "Page not found | " + ctrl.siteName,
			Path:  path,
			Nav:   ctrl.nav,
		},
		components.NotFound(path),
	)
}
