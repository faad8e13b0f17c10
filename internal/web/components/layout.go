package components

import (
	"github.com/akeren/gatherly-web/pkg/constants"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const (
	defaultTitle       = constants.SiteName + " - Find your people at events near you"
	defaultDescription = "Gatherly matches you with people heading to the same events, so you never have to go alone. Join the waitlist for early access."
)

type PageConfig struct {
	Title       string
	Description string
	Path        string
	Nav         []NavLink
}

type NavLink struct {
	Label string
	Href  string
}

func Layout(config PageConfig, content ...g.Node) g.Node {
	if config.Title == "" {
		config.Title = defaultTitle
	}

	if config.Description == "" {
		config.Description = defaultDescription
	}

	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(config.Title)),
				Meta(Name("description"), Content(config.Description)),

				Meta(g.Attr("property", "og:title"), Content(config.Title)),
				Meta(g.Attr("property", "og:description"), Content(config.Description)),
				Meta(g.Attr("property", "og:type"), Content("website")),

				StyleEl(g.Raw(stylesheet)),
			),
			Body(
				Topbar(config.Path, config.Nav),
				Main(Class("container"), g.Group(content)),
				PageFooter(config.Nav),
				Script(g.Raw(submitGuardScript)),
			),
		),
	})
}

func Topbar(current string, links []NavLink) g.Node {
	return Header(
		Class("topbar"),
		Div(
			Class("container topbar-inner"),
			A(Class("logo"), Href("/"), g.Text(constants.SiteName)),
			Nav(
				Ul(
					g.Group(g.Map(links, func(link NavLink) g.Node {
						return Li(
							A(
								Href(link.Href),
								g.If(link.Href == current, Aria("current", "page")),
								g.Text(link.Label),
							),
						)
					})),
					Li(A(Class("btn btn-small"), Href("/waitlist"), g.Text("Join the waitlist"))),
				),
			),
		),
	)
}

func PageFooter(links []NavLink) g.Node {
	return Footer(
		Class("footer"),
		Div(
			Class("container"),
			Ul(
				g.Group(g.Map(links, func(link NavLink) g.Node {
					return Li(A(Href(link.Href), g.Text(link.Label)))
				})),
			),
			P(g.Text("© Gatherly. Made for people who would rather not go alone.")),
		),
	)
}

// Prose wraps already sanitized HTML produced from page content.
func Prose(html string) g.Node {
	return Article(Class("prose"), g.Raw(html))
}

func Hero(headline, subline string) g.Node {
	return Section(
		Class("hero"),
		H1(g.Text(headline)),
		P(Class("lead"), g.Text(subline)),
		A(Class("btn"), Href("#waitlist"), g.Text("Get early access")),
	)
}

func NotFound(path string) g.Node {
	return Section(
		Class("hero"),
		H1(g.Text("We couldn't find that page")),
		P(Class("lead"), g.Textf("Nothing lives at %s yet.", path)),
		A(Class("btn"), Href("/"), g.Text("Back to the home page")),
	)
}
