package content

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/adrg/frontmatter"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HomeSlug is the page served at the site root.
const HomeSlug = "home"

//go:embed pages/*.md
var embedded embed.FS

// Page is one rendered marketing page.
type Page struct {
	Slug        string
	Title       string
	Description string
	NavOrder    int
	HTML        string
}

// Path is the URL the page is served at.
func (p *Page) Path() string {
	if p.Slug == HomeSlug {
		return "/"
	}
	return "/" + p.Slug
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	NavOrder    int    `yaml:"nav_order"`
}

// Library holds every page, rendered once at load time.
type Library struct {
	pages map[string]*Page
	nav   []*Page
}

// Load renders the pages embedded in the binary.
func Load() (*Library, error) {
	pagesFS, err := fs.Sub(embedded, "pages")
	if err != nil {
		return nil, err
	}
	return LoadFS(pagesFS)
}

// LoadFS renders every *.md file at the root of fsys.
func LoadFS(fsys fs.FS) (*Library, error) {
	files, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	lib := &Library{pages: make(map[string]*Page, len(files))}
	engine := newMarkdownEngine()

	for _, name := range files {
		source, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read page %s: %w", name, err)
		}

		page, err := renderPage(engine, strings.TrimSuffix(path.Base(name), ".md"), source)
		if err != nil {
			return nil, fmt.Errorf("render page %s: %w", name, err)
		}

		if _, dup := lib.pages[page.Slug]; dup {
			return nil, fmt.Errorf("duplicate page slug %q", page.Slug)
		}

		lib.pages[page.Slug] = page
		if page.NavOrder > 0 {
			lib.nav = append(lib.nav, page)
		}
	}

	sort.SliceStable(lib.nav, func(i, j int) bool {
		return lib.nav[i].NavOrder < lib.nav[j].NavOrder
	})

	return lib, nil
}

func (l *Library) Get(slug string) (*Page, bool) {
	page, ok := l.pages[slug]
	return page, ok
}

// Nav lists the pages shown in navigation, ordered by nav_order.
func (l *Library) Nav() []*Page {
	out := make([]*Page, len(l.nav))
	copy(out, l.nav)
	return out
}

func (l *Library) Slugs() []string {
	slugs := make([]string, 0, len(l.pages))
	for slug := range l.pages {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

func renderPage(engine goldmark.Markdown, fileSlug string, source []byte) (*Page, error) {
	var meta frontMatter

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	var buf bytes.Buffer
	if err := engine.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}

	slug := strings.TrimSpace(meta.Slug)
	if slug == "" {
		slug = fileSlug
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = titleFromSlug(slug)
	}

	return &Page{
		Slug:        slug,
		Title:       title,
		Description: strings.TrimSpace(meta.Description),
		NavOrder:    meta.NavOrder,
		HTML:        sanitizer().Sanitize(buf.String()),
	}, nil
}

func newMarkdownEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

func titleFromSlug(slug string) string {
	words := strings.ReplaceAll(strings.ReplaceAll(slug, "-", " "), "_", " ")
	return cases.Title(language.English).String(words)
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// sanitizer keeps ordinary markup and heading anchors and drops scripts and
// event handlers.
func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		policy = p
	})
	return policy
}
