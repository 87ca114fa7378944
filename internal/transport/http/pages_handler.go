package http

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gopkg.in/yaml.v2"

	apierrors "github.com/IsnaAyustin/final-project-ds/internal/errors"
)

//go:embed content/pages.yaml
var pagesYAML []byte

// Link is an outbound link on a static page
type Link struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

// Section is a block of a static page
type Section struct {
	Heading string   `yaml:"heading" json:"heading"`
	Body    string   `yaml:"body" json:"body,omitempty"`
	Items   []string `yaml:"items" json:"items,omitempty"`
}

// Page is one of the About, Project and Contact pages
type Page struct {
	Slug     string    `yaml:"slug" json:"slug"`
	Title    string    `yaml:"title" json:"title"`
	Summary  string    `yaml:"summary" json:"summary,omitempty"`
	Sections []Section `yaml:"sections" json:"sections,omitempty"`
	Links    []Link    `yaml:"links" json:"links,omitempty"`
}

// PageSummary is the list entry of GET /api/pages
type PageSummary struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
}

// ParsePages decodes a pages document and rejects duplicate or empty slugs
func ParsePages(data []byte) ([]Page, error) {
	var doc struct {
		Pages []Page `yaml:"pages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse pages: %w", err)
	}
	seen := make(map[string]bool, len(doc.Pages))
	for _, p := range doc.Pages {
		if p.Slug == "" {
			return nil, fmt.Errorf("parse pages: page %q has no slug", p.Title)
		}
		if seen[p.Slug] {
			return nil, fmt.Errorf("parse pages: duplicate slug %q", p.Slug)
		}
		seen[p.Slug] = true
	}
	return doc.Pages, nil
}

// PagesHandler serves the static content pages
type PagesHandler struct {
	pages        []Page
	bySlug       map[string]int
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPagesHandler creates a pages handler over the embedded content
func NewPagesHandler(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*PagesHandler, error) {
	pages, err := ParsePages(pagesYAML)
	if err != nil {
		return nil, err
	}
	return NewPagesHandlerWithPages(pages, logger, errorHandler), nil
}

// NewPagesHandlerWithPages creates a pages handler over pages
func NewPagesHandlerWithPages(pages []Page, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PagesHandler {
	bySlug := make(map[string]int, len(pages))
	for i, p := range pages {
		bySlug[p.Slug] = i
	}
	return &PagesHandler{
		pages:        pages,
		bySlug:       bySlug,
		logger:       logger.With(slog.String("handler", "pages")),
		errorHandler: errorHandler,
	}
}

// Routes returns the pages routes
func (h *PagesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.ListPages)
	r.Get("/{slug}", h.GetPage)
	return r
}

// ListPages handles GET /api/pages
func (h *PagesHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	out := make([]PageSummary, 0, len(h.pages))
	for _, p := range h.pages {
		out = append(out, PageSummary{Slug: p.Slug, Title: p.Title, Summary: p.Summary})
	}
	render.JSON(w, r, out)
}

// GetPage handles GET /api/pages/{slug}
func (h *PagesHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	i, ok := h.bySlug[slug]
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("page "+slug))
		return
	}
	render.JSON(w, r, h.pages[i])
}
