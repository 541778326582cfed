package handlers

import (
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/princebabou/wishCraft/internal/reveal"
	"github.com/princebabou/wishCraft/internal/web"
)

var templates = template.Must(template.ParseFS(web.FS, "templates/*.html"))

type ViewHandler struct{}

func NewViewHandler() *ViewHandler {
	return &ViewHandler{}
}

// Index renders the card creation form.
func (h *ViewHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index.html", map[string]any{
		"Title": "WishCraft",
	})
}

// Card renders the recipient's view. The card itself is fetched by the page
// from GET /card so that missing cards and store failures surface there.
func (h *ViewHandler) Card(w http.ResponseWriter, r *http.Request) {
	h.render(w, "card.html", map[string]any{
		"Title":     "Happy Birthday!",
		"Slug":      chi.URLParam(r, "slug"),
		"Threshold": reveal.BlowThreshold,
		"Candles":   make([]struct{}, reveal.Candles),
	})
}

func (h *ViewHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// EmbeddedFileServer serves fsys under route.
func EmbeddedFileServer(r chi.Router, route string, fsys fs.FS) {
	if route != "/" && route[len(route)-1] != '/' {
		route += "/"
	}
	r.Handle(route+"*", http.StripPrefix(route, http.FileServer(http.FS(fsys))))
}
