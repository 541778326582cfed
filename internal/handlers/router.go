package handlers

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/princebabou/wishCraft/internal/app"
	"github.com/princebabou/wishCraft/internal/middleware"
	"github.com/princebabou/wishCraft/internal/web"
)

// NewRouter wires every route served by the application.
func NewRouter(a *app.App) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(a.Metrics))
	r.Use(chimw.Recoverer)

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		panic(err)
	}
	EmbeddedFileServer(r, "/static", static)

	cards := NewCardHandler(a)
	mountCardAPI := func(r chi.Router) {
		r.Post("/card", cards.CreateCard)
		r.Get("/card", cards.GetCard)
	}
	mountCardAPI(r)
	r.Route("/api", mountCardAPI)

	views := NewViewHandler()
	r.Get("/", views.Index)
	r.Get("/card/{slug}", views.Card)

	r.Get("/healthz", NewHealthHandler(a).Healthz)
	if a.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	}

	return r
}
