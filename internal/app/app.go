package app

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/princebabou/wishCraft/internal/database"
	"github.com/princebabou/wishCraft/internal/metrics"
)

type App struct {
	Cards   database.CardStore
	Metrics *metrics.Metrics

	// BaseURL is the public origin used in share links. When empty the
	// origin of the incoming request is used.
	BaseURL string
}

// ShareURL returns the absolute link a recipient opens to view the card.
func (a *App) ShareURL(r *http.Request, slug string) string {
	base := strings.TrimRight(a.BaseURL, "/")
	if base == "" {
		base = requestOrigin(r)
	}
	return base + "/card/" + url.PathEscape(slug)
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}
