package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princebabou/wishCraft/internal/reveal"
)

func TestIndexPage(t *testing.T) {
	h := NewRouter(newTestApp(t))

	rr := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), `id="create-form"`)
	assert.Contains(t, rr.Body.String(), `/static/create.js`)
}

func TestCardPage(t *testing.T) {
	h := NewRouter(newTestApp(t))

	rr := do(t, h, http.MethodGet, "/card/alice-30", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `data-slug="alice-30"`)
	assert.Contains(t, body, `data-threshold="100"`)
	assert.Equal(t, reveal.Candles, strings.Count(body, `class="candle"`))
	assert.Contains(t, body, `/static/reveal.js`)
}

func TestCardPage_EscapesSlug(t *testing.T) {
	h := NewRouter(newTestApp(t))

	rr := do(t, h, http.MethodGet, `/card/%22%3E%3Cscript%3E`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"><script>`)
}

func TestStaticAssets(t *testing.T) {
	h := NewRouter(newTestApp(t))

	for _, path := range []string{"/static/reveal.js", "/static/create.js", "/static/style.css"} {
		rr := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}
