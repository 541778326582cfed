package app

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShareURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		headers map[string]string
		slug    string
		want    string
	}{
		{"configured base", "https://wish.example/", nil, "alice-30", "https://wish.example/card/alice-30"},
		{"request origin", "", nil, "alice-30", "http://example.com/card/alice-30"},
		{"forwarded", "", map[string]string{"X-Forwarded-Proto": "https", "X-Forwarded-Host": "cards.example"}, "bob", "https://cards.example/card/bob"},
		{"escaped", "https://wish.example", nil, "élodie-5", "https://wish.example/card/%C3%A9lodie-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &App{BaseURL: tt.baseURL}
			r := httptest.NewRequest("POST", "/card", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, a.ShareURL(r, tt.slug))
		})
	}
}
