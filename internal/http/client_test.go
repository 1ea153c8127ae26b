package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ydl-music", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/thumb.jpg":
			_, _ = w.Write([]byte("image-bytes"))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient()

	data, err := c.Get(context.Background(), srv.URL+"/thumb.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	_, err = c.Get(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")

	c.maxBytes = 10
	_, err = c.Get(context.Background(), srv.URL+"/big")
	assert.ErrorContains(t, err, "exceeds 10 bytes")
}
