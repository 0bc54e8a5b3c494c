package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewServer(t *testing.T) {
	server := NewServer(":8000", slog.Default())

	assert.Equal(t, ":8000", server.Addr())
	assert.NotNil(t, server.Router())
}

func TestServer_NotFound(t *testing.T) {
	server := NewServer(":0", slog.Default())

	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_RecoversFromPanic(t *testing.T) {
	server := NewServer(":0", slog.Default())
	server.Router().Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestServer_Shutdown(t *testing.T) {
	server := NewServer(":0", slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, server.Shutdown(ctx))
}
