package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func corsConfig() CORSConfig {
	return CORSConfig{
		Enabled:          true,
		AllowedOrigins:   []string{"https://app.brief.dev"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           600,
	}
}

func TestNewCORSMiddleware_ExposesRequestID(t *testing.T) {
	m := NewCORSMiddleware(CORSConfig{})
	assert.Equal(t, []string{"X-Request-ID"}, m.config.ExposedHeaders)

	m = NewCORSMiddleware(CORSConfig{ExposedHeaders: []string{"ETag"}})
	assert.Equal(t, []string{"ETag", "X-Request-ID"}, m.config.ExposedHeaders)

	m = NewCORSMiddleware(CORSConfig{ExposedHeaders: []string{"x-request-id"}})
	assert.Equal(t, []string{"x-request-id"}, m.config.ExposedHeaders)
}

func TestCORSMiddleware_AllowedOrigin(t *testing.T) {
	m := NewCORSMiddleware(corsConfig())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://app.brief.dev")
	w := httptest.NewRecorder()
	m.Handle(okHandler).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.brief.dev", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSMiddleware_DisallowedOrigin(t *testing.T) {
	m := NewCORSMiddleware(corsConfig())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	m.Handle(okHandler).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORSMiddleware_NoOrigin(t *testing.T) {
	m := NewCORSMiddleware(corsConfig())

	w := httptest.NewRecorder()
	m.Handle(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	m := NewCORSMiddleware(corsConfig())

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	r := httptest.NewRequest(http.MethodOptions, "/health", nil)
	r.Header.Set("Origin", "https://app.brief.dev")
	r.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	m.Handle(next).ServeHTTP(w, r)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, X-Request-ID", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORSMiddleware_PlainOptionsReachesHandler(t *testing.T) {
	m := NewCORSMiddleware(corsConfig())

	r := httptest.NewRequest(http.MethodOptions, "/", nil)
	r.Header.Set("Origin", "https://app.brief.dev")
	w := httptest.NewRecorder()
	m.Handle(okHandler).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddleware_Wildcard(t *testing.T) {
	m := NewCORSMiddleware(CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://anywhere.example")
	w := httptest.NewRecorder()
	m.Handle(okHandler).ServeHTTP(w, r)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSMiddleware_Disabled(t *testing.T) {
	cfg := corsConfig()
	cfg.Enabled = false
	m := NewCORSMiddleware(cfg)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://app.brief.dev")
	w := httptest.NewRecorder()
	m.Handle(okHandler).ServeHTTP(w, r)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Vary"))
}
