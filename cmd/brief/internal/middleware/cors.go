// Package middleware holds HTTP middleware shared by every route.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/studybrief/brief/cmd/brief/internal/constants"
)

// CORSConfig holds CORS middleware configuration
type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORSMiddleware handles Cross-Origin Resource Sharing (CORS)
type CORSMiddleware struct {
	config CORSConfig
}

// NewCORSMiddleware creates a new CORS middleware instance.
// The correlation id header is always exposed so browser clients can read it.
func NewCORSMiddleware(config CORSConfig) *CORSMiddleware {
	if !containsFold(config.ExposedHeaders, constants.HeaderRequestID) {
		config.ExposedHeaders = append(append([]string(nil), config.ExposedHeaders...), constants.HeaderRequestID)
	}
	return &CORSMiddleware{config: config}
}

// Handle adds CORS headers to HTTP responses and answers preflight requests.
func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Add("Vary", constants.HeaderOrigin)

		origin := r.Header.Get(constants.HeaderOrigin)
		if origin == "" || !m.isOriginAllowed(origin) {
			next.ServeHTTP(w, r)
			return
		}

		if m.isWildcard() {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}

		if m.config.AllowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		w.Header().Set("Access-Control-Expose-Headers", strings.Join(m.config.ExposedHeaders, ", "))

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if len(m.config.AllowedMethods) > 0 {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(m.config.AllowedMethods, ", "))
			}
			if len(m.config.AllowedHeaders) > 0 {
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(m.config.AllowedHeaders, ", "))
			}
			if m.config.MaxAge > 0 {
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(m.config.MaxAge))
			}

			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isOriginAllowed checks if an origin is in the allowed list
func (m *CORSMiddleware) isOriginAllowed(origin string) bool {
	for _, allowed := range m.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (m *CORSMiddleware) isWildcard() bool {
	return len(m.config.AllowedOrigins) == 1 && m.config.AllowedOrigins[0] == "*"
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
