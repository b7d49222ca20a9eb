package requestmeta

import (
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/studybrief/brief/cmd/brief/internal/constants"
)

// Property keys, fixed so every log line and telemetry event uses the same names.
const (
	KeyRequestID = constants.ContextKeyRequestID
	KeyIP        = "ip"
	KeyUserAgent = "ua"
	KeyPath      = "path"
	KeyMethod    = "method"
)

// Properties is the base structured-logging payload of a request.
// Missing optional values are empty strings, never absent.
type Properties struct {
	RequestID string
	IP        string
	UserAgent string
	Path      string
	Method    string
}

// Extract derives the base properties of r. It is a pure function of r's
// context, headers, URL and method: it never mutates r and never fails.
// RequestID is "" when r did not go through Begin.
func Extract(r *http.Request) Properties {
	p := Properties{
		RequestID: RequestID(r.Context()),
		IP:        ClientIP(r),
		UserAgent: r.Header.Get(constants.HeaderUserAgent),
		Method:    r.Method,
	}
	if r.URL != nil {
		p.Path = r.URL.Path
	}
	return p
}

// ClientIP prefers the first X-Forwarded-For entry over the transport peer
// address. The port is stripped from the peer address when present.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get(constants.HeaderForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Map returns the properties keyed by their fixed names.
func (p Properties) Map() map[string]string {
	return map[string]string{
		KeyRequestID: p.RequestID,
		KeyIP:        p.IP,
		KeyUserAgent: p.UserAgent,
		KeyPath:      p.Path,
		KeyMethod:    p.Method,
	}
}

// MarshalZerologObject lets a zerolog event embed the properties directly.
func (p Properties) MarshalZerologObject(e *zerolog.Event) {
	e.Str(KeyRequestID, p.RequestID).
		Str(KeyIP, p.IP).
		Str(KeyUserAgent, p.UserAgent).
		Str(KeyPath, p.Path).
		Str(KeyMethod, p.Method)
}
