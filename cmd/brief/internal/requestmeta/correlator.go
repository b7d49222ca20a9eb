package requestmeta

import (
	"net/http"
	"time"

	"github.com/studybrief/brief/cmd/brief/internal/constants"
)

// DefaultMaxLength is the longest inbound id accepted verbatim.
const DefaultMaxLength = 128

// Options configures a Correlator. Zero values select the defaults.
type Options struct {
	// Header is read on the request and written on the response.
	Header string

	// Generator creates ids for requests without an acceptable inbound one.
	Generator IDGenerator

	// MaxLength bounds inbound ids; longer values are replaced.
	MaxLength int
}

// Correlator assigns correlation ids to requests.
type Correlator struct {
	header    string
	generate  IDGenerator
	maxLength int
}

// New creates a Correlator.
func New(opts Options) *Correlator {
	if opts.Header == "" {
		opts.Header = constants.HeaderRequestID
	}
	if opts.Generator == nil {
		opts.Generator = NewUUID
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}

	return &Correlator{
		header:    http.CanonicalHeaderKey(opts.Header),
		generate:  opts.Generator,
		maxLength: opts.MaxLength,
	}
}

// Header returns the canonical header name the correlator reads and writes.
func (c *Correlator) Header() string {
	return c.header
}

// Begin attaches a RequestContext to r and echoes its correlation id on w.
// An acceptable inbound id is propagated unchanged; otherwise a new one is
// generated. If r already carries a RequestContext it is kept.
// Begin performs no I/O, never reads the body and never fails.
func (c *Correlator) Begin(w http.ResponseWriter, r *http.Request) *http.Request {
	if rc, ok := FromContext(r.Context()); ok {
		w.Header().Set(c.header, rc.CorrelationID)
		return r
	}

	id := r.Header.Get(c.header)
	if !c.acceptable(id) {
		id = c.generate()
	}

	rc := &RequestContext{
		CorrelationID: id,
		StartTime:     time.Now(),
	}

	// Set before the handler runs so the id reaches the caller however the
	// request ends.
	w.Header().Set(c.header, id)

	return r.WithContext(WithRequestContext(r.Context(), rc))
}

// Middleware runs Begin ahead of next. It should be the outermost middleware.
func (c *Correlator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, c.Begin(w, r))
	})
}

// acceptable reports whether an inbound id can be used verbatim: non-empty,
// bounded in length and made only of printable ASCII, so it cannot smuggle
// control characters into logs or response headers.
func (c *Correlator) acceptable(id string) bool {
	if id == "" || len(id) > c.maxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x20 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

var defaultCorrelator = New(Options{})

// Begin runs the default correlator (X-Request-ID, UUID ids).
func Begin(w http.ResponseWriter, r *http.Request) *http.Request {
	return defaultCorrelator.Begin(w, r)
}

// Middleware wraps next with the default correlator.
func Middleware(next http.Handler) http.Handler {
	return defaultCorrelator.Middleware(next)
}
