// Package httpapi exposes a read-only diagnostics view of a Locator over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/GoCodeAlone/locator"
)

type options struct {
	metrics http.Handler
	logger  locator.Logger
}

// Option configures the router.
type Option func(*options)

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(o *options) {
		o.metrics = h
	}
}

// WithLogger logs one line per request.
func WithLogger(logger locator.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// ServicesResponse is the body of GET /services.
type ServicesResponse struct {
	Services []string `json:"services"`
	Count    int      `json:"count"`
}

// ServiceResponse is the body of GET /services/{key}.
type ServiceResponse struct {
	Key        string `json:"key"`
	Registered bool   `json:"registered"`
}

// NewRouter builds the diagnostics routes for l:
//
//	GET /healthz          liveness probe
//	GET /services         registered keys in insertion order
//	GET /services/{key}   whether key is registered (404 when not)
//	GET /metrics          only with WithMetricsHandler
func NewRouter(l *locator.Locator, opts ...Option) chi.Router {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if o.logger != nil {
		r.Use(requestLogger(o.logger))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/services", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			names := l.Names()
			writeJSON(w, http.StatusOK, ServicesResponse{Services: names, Count: len(names)})
		})
		// keys derived from pointer types start with '*' and contain '/', so
		// the key is taken from the rest of the path
		r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
			key := chi.URLParam(req, "*")
			resp := ServiceResponse{Key: key, Registered: l.Has(key)}
			status := http.StatusOK
			if !resp.Registered {
				status = http.StatusNotFound
			}
			writeJSON(w, status, resp)
		})
	})

	if o.metrics != nil {
		r.Handle("/metrics", o.metrics)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func requestLogger(logger locator.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
		})
	}
}
