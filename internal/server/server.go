// Package server exposes the discovered device topology and stored setup
// profiles over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cwbudde/sodecl/internal/compute"
	"github.com/cwbudde/sodecl/internal/store"
)

// Server represents the HTTP server
type Server struct {
	addr     string
	topology []compute.PlatformInfo
	profiles store.Store
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	server   *http.Server
}

// NewServer creates a server answering from a fixed topology snapshot.
// profiles and registry may be nil; the matching routes then return 404.
func NewServer(addr string, topology []compute.PlatformInfo, profiles store.Store, registry *prometheus.Registry) *Server {
	s := &Server{
		addr:     addr,
		topology: topology,
		profiles: profiles,
		registry: registry,
	}
	if registry != nil {
		s.requests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sodecl",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		)
		registry.MustRegister(s.requests)
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)
	r.Use(s.corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/platforms", s.handlePlatforms)
		r.Get("/profiles", s.handleListProfiles)
		r.Get("/profiles/{id}", s.handleGetProfile)
		r.Get("/profiles/{id}/trace", s.handleGetTrace)
	})

	if s.registry != nil {
		r.Get("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP)
	}
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handlePlatforms handles GET /api/v1/platforms
func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	topology := s.topology
	if topology == nil {
		topology = []compute.PlatformInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"platforms": topology})
}

// handleListProfiles handles GET /api/v1/profiles
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeJSONError(w, http.StatusNotFound, "profile store not configured")
		return
	}
	infos, err := s.profiles.List()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleGetProfile handles GET /api/v1/profiles/{id}
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeJSONError(w, http.StatusNotFound, "profile store not configured")
		return
	}
	profile, err := s.profiles.Load(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, profileErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleGetTrace handles GET /api/v1/profiles/{id}/trace
func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeJSONError(w, http.StatusNotFound, "profile store not configured")
		return
	}
	entries, err := s.profiles.Trace(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, profileErrorStatus(err), err.Error())
		return
	}
	if entries == nil {
		entries = []store.TraceEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// profileErrorStatus maps store errors to HTTP status codes.
func profileErrorStatus(err error) int {
	var verr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
		"code":  status,
	})
}

// corsMiddleware adds CORS headers for the read-only API.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs requests and counts them by route pattern.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := routePattern(r)
		if s.requests != nil {
			s.requests.WithLabelValues(path, r.Method, strconv.Itoa(status)).Inc()
		}
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

// routePattern keeps metric cardinality bounded for /profiles/{id}.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
