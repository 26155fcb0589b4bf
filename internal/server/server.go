// Package server exposes the dashboard over HTTP.
//
// Every request carries its own selection in the query string, so handlers
// share nothing but the read-only dataset behind the dashboard.Service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rewired-gh/vgdash/internal/config"
	"github.com/rewired-gh/vgdash/internal/dashboard"
	"github.com/rewired-gh/vgdash/internal/logger"
	"github.com/rewired-gh/vgdash/internal/metrics"
	"github.com/rewired-gh/vgdash/internal/render"
	"github.com/rewired-gh/vgdash/internal/storage"
)

// Server wires HTTP routes to the dashboard service.
type Server struct {
	svc      *dashboard.Service
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

// New creates a Server. m and gatherer may be nil; without a gatherer the
// /metrics route is not mounted.
func New(svc *dashboard.Service, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	return &Server{svc: svc, metrics: m, gatherer: gatherer}
}

// Handler returns the router with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	s.Register(r)
	return r
}

// Register mounts the dashboard endpoints on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.HandleIndex)
	r.Get("/charts", s.HandleCharts)
	r.Get("/healthz", s.HandleHealth)
	r.Route("/api", func(api chi.Router) {
		api.Get("/options", s.HandleOptions)
		api.Get("/panels", s.HandlePanels)
		api.Get("/panels/{id}", s.HandlePanel)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// HandleCharts handles GET /charts, the rendered chart page.
func (s *Server) HandleCharts(w http.ResponseWriter, r *http.Request) {
	page, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Write(w, page); err != nil {
		logger.Error("Failed to render charts: %v", err)
	}
}

// HandleOptions handles GET /api/options.
func (s *Server) HandleOptions(w http.ResponseWriter, r *http.Request) {
	choices, err := s.svc.Options(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, choices)
}

// HandlePanels handles GET /api/panels, every panel for the selection.
func (s *Server) HandlePanels(w http.ResponseWriter, r *http.Request) {
	page, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandlePanel handles GET /api/panels/{id}.
func (s *Server) HandlePanel(w http.ResponseWriter, r *http.Request) {
	req, err := s.request(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.svc.Panel(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleHealth handles GET /healthz. It reports unhealthy until the dataset
// has loaded.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ds, err := s.svc.Dataset(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": ds.Len()})
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) (*dashboard.Page, bool) {
	req, err := s.request(r)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	page, err := s.svc.Evaluate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return page, true
}

func (s *Server) request(r *http.Request) (dashboard.Request, error) {
	def, err := s.svc.DefaultSpec(r.Context())
	if err != nil {
		return dashboard.Request{}, err
	}
	return ParseRequest(r.URL.Query(), def)
}

// badRequest marks errors caused by the query string.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var br badRequest
	var le *storage.LoadError
	switch {
	case errors.As(err, &br):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "error_description": br.Error()})
	case errors.Is(err, dashboard.ErrUnknownPanel):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "error_description": err.Error()})
	case errors.As(err, &le):
		logger.Error("Dataset unavailable: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "dataset_unavailable", "error_description": le.Error()})
	default:
		logger.Error("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
	}
}

// Run serves handler on cfg.Addr until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg config.ServerConfig, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func statusText(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	return strconv.Itoa(code)
}

// observe logs and counts every request by its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		s.metrics.ObserveRequest(route, statusText(ww.Status()), elapsed)
		logger.Info("%s %s %d %v request_id=%s", r.Method, r.URL.Path, ww.Status(), elapsed, RequestIDFrom(r.Context()))
	})
}
