// Package server exposes the capture controller over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/go-scripts/teamscribe/internal/controller"
	"github.com/go-scripts/teamscribe/internal/history"
	"github.com/go-scripts/teamscribe/pkg/capture"
)

// Controller is what the server drives.
type Controller interface {
	Extract(ctx context.Context) (capture.Report, error)
	Export(ctx context.Context, req controller.ExportRequest) (controller.ExportResult, error)
	Stop() bool
	Status() capture.Status
}

// ExportLog lists past exports.
type ExportLog interface {
	RecentExports(ctx context.Context, limit int) ([]history.Export, error)
}

// Server is the HTTP control API.
type Server struct {
	router  chi.Router
	ctrl    Controller
	exports ExportLog
	log     *log.Logger
}

// New creates the server. exports may be nil.
func New(ctrl Controller, exports ExportLog, logger *log.Logger) *Server {
	s := &Server{ctrl: ctrl, exports: exports, log: logger}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Post("/stop", s.handleStop)
		r.Get("/status", s.handleStatus)
		r.Post("/export", s.handleExport)
		r.Get("/exports", s.handleExports)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleExtract runs a capture and answers with the transcript. A stop
// request makes it answer early with what was captured.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	report, err := s.ctrl.Extract(r.Context())
	if err != nil {
		s.extractError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Result)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusAccepted, map[string]bool{"stopping": s.ctrl.Stop()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req controller.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.ctrl.Export(r.Context(), req)
	if err != nil {
		s.extractError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExports(w http.ResponseWriter, r *http.Request) {
	if s.exports == nil {
		jsonError(w, "export history is disabled", http.StatusNotFound)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	exports, err := s.exports.RecentExports(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list exports: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if exports == nil {
		exports = []history.Export{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": exports})
}

// extractError answers a failed capture with an error and an empty entry
// list, the shape clients expect from a failed extract.
func (s *Server) extractError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, capture.ErrAlreadyInProgress):
		code = http.StatusConflict
	case errors.Is(err, controller.ErrPageMismatch), errors.Is(err, controller.ErrNoEntriesFound):
		code = http.StatusUnprocessableEntity
	default:
		s.log.Error("capture request failed", "err", err)
	}
	writeJSON(w, code, map[string]any{"error": err.Error(), "entries": []any{}})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
