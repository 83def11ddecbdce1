// Package server exposes the local HTTP API consumed by the UI.
package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/adeshpande/finbook/internal/bin"
	"github.com/adeshpande/finbook/internal/currency"
	"github.com/adeshpande/finbook/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wires the HTTP routes to the domain services.
type Server struct {
	db       *sql.DB
	settings *currency.SettingsService
	bin      *bin.Service
	router   chi.Router
}

// New creates the API server.
func New(db *sql.DB, settings *currency.SettingsService, binSvc *bin.Service) *Server {
	s := &Server{
		db:       db,
		settings: settings,
		bin:      binSvc,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/records/{kind}", func(r chi.Router) {
			r.Get("/", s.handleListRecords)
			r.Post("/", s.handleCreateRecord)
			r.Get("/{id}", s.handleGetRecord)
			r.Put("/{id}", s.handleUpdateRecord)
			r.Delete("/{id}", s.handleDeleteRecord)
			r.Get("/{id}/attachments", s.handleListAttachments)
			r.Post("/{id}/attachments", s.handleUploadAttachment)
		})

		r.Get("/attachments/{id}", s.handleDownloadAttachment)
		r.Patch("/attachments/{id}/name", s.handleRenameAttachment)
		r.Delete("/attachments/{id}", s.handleBinAttachment)

		r.Get("/bin", s.handleListBin)
		r.Post("/bin/restore", s.handleBulkRestore)
		r.Post("/bin/purge", s.handleBulkPurge)

		r.Get("/settings/currency", s.handleGetSettings)
		r.Put("/settings/currency", s.handleUpdateSettings)

		r.Get("/export", s.handleExport)
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestLogger logs each request with its status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		logger.Log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request handled")
	})
}
