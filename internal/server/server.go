// Package server provides the HTTP API and browser UI for henkan.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/henkan/internal/config"
	"github.com/hyperjump/henkan/internal/convert"
	"github.com/hyperjump/henkan/internal/session"
)

// Server is the HTTP server for the henkan API and UI.
type Server struct {
	service  *convert.Service
	sessions *session.Store
	config   *config.ServerConfig
	workDir  string
	maxBytes int64
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. maxUploadMB bounds
// multipart upload size; workDir is reported in /api/v1/status disk usage.
func NewServer(
	service *convert.Service,
	sessions *session.Store,
	cfg *config.ServerConfig,
	workDir string,
	maxUploadMB int64,
	logger *zap.Logger,
) *Server {
	return &Server{
		service:  service,
		sessions: sessions,
		config:   cfg,
		workDir:  workDir,
		maxBytes: maxUploadMB << 20,
		logger:   logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/api/v1/status", s.handleStatus)

	r.Post("/api/v1/uploads", s.handleUpload)
	r.Get("/api/v1/uploads/{id}", s.handleGetUpload)
	r.Delete("/api/v1/uploads/{id}", s.handleDeleteUpload)
	r.Get("/api/v1/uploads/{id}/sheets/{sheet}/preview", s.handleSheetPreview)
	r.Post("/api/v1/uploads/{id}/convert", s.handleConvert)
	r.Get("/api/v1/uploads/{id}/tables/{table}/preview", s.handleTablePreview)
	r.Get("/api/v1/uploads/{id}/download/database", s.handleDownloadDatabase)
	r.Get("/api/v1/uploads/{id}/download/excel", s.handleDownloadExcel)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
