package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/henkan/internal/convert"
	"github.com/hyperjump/henkan/internal/extract"
	"github.com/hyperjump/henkan/internal/models"
	"github.com/hyperjump/henkan/internal/session"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing or oversized file upload")
		return
	}
	defer file.Close()

	s.logger.Debug("upload request",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)
	up, err := s.service.Ingest(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			s.respondError(w, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		s.logger.Error("ingest failed", zap.String("filename", header.Filename), zap.Error(err))
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, up)
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	up, err := s.sessions.Get(id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "upload not found")
		return
	}
	s.respondJSON(w, http.StatusOK, up)
}

func (s *Server) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete upload request", zap.String("id", id))
	if err := s.service.Discard(id); err != nil {
		s.respondError(w, http.StatusNotFound, "upload not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// pathParam returns a URL parameter with percent-encoding decoded. chi
// matches routes on the escaped path, so a sheet named "Order Details"
// arrives as "Order%20Details".
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

func (s *Server) handleSheetPreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sheet := pathParam(r, "sheet")
	rows, _ := strconv.Atoi(r.URL.Query().Get("rows"))

	table, err := s.service.SheetPreview(r.Context(), id, sheet, rows)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, table)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req models.ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("convert request",
		zap.String("id", id),
		zap.Strings("sheets", req.Sheets),
		zap.String("database_name", req.DatabaseName),
	)
	result, err := s.service.Convert(r.Context(), id, &req)
	if err != nil {
		s.logger.Error("conversion failed", zap.String("id", id), zap.Error(err))
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleTablePreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	table := pathParam(r, "table")
	rows, _ := strconv.Atoi(r.URL.Query().Get("rows"))

	preview, err := s.service.TablePreview(r.Context(), id, table, rows)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, preview)
}

func (s *Server) handleDownloadDatabase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	path, name, err := s.service.DatabaseFile(id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.serveAttachment(w, r, path, name, "application/x-sqlite3")
}

func (s *Server) handleDownloadExcel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	path, name, err := s.service.ExcelFile(id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if filepath.Ext(name) == ".xls" {
		contentType = "application/vnd.ms-excel"
	}
	s.serveAttachment(w, r, path, name, contentType)
}

func (s *Server) serveAttachment(w http.ResponseWriter, r *http.Request, path, name, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"sessions": s.sessions.Count(),
	}
	if diskBytes, err := session.DiskUsageBytes(s.workDir); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// respondServiceError maps service sentinel errors to HTTP statuses.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "upload not found")
	case errors.Is(err, convert.ErrSheetNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, convert.ErrNotConverted):
		s.respondError(w, http.StatusConflict, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
