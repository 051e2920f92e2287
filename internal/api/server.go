package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pga/internal/logging"
	"pga/internal/pipeline"
	"pga/internal/storage"
)

type Server struct {
	store     storage.Store
	processor *pipeline.ProcessingService
	logger    *zap.Logger
	maxUpload int64
	now       func() time.Time
}

func NewServer(store storage.Store, processor *pipeline.ProcessingService, logger *zap.Logger, maxUploadMB int) *Server {
	if maxUploadMB <= 0 {
		maxUploadMB = 32
	}
	return &Server{
		store:     store,
		processor: processor,
		logger:    logging.OrNop(logger),
		maxUpload: int64(maxUploadMB) << 20,
		now:       time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/api/health", s.handleHealth)
	r.Route("/api/documents", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/process", s.handleProcess)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleSave)
		r.Get("/{id}/xlsx", s.handleXLSX)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/documents?institution=&year=
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	filter := storage.Filter{InstitutionName: strings.TrimSpace(r.URL.Query().Get("institution"))}
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		filter.Year = year
	}

	docs, err := s.store.Find(r.Context(), filter)
	if err != nil {
		s.internalError(w, "list documents", err)
		return
	}
	for i := range docs {
		docs[i].OriginalPDF = ""
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// PUT /api/documents/{id} stores a manually edited document. The source PDF
// is kept when the body does not carry one.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var doc storage.StoredDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	doc.ID = id

	existing, err := s.store.Get(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		s.internalError(w, "load document", err)
		return
	case doc.OriginalPDF == "":
		doc.OriginalPDF = existing.OriginalPDF
	}

	if _, err := s.store.InsertOrReplace(r.Context(), doc); err != nil {
		s.internalError(w, "save document", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// POST /api/documents/process, multipart with file, institution and year.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read file")
		return
	}

	year := s.now().Year()
	if raw := r.FormValue("year"); raw != "" {
		if year, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
	}

	res, err := s.processor.Process(r.Context(), pipeline.ProcessRequest{
		FileName:        header.Filename,
		Content:         content,
		InstitutionName: r.FormValue("institution"),
		Year:            year,
	})
	switch {
	case errors.Is(err, pipeline.ErrUnreadablePDF):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, pipeline.ErrNormalizationFailed):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.internalError(w, "process document", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       res.ID,
		"document": res.Document,
	})
}

func (s *Server) handleXLSX(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="pga-%s.xlsx"`, doc.ID))
	if err := pipeline.WriteDocumentXLSX(doc.NormalizedDocument, w); err != nil {
		s.logger.Error("write xlsx", zap.String("id", doc.ID), zap.Error(err))
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (storage.StoredDocument, bool) {
	id := chi.URLParam(r, "id")
	doc, err := s.store.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return storage.StoredDocument{}, false
	}
	if err != nil {
		s.internalError(w, "load document", err)
		return storage.StoredDocument{}, false
	}
	return doc, true
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
