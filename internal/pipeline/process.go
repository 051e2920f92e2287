package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pga/internal"
	"pga/internal/logging"
	"pga/internal/storage"
)

type ProcessingService struct {
	store      storage.Store
	normalizer *Normalizer
	logger     *zap.Logger
	newID      func() string
}

func NewProcessingService(store storage.Store, normalizer *Normalizer, logger *zap.Logger) *ProcessingService {
	return &ProcessingService{
		store:      store,
		normalizer: normalizer,
		logger:     logging.OrNop(logger),
		newID:      uuid.NewString,
	}
}

type ProcessRequest struct {
	FileName        string
	Content         []byte
	InstitutionName string
	Year            int
}

type ProcessResult struct {
	ID       string
	Document internal.NormalizedDocument
}

// Process tokenizes, normalizes and stores one PDF. Nothing is stored when
// normalization fails.
func (s *ProcessingService) Process(ctx context.Context, req ProcessRequest) (ProcessResult, error) {
	pages, err := ExtractPages(req.Content)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("tokenize %s: %w", req.FileName, err)
	}
	return s.ProcessPages(ctx, pages, req)
}

// ProcessPages is Process for input that was already tokenized. req.Content,
// when present, is kept as the document source.
func (s *ProcessingService) ProcessPages(ctx context.Context, pages []internal.Page, req ProcessRequest) (ProcessResult, error) {
	doc, err := s.normalizer.Normalize(pages, NormalizeRequest{
		FilePath:        req.FileName,
		InstitutionName: req.InstitutionName,
		Year:            req.Year,
	})
	if err != nil {
		return ProcessResult{}, err
	}

	stored := storage.StoredDocument{ID: s.newID(), NormalizedDocument: *doc}
	if len(req.Content) > 0 {
		stored.OriginalPDF = base64.StdEncoding.EncodeToString(req.Content)
	}

	id, err := s.store.InsertOrReplace(ctx, stored)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("store document: %w", err)
	}

	s.logger.Info("document stored",
		zap.String("id", id),
		zap.String("institution", doc.InstitutionName),
		zap.Int("year", doc.ReferenceYear),
	)
	return ProcessResult{ID: id, Document: *doc}, nil
}

func (s *ProcessingService) ProcessFile(ctx context.Context, path, institution string, year int) (ProcessResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.Process(ctx, ProcessRequest{
		FileName:        filepath.Base(path),
		Content:         content,
		InstitutionName: institution,
		Year:            year,
	})
}
