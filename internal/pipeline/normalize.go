package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"pga/internal"
	"pga/internal/logging"
)

const (
	UnknownInstitution = "Instituição Desconhecida"

	// Python-style isoformat keeps stored timestamps comparable with
	// documents created by the web editor.
	timestampLayout = "2006-01-02T15:04:05.000000"
)

var (
	ErrNormalizationFailed = errors.New("normalization failed")
	ErrNoPages             = errors.New("document has no pages")
)

type NormalizeRequest struct {
	FilePath        string
	InstitutionName string
	Year            int
}

// Normalizer turns tokenized pages into a NormalizedDocument. It holds no
// per-document state and may be shared between goroutines.
type Normalizer struct {
	registry []string
	logger   *zap.Logger
	now      func() time.Time
}

func NewNormalizer(registry []string, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		registry: append([]string(nil), registry...),
		logger:   logging.OrNop(logger),
		now:      time.Now,
	}
}

// Normalize runs every section extractor over pages. Any failure while
// assembling is logged and reported as ErrNormalizationFailed with a nil
// document; missing sections are not failures.
func (n *Normalizer) Normalize(pages []internal.Page, req NormalizeRequest) (doc *internal.NormalizedDocument, err error) {
	logger := n.logger.With(zap.String("file", filepath.Base(req.FilePath)))

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrNormalizationFailed, r)
			logger.Error("normalization failed", zap.Error(err), zap.Stack("stack"))
		}
	}()

	logger.Info("normalization started", zap.Int("pages", len(pages)))
	if len(pages) == 0 {
		err = fmt.Errorf("%w: %w", ErrNormalizationFailed, ErrNoPages)
		logger.Error("normalization failed", zap.Error(err), zap.Stack("stack"))
		return nil, err
	}

	institution := n.ResolveInstitution(pages, req.InstitutionName)
	firstPage := pages[0]

	unit, found := ExtractUnit(firstPage, institution)
	if !found {
		logger.Warn("unit identification table not found, deriving unit from institution name",
			zap.String("code", unit.Code))
	}

	scenario := ExtractScenario(firstPage)
	problems := ExtractProblems(firstPage)
	projects := ExtractProjects(pages, logger)
	acquisitions := ExtractAcquisitions(pages, logger)

	doc = &internal.NormalizedDocument{
		ReferenceYear:    req.Year,
		DocumentVersion:  internal.DocumentVersion,
		InstitutionName:  institution,
		Unit:             unit,
		ScenarioAnalysis: scenario,
		Metadata: internal.ExtractionMetadata{
			OriginalFilename:    filepath.Base(req.FilePath),
			ExtractionTimestamp: n.now().Format(timestampLayout),
		},
		ProblemStatements: problems,
		Projects:          projects,
		Acquisitions:      acquisitions,
	}

	logger.Info("normalization complete",
		zap.String("institution", institution),
		zap.Int("projects", len(projects)),
		zap.Int("acquisitions", len(acquisitions)),
	)
	return doc, nil
}

// ResolveInstitution applies the naming policy: a user-supplied name always
// wins; the name detected in the document is only used without one and is
// otherwise reported when it disagrees.
func (n *Normalizer) ResolveInstitution(pages []internal.Page, userSupplied string) string {
	userSupplied = strings.TrimSpace(userSupplied)
	detected, ok := DetectInstitution(pages, n.registry)
	if ok {
		n.logger.Info("institution detected in document text", zap.String("detected", detected))
	} else {
		n.logger.Warn("no known institution detected in document text")
	}

	switch {
	case userSupplied != "" && ok && !strings.EqualFold(userSupplied, detected):
		n.logger.Warn("institution name conflict, keeping user-supplied name",
			zap.String("user_supplied", userSupplied),
			zap.String("detected", detected),
		)
		return userSupplied
	case userSupplied != "":
		return userSupplied
	case ok:
		return detected
	default:
		n.logger.Error("institution name not supplied nor detected",
			zap.String("fallback", UnknownInstitution))
		return UnknownInstitution
	}
}
