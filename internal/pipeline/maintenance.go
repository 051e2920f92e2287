package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"pga/internal"
	"pga/internal/logging"
	"pga/internal/storage"
	"pga/internal/util"
)

// BackfillUnitNames fills the unit identification of stored documents that
// have none from their institution name. It returns how many were updated.
func BackfillUnitNames(ctx context.Context, store storage.Store, logger *zap.Logger) (int, error) {
	logger = logging.OrNop(logger)

	docs, err := store.Find(ctx, storage.Filter{MissingUnitName: true})
	if err != nil {
		return 0, err
	}
	logger.Info("documents without unit name", zap.Int("count", len(docs)))

	updated := 0
	for _, doc := range docs {
		institution := strings.TrimSpace(doc.InstitutionName)
		if institution == "" {
			logger.Warn("document has no institution name, skipped", zap.String("id", doc.ID))
			continue
		}

		err := store.Update(ctx, doc.ID, func(d *storage.StoredDocument) error {
			d.Unit = internal.UnitIdentification{
				Code: util.UnitCode(institution),
				Name: institution,
			}
			return nil
		})
		if err != nil {
			return updated, err
		}
		logger.Info("unit name filled", zap.String("id", doc.ID), zap.String("name", institution))
		updated++
	}
	return updated, nil
}

// NewTemplateDocument returns the placeholder document used as a starting
// point for manual entry.
func NewTemplateDocument(now time.Time) internal.NormalizedDocument {
	return internal.NormalizedDocument{
		ReferenceYear:   now.Year(),
		DocumentVersion: internal.DocumentVersion,
		InstitutionName: "Nova Instituição",
		Unit: internal.UnitIdentification{
			Code:     "nova-instituicao",
			Name:     "Nova Instituição",
			Director: "Nome do Diretor",
		},
		ScenarioAnalysis: "Descrição do cenário...",
		Metadata: internal.ExtractionMetadata{
			OriginalFilename:    "documento_manual.json",
			ExtractionTimestamp: now.Format(timestampLayout),
		},
		ProblemStatements: []string{"Situação problema 1", "Situação problema 2"},
		Projects: []internal.ProjectAction{{
			ActionCode:     "01",
			Title:          "Título do Projeto",
			PriorityOrigin: "Prioridade 1",
			What:           "Descrição do que será feito...",
			Why:            "Justificativa...",
			EstimatedCost:  util.FloatPtr(1000),
			FundingSource:  "Fonte dos recursos",
			Period: internal.ExecutionPeriod{
				StartDate: "01/01/" + now.Format("2006"),
				EndDate:   "31/12/" + now.Format("2006"),
			},
			Team: []internal.TeamMember{{
				Role:        internal.RoleResponsible,
				Name:        "Nome do Responsável",
				WeeklyHours: 10,
				HourType:    "hora/aula",
			}},
			Stages: []internal.ProcessStage{{
				Description: "Etapa 1",
				Start:       "01/01/" + now.Format("2006"),
				End:         "31/03/" + now.Format("2006"),
			}},
		}},
		Acquisitions: []internal.AcquisitionItem{{
			ItemNumber:          1,
			ProjectReference:    "01",
			Description:         "Descrição do item",
			Quantity:            1,
			EstimatedTotalPrice: util.FloatPtr(500),
		}},
	}
}
