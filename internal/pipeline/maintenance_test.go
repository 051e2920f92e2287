package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"pga/internal"
	"pga/internal/storage"
)

func TestBackfillUnitNames(t *testing.T) {
	ctx := context.Background()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "pga.db"))
	require.NoError(t, err)
	defer store.Close()

	docs := []storage.StoredDocument{
		{ID: "named", NormalizedDocument: internal.NormalizedDocument{
			InstitutionName: "Fatec A",
			Unit:            internal.UnitIdentification{Code: "1", Name: "Fatec A"},
		}},
		{ID: "unnamed", NormalizedDocument: internal.NormalizedDocument{InstitutionName: "Fatec São José"}},
		{ID: "orphan", NormalizedDocument: internal.NormalizedDocument{}},
	}
	for _, d := range docs {
		_, err := store.InsertOrReplace(ctx, d)
		require.NoError(t, err)
	}

	core, logs := observer.New(zap.WarnLevel)
	updated, err := BackfillUnitNames(ctx, store, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, 1, logs.FilterMessage("document has no institution name, skipped").Len())

	got, err := store.Get(ctx, "unnamed")
	require.NoError(t, err)
	assert.Equal(t, internal.UnitIdentification{Code: "fatec-sao-jose", Name: "Fatec São José"}, got.Unit)

	got, err = store.Get(ctx, "named")
	require.NoError(t, err)
	assert.Equal(t, "1", got.Unit.Code)
}

func TestNewTemplateDocument(t *testing.T) {
	doc := NewTemplateDocument(time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC))

	assert.Equal(t, 2026, doc.ReferenceYear)
	assert.Equal(t, "V04", doc.DocumentVersion)
	assert.Equal(t, "2026-05-04T08:00:00.000000", doc.Metadata.ExtractionTimestamp)
	require.Len(t, doc.Projects, 1)
	assert.Equal(t, "31/12/2026", doc.Projects[0].Period.EndDate)
	require.Len(t, doc.Projects[0].Stages, 1)
	assert.Equal(t, "31/03/2026", doc.Projects[0].Stages[0].End)
	require.Len(t, doc.Acquisitions, 1)
}
