package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pga/internal"
	"pga/internal/config"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "pga.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func storedDoc(id, institution string, year int, unitName string) StoredDocument {
	return StoredDocument{
		ID: id,
		NormalizedDocument: internal.NormalizedDocument{
			ReferenceYear:   year,
			DocumentVersion: internal.DocumentVersion,
			InstitutionName: institution,
			Unit:            internal.UnitIdentification{Name: unitName},
			Projects:        []internal.ProjectAction{},
		},
	}
}

func TestSQLiteInsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	doc := storedDoc("", "Fatec Votorantim", 2025, "Fatec Votorantim")
	doc.OriginalPDF = "JVBERi0xLjQ="
	id, err := s.InsertOrReplace(ctx, doc)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Fatec Votorantim", got.InstitutionName)
	assert.Equal(t, 2025, got.ReferenceYear)
	assert.Equal(t, "JVBERi0xLjQ=", got.OriginalPDF)
}

func TestSQLiteReplaceKeepsSingleRow(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.InsertOrReplace(ctx, storedDoc("a", "Fatec A", 2024, ""))
	require.NoError(t, err)
	_, err = s.InsertOrReplace(ctx, storedDoc("a", "Fatec A", 2025, "Fatec A"))
	require.NoError(t, err)

	all, err := s.Find(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2025, all[0].ReferenceYear)
}

func TestSQLiteGetMissing(t *testing.T) {
	_, err := openTestStore(t).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteFind(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, d := range []StoredDocument{
		storedDoc("1", "Fatec A", 2024, "Fatec A"),
		storedDoc("2", "Fatec A", 2025, ""),
		storedDoc("3", "Fatec B", 2025, "  "),
	} {
		_, err := s.InsertOrReplace(ctx, d)
		require.NoError(t, err)
	}

	ids := func(docs []StoredDocument) []string {
		var out []string
		for _, d := range docs {
			out = append(out, d.ID)
		}
		return out
	}

	docs, err := s.Find(ctx, Filter{InstitutionName: "Fatec A"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, ids(docs))

	docs, err = s.Find(ctx, Filter{Year: 2025})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2", "3"}, ids(docs))

	docs, err = s.Find(ctx, Filter{MissingUnitName: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2", "3"}, ids(docs))

	docs, err = s.Find(ctx, Filter{InstitutionName: "Fatec C"})
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestSQLiteUpdate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.InsertOrReplace(ctx, storedDoc("x", "Fatec A", 2025, ""))
	require.NoError(t, err)

	err = s.Update(ctx, "x", func(d *StoredDocument) error {
		d.Unit.Name = "Fatec A"
		d.ID = "ignored"
		return nil
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "Fatec A", got.Unit.Name)

	missing, err := s.Find(ctx, Filter{MissingUnitName: true})
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestSQLiteUpdateAborts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, err := s.InsertOrReplace(ctx, storedDoc("x", "Fatec A", 2025, ""))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Update(ctx, "x", func(d *StoredDocument) error {
		d.InstitutionName = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "Fatec A", got.InstitutionName)

	err = s.Update(ctx, "missing", func(*StoredDocument) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenFallsBackToSQLite(t *testing.T) {
	cfg := config.Config{DBPath: filepath.Join(t.TempDir(), "pga.db"), Collection: "projetos"}
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &SQLiteStore{}, s)
}
