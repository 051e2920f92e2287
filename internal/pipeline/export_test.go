package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestExportDocumentToXLSX(t *testing.T) {
	doc, err := NewNormalizer(testRegistry, zap.NewNop()).Normalize(samplePages(), NormalizeRequest{
		FilePath:        "pga.pdf",
		InstitutionName: "Fatec Votorantim",
		Year:            2025,
	})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out", "pga.xlsx")
	require.NoError(t, ExportDocumentToXLSX(*doc, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Resumo", "Projetos", "Equipe", "Aquisicoes", "Problemas"}, f.GetSheetList())

	summary, err := f.GetRows("Resumo")
	require.NoError(t, err)
	assert.Equal(t, []string{"instituicao_nome", "Fatec Votorantim"}, summary[3])

	projects, err := f.GetRows("Projetos")
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "12", projects[1][0])
	assert.Equal(t, "Laboratório de redes", projects[1][1])

	team, err := f.GetRows("Equipe")
	require.NoError(t, err)
	require.Len(t, team, 3)
	assert.Equal(t, []string{"12", "Responsável", "João Souza", "5", "HAE"}, team[1])

	acquisitions, err := f.GetRows("Aquisicoes")
	require.NoError(t, err)
	assert.Len(t, acquisitions, 4)

	problems, err := f.GetRows("Problemas")
	require.NoError(t, err)
	assert.Len(t, problems, 3)
}
