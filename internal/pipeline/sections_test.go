package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pga/internal"
)

func TestDetectInstitution(t *testing.T) {
	registry := []string{"Fatec Votorantim", "Fatec Sorocaba"}

	name, ok := DetectInstitution(samplePages(), registry)
	assert.True(t, ok)
	assert.Equal(t, "Fatec Votorantim", name)

	_, ok = DetectInstitution(samplePages(), []string{"Fatec Itu"})
	assert.False(t, ok)
}

func TestDetectInstitutionOnlyFirstPages(t *testing.T) {
	pages := []internal.Page{{Text: "a"}, {Text: "b"}, {}, {Text: "Fatec Sorocaba"}}
	_, ok := DetectInstitution(pages, []string{"Fatec Sorocaba"})
	assert.False(t, ok)

	pages[2].Text = "rodapé: fatec sorocaba"
	name, ok := DetectInstitution(pages, []string{"Fatec Sorocaba"})
	assert.True(t, ok)
	assert.Equal(t, "Fatec Sorocaba", name)
}

func TestExtractUnit(t *testing.T) {
	unit, found := ExtractUnit(samplePages()[0], "Fatec Votorantim")
	assert.True(t, found)
	assert.Equal(t, internal.UnitIdentification{Code: "301", Name: "Fatec Votorantim", Director: "Maria Silva"}, unit)
}

func TestExtractUnitFallback(t *testing.T) {
	unit, found := ExtractUnit(internal.Page{}, "Fatec São Roque")
	assert.False(t, found)
	assert.Equal(t, internal.UnitIdentification{Code: "fatec-sao-roque", Name: "Fatec São Roque"}, unit)
}

func TestExtractScenario(t *testing.T) {
	assert.Equal(t, "A unidade cresceu.\nFaltam laboratórios.", ExtractScenario(samplePages()[0]))
	assert.Equal(t, "", ExtractScenario(internal.Page{}))
}

func TestExtractProblems(t *testing.T) {
	problems := ExtractProblems(samplePages()[0])
	assert.Equal(t, []string{"cat 1 - Infraestrutura insuficiente", "cat 2 - Evasão"}, problems)
	for _, p := range problems {
		assert.Contains(t, p, "cat")
	}

	assert.Empty(t, ExtractProblems(internal.Page{}))
	assert.NotNil(t, ExtractProblems(internal.Page{}))
}
