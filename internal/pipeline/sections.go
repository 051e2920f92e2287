package pipeline

import (
	"sort"
	"strings"

	"pga/internal"
	"pga/internal/util"
)

const (
	headerUnit      = "IDENTIFICAÇÃO DA UNIDADE"
	headerScenario  = "ANÁLISE DO CENÁRIO"
	headerProblems  = "APONTAMENTO DE SITUAÇÕES-PROBLEMA"
	labelUnit       = "Unidade"
	labelDirector   = "Diretor(a)"
	problemCategory = "cat"
)

// ExtractUnit reads the unit identification block. The printed unit name is
// ignored: name is always the resolved institution name. Without the block
// the code is derived from name.
func ExtractUnit(page internal.Page, name string) (internal.UnitIdentification, bool) {
	table := FindTableByHeader(page, headerUnit)
	if table == nil {
		return internal.UnitIdentification{Code: util.UnitCode(name), Name: name}, false
	}

	raw := ValueFromTable(table, labelUnit)
	code, _, _ := strings.Cut(raw, " ")

	return internal.UnitIdentification{
		Code:     code,
		Name:     name,
		Director: ValueFromTable(table, labelDirector),
	}, true
}

func ExtractScenario(page internal.Page) string {
	return MultilineValue(FindTableByHeader(page, headerScenario), headerScenario, headerProblems)
}

// ExtractProblems collects the category-tagged cells of the problem table,
// deduplicated and sorted.
func ExtractProblems(page internal.Page) []string {
	out := []string{}
	table := FindTableByHeader(page, headerProblems)
	if len(table) < 2 {
		return out
	}

	seen := map[string]struct{}{}
	for _, row := range table[1:] {
		for _, cell := range row {
			if !strings.Contains(cell, problemCategory) {
				continue
			}
			statement := util.CollapseNewlines(cell)
			if _, exists := seen[statement]; exists {
				continue
			}
			seen[statement] = struct{}{}
			out = append(out, statement)
		}
	}

	sort.Strings(out)
	return out
}
