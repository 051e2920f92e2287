package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pga/internal"
)

func TestValueFromTable(t *testing.T) {
	table := internal.Table{
		{"Campo A", "Valor A"},
		{"Campo B", "", "  Valor B  "},
		{"Campo C", "Valor C"},
	}

	assert.Equal(t, "Valor A", ValueFromTable(table, "Campo A"))
	assert.Equal(t, "Valor B", ValueFromTable(table, "Campo B"))
	assert.Equal(t, "", ValueFromTable(table, "Campo X"))
	assert.Equal(t, "", ValueFromTable(nil, "Campo A"))
}

func TestValueFromTableSkipsRowsWithoutValue(t *testing.T) {
	table := internal.Table{
		{"Unidade", ""},
		{},
		{"", "solto"},
		{"Unidade:", "123 Fatec"},
	}
	assert.Equal(t, "123 Fatec", ValueFromTable(table, "Unidade"))
}

func TestFindTableByHeader(t *testing.T) {
	page := internal.Page{Tables: []internal.Table{
		{},
		{{}},
		{{"ANÁLISE DO CENÁRIO", ""}},
		{{"1. IDENTIFICAÇÃO DA UNIDADE"}, {"Unidade", "001"}},
	}}

	table := FindTableByHeader(page, "IDENTIFICAÇÃO DA UNIDADE")
	assert.Len(t, table, 2)
	assert.Nil(t, FindTableByHeader(page, "Anexo"))
}

func TestMultilineValue(t *testing.T) {
	table := internal.Table{
		{"Start", "Inline"},
		{"Other", "L2"},
		{"Stop", "End"},
	}
	assert.Equal(t, "Inline\nOther", MultilineValue(table, "Start", "Stop"))
}

func TestMultilineValueEmptyFirstCells(t *testing.T) {
	table := internal.Table{
		{"", "before start is ignored"},
		{"  Start Label", ""},
		{"", "Line 1"},
		{},
		{"", "", "Line 2 "},
		{"Stop Label", "ignored"},
		{"", "after stop is ignored"},
		{"Start Label", "not restarted"},
	}
	assert.Equal(t, "Line 1\nLine 2", MultilineValue(table, "Start Label", "Stop Label"))
}

func TestMultilineValueWithoutStop(t *testing.T) {
	table := internal.Table{
		{"Start", "a"},
		{"b"},
	}
	assert.Equal(t, "a\nb", MultilineValue(table, "Start", "Stop"))
	assert.Equal(t, "", MultilineValue(nil, "Start", "Stop"))
	assert.Equal(t, "", MultilineValue(table, "Missing", "Stop"))
}
