package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pga/internal"
)

func TestExtractProjects(t *testing.T) {
	projects := ExtractProjects(samplePages(), zap.NewNop())
	require.Len(t, projects, 2)

	first := projects[0]
	assert.Equal(t, "12", first.ActionCode)
	assert.Equal(t, "Laboratório de redes", first.Title)
	assert.Equal(t, "Situação-problema 1", first.PriorityOrigin)
	assert.Equal(t, "Montar laboratório\ncom 20 estações", first.What)
	assert.Equal(t, "Atender disciplinas", first.Why)
	require.NotNil(t, first.EstimatedCost)
	assert.InDelta(t, 12500.0, *first.EstimatedCost, 1e-9)
	assert.Equal(t, "CPS", first.FundingSource)
	assert.Equal(t, internal.ExecutionPeriod{StartDate: "01/02/2025", EndDate: "30/11/2025"}, first.Period)
	assert.Equal(t, []internal.TeamMember{
		{Role: internal.RoleResponsible, Name: "João Souza", WeeklyHours: 5, HourType: "HAE"},
		{Role: internal.RoleCollaborator, Name: "Ana Lima", WeeklyHours: 2, HourType: "RJI"},
	}, first.Team)

	second := projects[1]
	assert.Equal(t, "13", second.ActionCode)
	assert.Equal(t, "Semana de tecnologia", second.Title)
	assert.Nil(t, second.EstimatedCost)
	assert.True(t, second.Period.IsZero())
	assert.NotNil(t, second.Team)
	assert.Empty(t, second.Team)
	assert.NotNil(t, second.Stages)
	assert.Empty(t, second.Stages)
}

func TestExtractProjectsTitleWithoutCode(t *testing.T) {
	pages := []internal.Page{{Tables: []internal.Table{
		{{"AÇÃO/PROJETO (Tema)", "Projeto sem número"}},
	}}}
	projects := ExtractProjects(pages, zap.NewNop())
	require.Len(t, projects, 1)
	assert.Equal(t, "", projects[0].ActionCode)
	assert.Equal(t, "Projeto sem número", projects[0].Title)
}

func TestExtractTeamStopsAtPeriodRow(t *testing.T) {
	table := internal.Table{
		{"Colaborador(a):", "Antes do responsável"},
		{"Responsável:", "Paula", "", "", "", "", "10"},
		{"", "linha solta"},
		{"Colaborador(a):", "Rui", "", "", "", "", "", "", "HAE"},
		{"Período de execução:", "01/01/2025 a 01/06/2025"},
		{"Responsável:", "Reaberto"},
	}
	team := extractTeam(table)
	assert.Equal(t, []internal.TeamMember{
		{Role: internal.RoleResponsible, Name: "Paula", WeeklyHours: 10},
		{Role: internal.RoleCollaborator, Name: "Rui", HourType: "HAE"},
		{Role: internal.RoleResponsible, Name: "Reaberto"},
	}, team)
}
