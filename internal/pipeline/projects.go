package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"pga/internal"
	"pga/internal/util"
)

const (
	headerProject = "AÇÃO/PROJETO (Tema)"

	labelPriority     = "Origem (prioridade):"
	labelWhat         = "O que será feito:"
	labelWhy          = "Por que será feito:"
	labelCost         = "Custo R$ (se houver):"
	labelFunding      = "Fonte(s) dos recursos:"
	labelResponsible  = "Responsável:"
	labelCollaborator = "Colaborador(a):"
	labelPeriod       = "Período de execução:"

	namePlaceholder = "<nome>"
	unassignedName  = "nn"
)

// Team rows have a fixed column layout in the report template.
const (
	teamNameColumn     = 1
	teamHoursColumn    = 6
	teamHourTypeColumn = 8
)

var (
	reFirstNumber = regexp.MustCompile(`[0-9]+`)
	reDate        = regexp.MustCompile(`[0-9]{2}/[0-9]{2}/[0-9]{4}`)
)

// ExtractProjects reads every action/project table of the document. A table
// that cannot be read is logged and skipped.
func ExtractProjects(pages []internal.Page, logger *zap.Logger) []internal.ProjectAction {
	out := []internal.ProjectAction{}
	for _, page := range pages {
		for i, table := range page.Tables {
			if !isProjectTable(table) {
				continue
			}
			project, err := extractProject(table)
			if err != nil {
				logger.Warn("project table skipped",
					zap.Int("page", page.Number),
					zap.Int("table", i),
					zap.Error(err),
				)
				continue
			}
			out = append(out, project)
		}
	}
	return out
}

func isProjectTable(table internal.Table) bool {
	if len(table) == 0 {
		return false
	}
	for _, cell := range table[0] {
		if strings.Contains(cell, headerProject) {
			return true
		}
	}
	return false
}

func extractProject(table internal.Table) (project internal.ProjectAction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read project table: %v", r)
		}
	}()

	titleLine := joinNonEmpty(table[0])
	code := reFirstNumber.FindString(titleLine)
	titlePrefix := regexp.MustCompile(`^` + regexp.QuoteMeta(headerProject) + `\s*` + regexp.QuoteMeta(code))

	return internal.ProjectAction{
		ActionCode:     code,
		Title:          strings.TrimSpace(titlePrefix.ReplaceAllString(titleLine, "")),
		PriorityOrigin: ValueFromTable(table, labelPriority),
		What:           MultilineValue(table, labelWhat, labelWhy),
		Why:            MultilineValue(table, labelWhy, labelResponsible),
		EstimatedCost:  util.ParseCurrency(ValueFromTable(table, labelCost)),
		FundingSource:  ValueFromTable(table, labelFunding),
		Period:         extractPeriod(table),
		Team:           extractTeam(table),
		Stages:         []internal.ProcessStage{},
	}, nil
}

type teamState int

const (
	teamIdle teamState = iota
	teamCapturing
)

// extractTeam reads the member rows from the first "Responsável:" row up to
// the execution period row.
func extractTeam(table internal.Table) []internal.TeamMember {
	state := teamIdle
	team := []internal.TeamMember{}

	for _, row := range table {
		label := strings.TrimSpace(row.Cell(0))
		if label == "" {
			continue
		}

		if strings.HasPrefix(label, labelResponsible) {
			state = teamCapturing
		}
		if state == teamCapturing {
			if member, ok := teamMember(row, label); ok {
				team = append(team, member)
			}
		}
		if strings.HasPrefix(label, labelPeriod) {
			state = teamIdle
		}
	}
	return team
}

func teamMember(row internal.Row, label string) (internal.TeamMember, bool) {
	var role internal.TeamRole
	switch {
	case strings.HasPrefix(label, labelResponsible):
		role = internal.RoleResponsible
	case strings.HasPrefix(label, labelCollaborator):
		role = internal.RoleCollaborator
	default:
		return internal.TeamMember{}, false
	}

	name := strings.TrimSpace(strings.ReplaceAll(row.Cell(teamNameColumn), namePlaceholder, ""))
	if name == "" || strings.EqualFold(name, unassignedName) {
		return internal.TeamMember{}, false
	}

	return internal.TeamMember{
		Role:        role,
		Name:        name,
		WeeklyHours: util.ParseWorkload(row.Cell(teamHoursColumn)),
		HourType:    strings.TrimSpace(row.Cell(teamHourTypeColumn)),
	}, true
}

// extractPeriod takes the first two dates of the first execution period row.
func extractPeriod(table internal.Table) internal.ExecutionPeriod {
	for _, row := range table {
		if !strings.Contains(row.Cell(0), labelPeriod) {
			continue
		}
		dates := reDate.FindAllString(joinNonEmpty(row), -1)
		if len(dates) < 2 {
			return internal.ExecutionPeriod{}
		}
		return internal.ExecutionPeriod{StartDate: dates[0], EndDate: dates[1]}
	}
	return internal.ExecutionPeriod{}
}

func joinNonEmpty(row internal.Row) string {
	parts := make([]string, 0, len(row))
	for _, cell := range row {
		if cell != "" {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, " ")
}
