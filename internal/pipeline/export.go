package pipeline

import (
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"pga/internal"
)

const (
	sheetSummary      = "Resumo"
	sheetProjects     = "Projetos"
	sheetTeam         = "Equipe"
	sheetAcquisitions = "Aquisicoes"
	sheetProblems     = "Problemas"
)

// ExportDocumentToXLSX writes doc as a workbook with one sheet per section.
func ExportDocumentToXLSX(doc internal.NormalizedDocument, outputPath string) error {
	f, err := buildWorkbook(doc)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func WriteDocumentXLSX(doc internal.NormalizedDocument, w io.Writer) error {
	f, err := buildWorkbook(doc)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}

func buildWorkbook(doc internal.NormalizedDocument) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fillWorkbook(f, doc); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func fillWorkbook(f *excelize.File, doc internal.NormalizedDocument) error {
	if err := f.SetSheetName(f.GetSheetName(0), sheetSummary); err != nil {
		return err
	}
	for _, name := range []string{sheetProjects, sheetTeam, sheetAcquisitions, sheetProblems} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	summary := [][]any{
		{"campo", "valor"},
		{"ano_referencia", doc.ReferenceYear},
		{"versao_documento", doc.DocumentVersion},
		{"instituicao_nome", doc.InstitutionName},
		{"codigo_unidade", doc.Unit.Code},
		{"nome_unidade", doc.Unit.Name},
		{"diretor", doc.Unit.Director},
		{"analise_cenario", doc.ScenarioAnalysis},
		{"nome_arquivo_original", doc.Metadata.OriginalFilename},
		{"data_extracao", doc.Metadata.ExtractionTimestamp},
	}
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return err
	}

	projects := [][]any{{
		"codigo_acao", "titulo", "origem_prioridade", "o_que_sera_feito", "por_que_sera_feito",
		"custo_estimado", "fonte_recursos", "data_inicial", "data_final",
	}}
	team := [][]any{{"codigo_acao", "funcao", "nome", "carga_horaria_semanal", "tipo_hora"}}
	for _, p := range doc.Projects {
		projects = append(projects, []any{
			p.ActionCode, p.Title, p.PriorityOrigin, p.What, p.Why,
			derefFloat(p.EstimatedCost), p.FundingSource, p.Period.StartDate, p.Period.EndDate,
		})
		for _, m := range p.Team {
			team = append(team, []any{p.ActionCode, string(m.Role), m.Name, m.WeeklyHours, m.HourType})
		}
	}
	if err := writeRows(f, sheetProjects, projects); err != nil {
		return err
	}
	if err := writeRows(f, sheetTeam, team); err != nil {
		return err
	}

	acquisitions := [][]any{{"item", "projeto_referencia", "denominacao", "quantidade", "preco_total_estimado"}}
	for _, a := range doc.Acquisitions {
		acquisitions = append(acquisitions, []any{
			a.ItemNumber, a.ProjectReference, a.Description, a.Quantity, derefFloat(a.EstimatedTotalPrice),
		})
	}
	if err := writeRows(f, sheetAcquisitions, acquisitions); err != nil {
		return err
	}

	problems := [][]any{{"situacao_problema"}}
	for _, p := range doc.ProblemStatements {
		problems = append(problems, []any{p})
	}
	return writeRows(f, sheetProblems, problems)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
