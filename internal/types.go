package internal

// Row is one tokenized table row. Rows of the same table may have different
// lengths; a missing or null cell reads as "".
type Row []string

type Table []Row

type Page struct {
	Number int     `json:"numero_pagina"`
	Text   string  `json:"texto"`
	Tables []Table `json:"tabelas"`
}

func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

type TeamRole string

const (
	RoleResponsible  TeamRole = "Responsável"
	RoleCollaborator TeamRole = "Colaborador"
)

const DocumentVersion = "V04"

type TeamMember struct {
	Role        TeamRole `json:"funcao" bson:"funcao"`
	Name        string   `json:"nome" bson:"nome"`
	WeeklyHours int      `json:"carga_horaria_semanal" bson:"carga_horaria_semanal"`
	HourType    string   `json:"tipo_hora" bson:"tipo_hora"`
}

// ExecutionPeriod serializes as {} when fewer than two dates were found.
type ExecutionPeriod struct {
	StartDate string `json:"data_inicial,omitempty" bson:"data_inicial,omitempty"`
	EndDate   string `json:"data_final,omitempty" bson:"data_final,omitempty"`
}

func (p ExecutionPeriod) IsZero() bool {
	return p.StartDate == "" && p.EndDate == ""
}

type ProjectAction struct {
	ActionCode     string          `json:"codigo_acao" bson:"codigo_acao"`
	Title          string          `json:"titulo" bson:"titulo"`
	PriorityOrigin string          `json:"origem_prioridade" bson:"origem_prioridade"`
	What           string          `json:"o_que_sera_feito" bson:"o_que_sera_feito"`
	Why            string          `json:"por_que_sera_feito" bson:"por_que_sera_feito"`
	EstimatedCost  *float64        `json:"custo_estimado" bson:"custo_estimado"`
	FundingSource  string          `json:"fonte_recursos" bson:"fonte_recursos"`
	Period         ExecutionPeriod `json:"periodo_execucao" bson:"periodo_execucao"`
	Team           []TeamMember    `json:"equipe" bson:"equipe"`
	Stages         []ProcessStage  `json:"etapas_processo" bson:"etapas_processo"`
}

// ProcessStage is a step of a project's execution plan. Stages are not printed
// in the PDF and are only filled in through the editor.
type ProcessStage struct {
	Description string `json:"descricao" bson:"descricao"`
	Start       string `json:"inicio" bson:"inicio"`
	End         string `json:"fim" bson:"fim"`
}

type AcquisitionItem struct {
	ItemNumber          int      `json:"item" bson:"item"`
	ProjectReference    string   `json:"projeto_referencia" bson:"projeto_referencia"`
	Description         string   `json:"denominacao" bson:"denominacao"`
	Quantity            int      `json:"quantidade" bson:"quantidade"`
	EstimatedTotalPrice *float64 `json:"preco_total_estimado" bson:"preco_total_estimado"`
}

type UnitIdentification struct {
	Code     string `json:"codigo" bson:"codigo"`
	Name     string `json:"nome" bson:"nome"`
	Director string `json:"diretor" bson:"diretor"`
}

type ExtractionMetadata struct {
	OriginalFilename    string `json:"nome_arquivo_original" bson:"nome_arquivo_original"`
	ExtractionTimestamp string `json:"data_extracao" bson:"data_extracao"`
}

type NormalizedDocument struct {
	ReferenceYear     int                `json:"ano_referencia" bson:"ano_referencia"`
	DocumentVersion   string             `json:"versao_documento" bson:"versao_documento"`
	InstitutionName   string             `json:"instituicao_nome" bson:"instituicao_nome"`
	Unit              UnitIdentification `json:"identificacao_unidade" bson:"identificacao_unidade"`
	ScenarioAnalysis  string             `json:"analise_cenario" bson:"analise_cenario"`
	Metadata          ExtractionMetadata `json:"metadados_extracao" bson:"metadados_extracao"`
	ProblemStatements []string           `json:"situacoes_problema_gerais" bson:"situacoes_problema_gerais"`
	Projects          []ProjectAction    `json:"acoes_projetos" bson:"acoes_projetos"`
	Acquisitions      []AcquisitionItem  `json:"anexo1_aquisicoes" bson:"anexo1_aquisicoes"`
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
