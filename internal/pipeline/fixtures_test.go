package pipeline

import "pga/internal"

func samplePages() []internal.Page {
	return []internal.Page{
		{
			Number: 1,
			Text:   "PLANO DE GESTÃO ANUAL\nFATEC VOTORANTIM\nIDENTIFICAÇÃO DA UNIDADE",
			Tables: []internal.Table{
				{
					{"IDENTIFICAÇÃO DA UNIDADE", ""},
					{"Unidade", "301 - Fatec Votorantim"},
					{"Diretor(a)", "", "Maria Silva "},
				},
				{
					{"ANÁLISE DO CENÁRIO", ""},
					{"", "A unidade cresceu."},
					{"", "Faltam laboratórios."},
					{"APONTAMENTO DE SITUAÇÕES-PROBLEMA", ""},
				},
				{
					{"APONTAMENTO DE SITUAÇÕES-PROBLEMA", ""},
					{"cat 1 - Infraestrutura\ninsuficiente", "outro texto"},
					{"", "cat 2 - Evasão"},
					{"cat 1 - Infraestrutura insuficiente", ""},
				},
			},
		},
		{
			Number: 2,
			Text:   "AÇÕES E PROJETOS",
			Tables: []internal.Table{
				{
					{"AÇÃO/PROJETO (Tema)", "12", "Laboratório de redes"},
					{"Origem (prioridade):", "Situação-problema 1"},
					{"O que será feito:", "Montar laboratório"},
					{"", "com 20 estações"},
					{"Por que será feito:", "Atender disciplinas"},
					{"Responsável:", "<nome> João Souza", "", "", "", "", "05 horas", "", "HAE"},
					{"Colaborador(a):", "Ana Lima", "", "", "", "", "2", "", " RJI "},
					{"Colaborador(a):", "NN"},
					{"Colaborador(a):", "<nome>"},
					{"Período de execução:", "de 01/02/2025", "a 30/11/2025"},
					{"Colaborador(a):", "Depois do período"},
					{"Custo R$ (se houver):", "R$ 12.500,00"},
					{"Fonte(s) dos recursos:", "CPS"},
				},
				{
					{"AÇÃO/PROJETO (Tema) 13 Semana de tecnologia"},
					{"Custo R$ (se houver):", "Não haverá custos"},
					{"Período de execução:", "01/03/2025"},
				},
			},
		},
		{
			Number: 3,
			Text:   "Anexo 1 – Lista de aquisições",
			Tables: []internal.Table{
				{
					{"Item", "Projeto", "Denominação", "Qtde", "Preço total estimado"},
					{"", "", "", "", "(R$)"},
					{"1", "12 -\nLaboratório", " Switch 24 portas ", "2", "R$ 3.000,00"},
					{"2", "12", "Cabo de rede", "caixa", "R$ 500,00"},
					{"3", "13", "Banner"},
					{"4", "13", "Coffee break", "1", "A ser definido"},
				},
			},
		},
	}
}
