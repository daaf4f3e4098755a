package journal

// TemplateFunc produces the journal handed to a trade that has none yet.
// Services take it as a dependency so tests can swap in fixed documents.
type TemplateFunc func() Document

func boolPtr(v bool) *bool { return &v }

// DefaultTemplate builds the stock seven-section journal every new trade
// starts from. Section ids are stable contract values the derivation and the
// frontend both key on; field content is the product's Portuguese default
// questionnaire.
func DefaultTemplate() Document {
	return Document{
		{
			ID:         "timeframes",
			Title:      "Time Frames & Contexto",
			IsExpanded: true,
			Fields: []Field{
				{
					ID:    "tf_entry",
					Label: "Time Frame de Entrada",
					Type:  FieldSelect,
					Text:  "5m",
					Options: []Option{
						{ID: "1", Label: "1m"}, {ID: "2", Label: "5m"}, {ID: "3", Label: "15m"},
						{ID: "4", Label: "60m"}, {ID: "5", Label: "Diário"},
					},
				},
				{
					ID:    "tf_analysis",
					Label: "Time Frame Analisado",
					Type:  FieldSelect,
					Text:  "60m",
					Options: []Option{
						{ID: "1", Label: "15m"}, {ID: "2", Label: "60m"}, {ID: "3", Label: "4h"},
						{ID: "4", Label: "Diário"}, {ID: "5", Label: "Semanal"},
					},
				},
			},
		},
		{
			ID:         "indicators",
			Title:      "Indicadores Técnicos",
			IsExpanded: false,
			Fields: []Field{
				{
					ID:    "ma200",
					Label: "Médias de 200 Períodos",
					Type:  FieldRadio,
					Text:  "Neutral",
					Options: []Option{
						{ID: "1", Label: "A favor da tendência"},
						{ID: "2", Label: "Contra a tendência"},
						{ID: "3", Label: "Flat / Lateral"},
					},
				},
				{
					ID:    "macd",
					Label: "MACD",
					Type:  FieldRadio,
					Text:  "Neutral",
					Options: []Option{
						{ID: "1", Label: "Dois MACDs a favor"},
						{ID: "2", Label: "Um MACD a favor"},
						{ID: "3", Label: "Nenhum a favor"},
					},
				},
			},
		},
		{
			ID:         "strategy",
			Title:      "Estratégia Utilizada",
			IsExpanded: true,
			Fields: []Field{
				{
					ID:    "strategies_check",
					Label: "Setups Identificados",
					Type:  FieldChecklist,
					Options: []Option{
						{ID: "1", Label: "Pullback nas Médias"},
						{ID: "2", Label: "Ondas de Elliott"},
						{ID: "3", Label: "Retração de Fibonacci"},
						{ID: "4", Label: "Rompimento de Topo/Fundo"},
						{ID: "5", Label: "Suporte e Resistência"},
					},
				},
			},
		},
		{
			ID:         "risk",
			Title:      "Gestão de Risco",
			IsExpanded: false,
			Fields: []Field{
				{
					ID:    "rr",
					Label: "Risco x Retorno Planejado",
					Type:  FieldSelect,
					Text:  "2:1",
					Options: []Option{
						{ID: "1", Label: "1:1"}, {ID: "2", Label: "1.5:1"}, {ID: "3", Label: "2:1"},
						{ID: "4", Label: "3:1"}, {ID: "5", Label: "5:1+"},
					},
				},
				{
					ID:          "target",
					Label:       "Preço Alvo (Target)",
					Type:        FieldText,
					Placeholder: "Ex: 125.500",
				},
				{
					ID:    "followed_system",
					Label: "Seguiu o Trade System?",
					Type:  FieldBoolean,
					Flag:  boolPtr(true),
				},
			},
		},
		{
			ID:         "psychology",
			Title:      "Estado Emocional",
			IsExpanded: false,
			Fields: []Field{
				{
					ID:    "emotions",
					Label: "Sentimentos no momento do trade",
					Type:  FieldChecklist,
					Options: []Option{
						{ID: "1", Label: "Disciplinado"},
						{ID: "2", Label: "Confiante"},
						{ID: "3", Label: "Ansioso"},
						{ID: "4", Label: "Medo"},
						{ID: "5", Label: "Ganância / FOMO"},
						{ID: "6", Label: "Raiva / Vingança"},
					},
				},
			},
		},
		{
			ID:         "review",
			Title:      "Autoavaliação",
			IsExpanded: false,
			Fields: []Field{
				{
					ID:          "mistakes",
					Label:       "O que fiz de errado?",
					Type:        FieldText,
					Placeholder: "Descreva erros técnicos ou comportamentais...",
				},
				{
					ID:          "lessons",
					Label:       "Lição aprendida / Observações",
					Type:        FieldText,
					Placeholder: "O que levar para o próximo trade...",
				},
			},
		},
		{
			ID:         "media",
			Title:      "Mídia & Gráficos",
			IsExpanded: true,
			Fields: []Field{
				{
					ID:     "chart_img",
					Label:  "Print da Operação",
					Type:   FieldImage,
					Images: []string{"https://picsum.photos/600/400?grayscale"},
				},
			},
		},
	}
}
