package demanda

import (
	"sort"
	"time"
)

// View é a demanda pronta para exibição, com datas já formatadas.
type View struct {
	ID                    string `json:"id"`
	Demanda               string `json:"demanda"`
	TipoServico           string `json:"tipoServico"`
	Prioridade            string `json:"prioridade"`
	Prazo                 string `json:"prazo"`
	SecretariaResponsavel string `json:"secretariaResponsavel"`
	Status                string `json:"status"`
	Detalhes              string `json:"detalhes"`
	Observacoes           string `json:"observacoes"`
	DataDemanda           string `json:"dataDemanda"`
	CreatedAt             string `json:"createdAt"`

	// Valores originais, usados para ordenar e exportar.
	Data     *time.Time `json:"-"`
	CriadoEm *time.Time `json:"-"`
}

// NewView converte um registro em linha de exibição.
func NewView(d Demanda, loc *time.Location) View {
	return View{
		ID:                    d.ID,
		Demanda:               d.Demanda,
		TipoServico:           d.TipoServico,
		Prioridade:            string(d.Prioridade),
		Prazo:                 d.Prazo,
		SecretariaResponsavel: d.SecretariaResponsavel,
		Status:                string(d.Status),
		Detalhes:              d.Detalhes,
		Observacoes:           d.Observacoes,
		DataDemanda:           FormatDataBR(d.DataDemanda),
		CreatedAt:             FormatDataHoraBR(d.CriadoEm, loc),
		Data:                  d.DataDemanda,
		CriadoEm:              d.CriadoEm,
	}
}

// ToViews converte um snapshot inteiro e ordena por criação, mais recente primeiro.
func ToViews(records []Demanda, loc *time.Location) []View {
	views := make([]View, 0, len(records))
	for _, rec := range records {
		views = append(views, NewView(rec, loc))
	}
	SortByCreation(views)
	return views
}

// SortByCreation ordena pelo timestamp de criação (não pela string exibida).
// Registros sem createdAt ficam no fim; empates são resolvidos pelo id.
func SortByCreation(views []View) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].CriadoEm, views[j].CriadoEm
		switch {
		case a == nil && b == nil:
			return views[i].ID < views[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return views[i].ID < views[j].ID
		default:
			return a.After(*b)
		}
	})
}
