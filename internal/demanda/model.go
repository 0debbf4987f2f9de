// Package demanda define o registro de demanda, suas regras de gravação e o
// armazenamento por identidade dona.
package demanda

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Prioridade classifica a urgência da demanda.
type Prioridade string

const (
	PrioridadeAlta  Prioridade = "Alta"
	PrioridadeMedia Prioridade = "Média"
	PrioridadeBaixa Prioridade = "Baixa"
)

// Status acompanha o andamento da demanda.
type Status string

const (
	StatusPendente    Status = "Pendente"
	StatusEmAndamento Status = "Em Andamento"
	StatusConcluido   Status = "Concluído"
	StatusCancelado   Status = "Cancelado"
)

var (
	validPrioridades = map[Prioridade]struct{}{
		"":              {},
		PrioridadeAlta:  {},
		PrioridadeMedia: {},
		PrioridadeBaixa: {},
	}
	validStatus = map[Status]struct{}{
		"":                {},
		StatusPendente:    {},
		StatusEmAndamento: {},
		StatusConcluido:   {},
		StatusCancelado:   {},
	}
)

// Erros de validação na fronteira de gravação, na ordem em que são checados.
var (
	ErrDemandaObrigatoria    = errors.New("demanda obrigatória")
	ErrDataObrigatoria       = errors.New("data da demanda obrigatória")
	ErrSecretariaObrigatoria = errors.New("secretaria responsável obrigatória")
	ErrDataInvalida          = errors.New("data da demanda inválida")
	ErrPrioridadeInvalida    = errors.New("prioridade inválida")
	ErrStatusInvalido        = errors.New("status inválido")
	ErrCampoDesconhecido     = errors.New("campo desconhecido")
)

// Demanda é o registro persistido. Não existe operação de atualização:
// uma demanda é criada, lida e eventualmente excluída.
type Demanda struct {
	ID                    string     `json:"id"`
	Demanda               string     `json:"demanda"`
	TipoServico           string     `json:"tipoServico"`
	Prioridade            Prioridade `json:"prioridade"`
	Prazo                 string     `json:"prazo"`
	SecretariaResponsavel string     `json:"secretariaResponsavel"`
	Status                Status     `json:"status"`
	Detalhes              string     `json:"detalhes"`
	Observacoes           string     `json:"observacoes"`
	DataDemanda           *time.Time `json:"dataDemanda"`
	CriadoEm              *time.Time `json:"createdAt"`
}

// Nomes dos campos do rascunho, iguais aos do formulário.
const (
	CampoDemanda               = "demanda"
	CampoTipoServico           = "tipoServico"
	CampoPrioridade            = "prioridade"
	CampoPrazo                 = "prazo"
	CampoSecretariaResponsavel = "secretariaResponsavel"
	CampoStatus                = "status"
	CampoDetalhes              = "detalhes"
	CampoObservacoes           = "observacoes"
	CampoDataDemanda           = "dataDemanda"
)

// Campos lista os nomes aceitos por Draft.Set.
var Campos = []string{
	CampoDemanda,
	CampoTipoServico,
	CampoPrioridade,
	CampoPrazo,
	CampoSecretariaResponsavel,
	CampoStatus,
	CampoDetalhes,
	CampoObservacoes,
	CampoDataDemanda,
}

// Draft guarda os valores do formulário antes da validação.
type Draft struct {
	Demanda               string `json:"demanda"`
	TipoServico           string `json:"tipoServico"`
	Prioridade            string `json:"prioridade"`
	Prazo                 string `json:"prazo"`
	SecretariaResponsavel string `json:"secretariaResponsavel"`
	Status                string `json:"status"`
	Detalhes              string `json:"detalhes"`
	Observacoes           string `json:"observacoes"`
	DataDemanda           string `json:"dataDemanda"`
}

// Set sobrescreve um único campo, mantendo os demais.
func (d *Draft) Set(campo, valor string) error {
	ptr := d.field(campo)
	if ptr == nil {
		return fmt.Errorf("%w: %s", ErrCampoDesconhecido, campo)
	}
	*ptr = valor
	return nil
}

// Get devolve o valor atual de um campo.
func (d *Draft) Get(campo string) (string, bool) {
	ptr := d.field(campo)
	if ptr == nil {
		return "", false
	}
	return *ptr, true
}

// Fields devolve o rascunho como mapa campo → valor.
func (d Draft) Fields() map[string]string {
	out := make(map[string]string, len(Campos))
	for _, campo := range Campos {
		out[campo], _ = d.Get(campo)
	}
	return out
}

// DraftFromFields monta um rascunho a partir de um mapa; chaves desconhecidas são ignoradas.
func DraftFromFields(fields map[string]string) Draft {
	var d Draft
	for campo, valor := range fields {
		_ = d.Set(campo, valor)
	}
	return d
}

func (d *Draft) field(campo string) *string {
	switch campo {
	case CampoDemanda:
		return &d.Demanda
	case CampoTipoServico:
		return &d.TipoServico
	case CampoPrioridade:
		return &d.Prioridade
	case CampoPrazo:
		return &d.Prazo
	case CampoSecretariaResponsavel:
		return &d.SecretariaResponsavel
	case CampoStatus:
		return &d.Status
	case CampoDetalhes:
		return &d.Detalhes
	case CampoObservacoes:
		return &d.Observacoes
	case CampoDataDemanda:
		return &d.DataDemanda
	}
	return nil
}

// Build valida o rascunho e constrói o registro a gravar.
// A primeira regra violada vence; criadoEm é o instante da gravação.
func (d Draft) Build(criadoEm time.Time) (Demanda, error) {
	d = d.trimmed()

	if d.Demanda == "" {
		return Demanda{}, ErrDemandaObrigatoria
	}
	if d.DataDemanda == "" {
		return Demanda{}, ErrDataObrigatoria
	}
	if d.SecretariaResponsavel == "" {
		return Demanda{}, ErrSecretariaObrigatoria
	}

	data, err := ParseDataBR(d.DataDemanda)
	if err != nil {
		return Demanda{}, err
	}

	prioridade := Prioridade(d.Prioridade)
	if _, ok := validPrioridades[prioridade]; !ok {
		return Demanda{}, ErrPrioridadeInvalida
	}
	status := Status(d.Status)
	if _, ok := validStatus[status]; !ok {
		return Demanda{}, ErrStatusInvalido
	}

	criado := criadoEm.UTC()
	return Demanda{
		Demanda:               d.Demanda,
		TipoServico:           d.TipoServico,
		Prioridade:            prioridade,
		Prazo:                 d.Prazo,
		SecretariaResponsavel: d.SecretariaResponsavel,
		Status:                status,
		Detalhes:              d.Detalhes,
		Observacoes:           d.Observacoes,
		DataDemanda:           &data,
		CriadoEm:              &criado,
	}, nil
}

// Textos longos mantêm espaços internos; só as bordas são aparadas.
func (d Draft) trimmed() Draft {
	d.Demanda = strings.TrimSpace(d.Demanda)
	d.TipoServico = strings.TrimSpace(d.TipoServico)
	d.Prioridade = strings.TrimSpace(d.Prioridade)
	d.Prazo = strings.TrimSpace(d.Prazo)
	d.SecretariaResponsavel = strings.TrimSpace(d.SecretariaResponsavel)
	d.Status = strings.TrimSpace(d.Status)
	d.Detalhes = strings.TrimSpace(d.Detalhes)
	d.Observacoes = strings.TrimSpace(d.Observacoes)
	d.DataDemanda = strings.TrimSpace(d.DataDemanda)
	return d
}
