// Package painel reúne os controladores do painel de demandas: lista ao vivo,
// formulário, exclusão, exportação e o aviso exibido ao usuário.
package painel

import (
	"errors"

	"github.com/pluckstudio/demandas/internal/demanda"
	"github.com/pluckstudio/demandas/internal/sessao"
)

var (
	// ErrIndisponivel indica sessão sem identidade pronta ou sem armazenamento.
	ErrIndisponivel = errors.New("armazenamento indisponível")
	// ErrGravacao indica falha do armazenamento ao criar a demanda.
	ErrGravacao = errors.New("falha ao gravar demanda")
	// ErrExclusao indica falha do armazenamento ao excluir a demanda.
	ErrExclusao = errors.New("falha ao excluir demanda")
	// ErrCarregamento indica falha ao ler a lista de demandas.
	ErrCarregamento = errors.New("falha ao carregar demandas")
	// ErrNadaParaExportar indica lista vazia na exportação.
	ErrNadaParaExportar = errors.New("nada para exportar")
	// ErrExportacao indica falha ao montar a planilha.
	ErrExportacao = errors.New("falha ao exportar planilha")
)

// Mensagens exibidas ao usuário.
const (
	MsgIndisponivel       = "Serviço de banco de dados não disponível. Tente novamente."
	MsgDemandaObrigatoria = "Por favor, preencha a Demanda."
	MsgDataObrigatoria    = "Por favor, preencha a Data da Demanda."
	MsgSecretaria         = "Por favor, preencha a Secretaria Responsável."
	MsgDataInvalida       = "Formato de data inválido. Use DD/MM/AAAA."
	MsgPrioridadeInvalida = "Prioridade inválida."
	MsgStatusInvalido     = "Status inválido."
	MsgCampoDesconhecido  = "Campo desconhecido."
	MsgAdicionada         = "Demanda adicionada com sucesso!"
	MsgErroGravacao       = "Erro ao adicionar demanda. Por favor, tente novamente."
	MsgExcluida           = "Demanda excluída com sucesso!"
	MsgErroExclusao       = "Erro ao excluir demanda. Por favor, tente novamente."
	MsgErroCarregamento   = "Erro ao carregar demandas. Por favor, recarregue a página."
	MsgNadaParaExportar   = "Não há dados para exportar."
	MsgExportada          = "Dados exportados para Excel com sucesso!"
	MsgErroExportacao     = "Erro ao exportar para Excel."
	MsgErroAutenticacao   = "Erro ao conectar com o serviço de autenticação."
	MsgSessaoInvalida     = "Sessão expirada. Recarregue a página."
	MsgErroInesperado     = "Erro inesperado. Tente novamente."
)

var mensagens = []struct {
	err error
	msg string
}{
	{demanda.ErrDemandaObrigatoria, MsgDemandaObrigatoria},
	{demanda.ErrDataObrigatoria, MsgDataObrigatoria},
	{demanda.ErrSecretariaObrigatoria, MsgSecretaria},
	{demanda.ErrDataInvalida, MsgDataInvalida},
	{demanda.ErrPrioridadeInvalida, MsgPrioridadeInvalida},
	{demanda.ErrStatusInvalido, MsgStatusInvalido},
	{demanda.ErrCampoDesconhecido, MsgCampoDesconhecido},
	{ErrIndisponivel, MsgIndisponivel},
	{ErrGravacao, MsgErroGravacao},
	{ErrExclusao, MsgErroExclusao},
	{ErrCarregamento, MsgErroCarregamento},
	{ErrNadaParaExportar, MsgNadaParaExportar},
	{ErrExportacao, MsgErroExportacao},
	{sessao.ErrAutenticacao, MsgErroAutenticacao},
	{sessao.ErrSessaoInvalida, MsgSessaoInvalida},
}

// Mensagem traduz um erro dos controladores no texto exibido ao usuário.
func Mensagem(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range mensagens {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return MsgErroInesperado
}

// IsValidation indica erro de validação do formulário.
func IsValidation(err error) bool {
	for _, target := range []error{
		demanda.ErrDemandaObrigatoria,
		demanda.ErrDataObrigatoria,
		demanda.ErrSecretariaObrigatoria,
		demanda.ErrDataInvalida,
		demanda.ErrPrioridadeInvalida,
		demanda.ErrStatusInvalido,
		demanda.ErrCampoDesconhecido,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
