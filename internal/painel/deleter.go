package painel

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pluckstudio/demandas/internal/demanda"
	"github.com/pluckstudio/demandas/internal/sessao"
)

// PerguntaExclusao é o texto da confirmação de exclusão.
const PerguntaExclusao = "Tem certeza que deseja excluir esta demanda?"

// Confirmer pergunta ao usuário antes de uma ação destrutiva.
type Confirmer interface {
	Confirm(ctx context.Context, pergunta string) (bool, error)
}

// ConfirmFunc adapta uma função a Confirmer.
type ConfirmFunc func(ctx context.Context, pergunta string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, pergunta string) (bool, error) {
	return f(ctx, pergunta)
}

// Always responde sempre com a decisão fixa.
func Always(decision bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return decision, nil })
}

// Deleter exclui demandas mediante confirmação.
type Deleter struct {
	session *sessao.Session
	notices Notices
	logger  zerolog.Logger
}

// NewDeleter cria o controlador de exclusão da sessão.
func NewDeleter(sess *sessao.Session, notices Notices, logger zerolog.Logger) *Deleter {
	return &Deleter{
		session: sess,
		notices: notices,
		logger:  logger.With().Str("component", "exclusao").Logger(),
	}
}

// Delete pede confirmação e remove a demanda. Recusa devolve (false, nil) sem
// tocar no armazenamento. A lista exibida muda só pela assinatura.
func (d *Deleter) Delete(ctx context.Context, id string, confirmer Confirmer) (bool, error) {
	scope, ok := d.session.Scope()
	store := d.session.Store()
	if !ok || store == nil {
		return false, ErrIndisponivel
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("%w: id vazio", ErrExclusao)
	}

	confirmed, err := confirmer.Confirm(ctx, PerguntaExclusao)
	if err != nil {
		return false, err
	}
	if !confirmed {
		return false, nil
	}

	if err := store.Delete(ctx, scope, id); err != nil {
		d.logger.Error().Err(err).Str("scope", scope.Path()).Str("id", id).Msg("falha ao excluir demanda")
		d.show(ctx, scope, MsgErroExclusao)
		return false, fmt.Errorf("%w: %w", ErrExclusao, err)
	}

	d.logger.Info().Str("scope", scope.Path()).Str("id", id).Msg("demanda excluída")
	d.show(ctx, scope, MsgExcluida)
	return true, nil
}

func (d *Deleter) show(ctx context.Context, scope demanda.Scope, msg string) {
	announce(ctx, d.notices, scope, msg, d.logger)
}
