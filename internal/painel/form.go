package painel

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pluckstudio/demandas/internal/demanda"
	"github.com/pluckstudio/demandas/internal/sessao"
)

// FormController mantém o rascunho e envia novas demandas ao armazenamento.
// A lista exibida não é alterada aqui: a nova demanda chega pela assinatura.
type FormController struct {
	session *sessao.Session
	drafts  DraftStore
	notices Notices
	now     func() time.Time
	logger  zerolog.Logger
}

// NewFormController cria o controlador do formulário da sessão.
func NewFormController(sess *sessao.Session, drafts DraftStore, notices Notices, logger zerolog.Logger) *FormController {
	return &FormController{
		session: sess,
		drafts:  drafts,
		notices: notices,
		now:     time.Now,
		logger:  logger.With().Str("component", "formulario").Logger(),
	}
}

// OnFieldChange sobrescreve exatamente um campo do rascunho.
func (c *FormController) OnFieldChange(ctx context.Context, campo, valor string) error {
	var probe demanda.Draft
	if err := probe.Set(campo, valor); err != nil {
		return err
	}
	scope, ok := c.session.Scope()
	if !ok {
		return ErrIndisponivel
	}
	if err := c.drafts.SetField(ctx, scope, campo, valor); err != nil {
		c.logger.Error().Err(err).Str("campo", campo).Msg("falha ao gravar rascunho")
		return fmt.Errorf("%w: %w", ErrIndisponivel, err)
	}
	return nil
}

// Draft devolve o rascunho atual.
func (c *FormController) Draft(ctx context.Context) (demanda.Draft, error) {
	scope, ok := c.session.Scope()
	if !ok {
		return demanda.Draft{}, ErrIndisponivel
	}
	draft, err := c.drafts.Load(ctx, scope)
	if err != nil {
		c.logger.Error().Err(err).Msg("falha ao ler rascunho")
		return demanda.Draft{}, fmt.Errorf("%w: %w", ErrIndisponivel, err)
	}
	return draft, nil
}

// Submit valida o rascunho guardado e cria a demanda. Em caso de sucesso o
// rascunho volta ao estado vazio; em caso de falha ele é preservado.
func (c *FormController) Submit(ctx context.Context) (string, error) {
	scope, store, err := c.target()
	if err != nil {
		return "", err
	}

	draft, err := c.drafts.Load(ctx, scope)
	if err != nil {
		c.logger.Error().Err(err).Msg("falha ao ler rascunho")
		c.show(ctx, scope, MsgIndisponivel)
		return "", fmt.Errorf("%w: %w", ErrIndisponivel, err)
	}

	id, err := c.create(ctx, scope, store, draft)
	if err != nil {
		return "", err
	}

	if err := c.drafts.Reset(ctx, scope); err != nil {
		c.logger.Warn().Err(err).Msg("falha ao limpar rascunho")
	}
	return id, nil
}

// SubmitDraft valida e cria a demanda a partir de um rascunho completo recebido
// de uma vez. O rascunho guardado não é tocado.
func (c *FormController) SubmitDraft(ctx context.Context, draft demanda.Draft) (string, error) {
	scope, store, err := c.target()
	if err != nil {
		return "", err
	}
	return c.create(ctx, scope, store, draft)
}

func (c *FormController) target() (demanda.Scope, sessao.DocumentStore, error) {
	scope, ok := c.session.Scope()
	store := c.session.Store()
	if !ok || store == nil {
		c.logger.Warn().Bool("pronta", ok).Msg("envio sem sessão pronta")
		return demanda.Scope{}, nil, ErrIndisponivel
	}
	return scope, store, nil
}

func (c *FormController) create(ctx context.Context, scope demanda.Scope, store sessao.DocumentStore, draft demanda.Draft) (string, error) {
	rec, err := draft.Build(c.now())
	if err != nil {
		c.show(ctx, scope, Mensagem(err))
		return "", err
	}

	id, err := store.Create(ctx, scope, rec)
	if err != nil {
		c.logger.Error().Err(err).Str("scope", scope.Path()).Msg("falha ao adicionar demanda")
		c.show(ctx, scope, MsgErroGravacao)
		return "", fmt.Errorf("%w: %w", ErrGravacao, err)
	}

	c.logger.Info().Str("scope", scope.Path()).Str("id", id).Msg("demanda adicionada")
	c.show(ctx, scope, MsgAdicionada)
	return id, nil
}

func (c *FormController) show(ctx context.Context, scope demanda.Scope, msg string) {
	announce(ctx, c.notices, scope, msg, c.logger)
}
