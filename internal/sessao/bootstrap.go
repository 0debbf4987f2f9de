package sessao

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Bootstrapper resolve a identidade da sessão uma vez por carregamento.
type Bootstrapper struct {
	provider       Provider
	store          DocumentStore
	appID          string
	bootstrapToken string
	logger         zerolog.Logger
}

// NewBootstrapper cria o inicializador de sessões.
// bootstrapToken é o token customizado do ambiente, usado quando a requisição não traz um.
func NewBootstrapper(provider Provider, store DocumentStore, appID, bootstrapToken string, logger zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{
		provider:       provider,
		store:          store,
		appID:          appID,
		bootstrapToken: strings.TrimSpace(bootstrapToken),
		logger:         logger,
	}
}

// Start resolve a identidade: retoma sessionToken quando válido, senão entra com
// o token customizado (requisição ou ambiente), senão entra anonimamente.
// Falhas não são fatais: a sessão volta não pronta junto com o erro.
func (b *Bootstrapper) Start(ctx context.Context, sessionToken, customToken string) (*Session, error) {
	sess := newSession(b.appID, b.store)
	sess.listen(b.provider)

	if sessionToken = strings.TrimSpace(sessionToken); sessionToken != "" {
		id, err := b.provider.Resume(ctx, sessionToken)
		if err == nil {
			sess.setIdentity(id)
			return sess, nil
		}
		if !errors.Is(err, ErrSessaoInvalida) {
			b.logger.Error().Err(err).Msg("falha ao retomar sessão")
			return sess, fmt.Errorf("%w: %w", ErrAutenticacao, err)
		}
	}

	token := strings.TrimSpace(customToken)
	if token == "" {
		token = b.bootstrapToken
	}

	var (
		id  Identity
		err error
	)
	if token != "" {
		id, err = b.provider.SignInWithToken(ctx, token)
	} else {
		id, err = b.provider.SignInAnonymous(ctx)
	}
	if err != nil {
		b.logger.Error().Err(err).Bool("token", token != "").Msg("falha na autenticação")
		return sess, fmt.Errorf("%w: %w", ErrAutenticacao, err)
	}

	sess.setIdentity(id)
	b.logger.Debug().Str("identidade", id.ID).Str("origem", id.Origem).Msg("sessão estabelecida")
	return sess, nil
}

// Resume apenas retoma uma sessão existente; nunca cria identidade nova.
func (b *Bootstrapper) Resume(ctx context.Context, sessionToken string) (*Session, error) {
	sess := newSession(b.appID, b.store)
	sess.listen(b.provider)

	sessionToken = strings.TrimSpace(sessionToken)
	if sessionToken == "" {
		return sess, ErrSessaoInvalida
	}

	id, err := b.provider.Resume(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, ErrSessaoInvalida) {
			return sess, err
		}
		b.logger.Error().Err(err).Msg("falha ao retomar sessão")
		return sess, fmt.Errorf("%w: %w", ErrAutenticacao, err)
	}
	sess.setIdentity(id)
	return sess, nil
}

// SignOut encerra a sessão no provedor; sessões abertas com o mesmo token
// deixam de estar prontas. Outras sessões da mesma identidade seguem ativas.
func (b *Bootstrapper) SignOut(ctx context.Context, sessionToken string) error {
	if strings.TrimSpace(sessionToken) == "" {
		return ErrSessaoInvalida
	}
	return b.provider.SignOut(ctx, sessionToken)
}
