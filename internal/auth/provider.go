package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pluckstudio/demandas/internal/repo"
	"github.com/pluckstudio/demandas/internal/sessao"
	"github.com/pluckstudio/demandas/internal/util"
)

type identityRepository interface {
	InsertIdentidade(ctx context.Context, id repo.Identidade) (repo.Identidade, error)
	UpsertIdentidade(ctx context.Context, id repo.Identidade) (repo.Identidade, error)
	GetIdentidade(ctx context.Context, appID, id string) (repo.Identidade, error)
	TouchIdentidade(ctx context.Context, appID, id string, at time.Time) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// IdentityProvider emite identidades anônimas ou trocadas por token e as
// sessões que as carregam.
type IdentityProvider struct {
	appID  string
	repo   identityRepository
	redis  redisCommander
	jwt    *JWTManager
	custom *CustomTokens
	logger zerolog.Logger

	mu        sync.Mutex
	next      int
	listeners map[int]func(sessao.Change)
}

// NewIdentityProvider cria o provedor ligado ao Postgres e ao Redis.
func NewIdentityProvider(appID string, r *repo.Queries, redisClient *redis.Client, jwtMgr *JWTManager, custom *CustomTokens, logger zerolog.Logger) *IdentityProvider {
	return newIdentityProvider(appID, r, redisClient, jwtMgr, custom, logger)
}

func newIdentityProvider(appID string, r identityRepository, rc redisCommander, jwtMgr *JWTManager, custom *CustomTokens, logger zerolog.Logger) *IdentityProvider {
	return &IdentityProvider{
		appID:     appID,
		repo:      r,
		redis:     rc,
		jwt:       jwtMgr,
		custom:    custom,
		logger:    logger.With().Str("component", "identity").Logger(),
		listeners: make(map[int]func(sessao.Change)),
	}
}

// SignInAnonymous cria uma identidade nova sem credenciais.
func (p *IdentityProvider) SignInAnonymous(ctx context.Context) (sessao.Identity, error) {
	record, err := p.repo.InsertIdentidade(ctx, repo.Identidade{
		AppID:    p.appID,
		ID:       util.NewID(),
		Origem:   sessao.OrigemAnonima,
		CriadoEm: util.Now(),
	})
	if err != nil {
		return sessao.Identity{}, err
	}
	return p.issue(record)
}

// SignInWithToken troca um token customizado pela identidade do seu subject.
func (p *IdentityProvider) SignInWithToken(ctx context.Context, token string) (sessao.Identity, error) {
	subject, err := p.custom.Verify(token)
	if err != nil {
		p.logger.Warn().Err(err).Msg("token customizado recusado")
		return sessao.Identity{}, err
	}

	record, err := p.repo.UpsertIdentidade(ctx, repo.Identidade{
		AppID:    p.appID,
		ID:       subject,
		Origem:   sessao.OrigemToken,
		CriadoEm: util.Now(),
	})
	if err != nil {
		return sessao.Identity{}, err
	}
	return p.issue(record)
}

// Resume valida um token de sessão e devolve a identidade que ele carrega.
// Tokens inválidos, revogados ou de identidades desconhecidas resultam em
// sessao.ErrSessaoInvalida.
func (p *IdentityProvider) Resume(ctx context.Context, sessionToken string) (sessao.Identity, error) {
	claims, err := p.validate(ctx, sessionToken)
	if err != nil {
		return sessao.Identity{}, err
	}

	record, err := p.repo.GetIdentidade(ctx, p.appID, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return sessao.Identity{}, sessao.ErrSessaoInvalida
		}
		return sessao.Identity{}, err
	}

	if err := p.repo.TouchIdentidade(ctx, p.appID, record.ID, util.Now()); err != nil {
		p.logger.Warn().Err(err).Str("identidade", record.ID).Msg("falha ao registrar acesso")
	}

	return sessao.Identity{
		ID:        record.ID,
		Origem:    record.Origem,
		Token:     sessionToken,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignOut revoga o token até sua expiração e notifica os observadores.
func (p *IdentityProvider) SignOut(ctx context.Context, sessionToken string) error {
	claims, err := p.validate(ctx, sessionToken)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return sessao.ErrSessaoInvalida
	}
	if err := p.redis.Set(ctx, RevokedKey(claims.ID), "revogada", ttl).Err(); err != nil {
		return fmt.Errorf("revogar sessão: %w", err)
	}

	p.notify(sessao.Change{Previous: sessao.Identity{ID: claims.Subject, Origem: claims.Origem, Token: sessionToken}})
	return nil
}

// OnIdentityChange registra fn para trocas de identidade; devolve o cancelamento.
func (p *IdentityProvider) OnIdentityChange(fn func(sessao.Change)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	key := p.next
	p.listeners[key] = fn

	return func() {
		p.mu.Lock()
		delete(p.listeners, key)
		p.mu.Unlock()
	}
}

func (p *IdentityProvider) validate(ctx context.Context, sessionToken string) (*Claims, error) {
	claims, err := p.jwt.ParseAndValidate(sessionToken)
	if err != nil {
		return nil, sessao.ErrSessaoInvalida
	}
	if claims.AppID != p.appID {
		return nil, sessao.ErrSessaoInvalida
	}

	_, err = p.redis.Get(ctx, RevokedKey(claims.ID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return claims, nil
	case err != nil:
		return nil, fmt.Errorf("consultar revogação: %w", err)
	default:
		return nil, sessao.ErrSessaoInvalida
	}
}

func (p *IdentityProvider) issue(record repo.Identidade) (sessao.Identity, error) {
	tok, err := p.jwt.GenerateSessionToken(record.ID, p.appID, record.Origem)
	if err != nil {
		return sessao.Identity{}, fmt.Errorf("emitir sessão: %w", err)
	}
	return sessao.Identity{
		ID:        record.ID,
		Origem:    record.Origem,
		Token:     tok.Token,
		ExpiresAt: tok.ExpiresAt,
	}, nil
}

func (p *IdentityProvider) notify(change sessao.Change) {
	p.mu.Lock()
	fns := make([]func(sessao.Change), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
