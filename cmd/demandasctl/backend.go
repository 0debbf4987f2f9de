package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/pluckstudio/demandas/internal/config"
	"github.com/pluckstudio/demandas/internal/db"
	"github.com/pluckstudio/demandas/internal/demanda"
	"github.com/pluckstudio/demandas/internal/feed"
	"github.com/pluckstudio/demandas/internal/painel"
	"github.com/pluckstudio/demandas/internal/sessao"
)

// origemOperador marca sessões abertas pela linha de comando.
const origemOperador = "operador"

// backend reúne o que os comandos precisam para agir em nome de uma identidade.
type backend struct {
	pool    *pgxpool.Pool
	redis   *redis.Client
	bus     feed.Bus
	live    *demanda.Live
	notices painel.Notices
	loc     *time.Location
}

func connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		return nil, errors.New("defina DB_DSN ou DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := db.NewPool(ctx, dsn, config.PoolConfig{MinConns: 0, MaxConns: 2})
	if err != nil {
		return nil, fmt.Errorf("não foi possível conectar ao banco: %w", err)
	}
	return pool, nil
}

// openBackend conecta ao banco e, se REDIS_URL existir, ao Redis: assim as
// exclusões feitas aqui chegam às listas abertas no navegador.
func openBackend(ctx context.Context) (*backend, error) {
	pool, err := connectDB(ctx)
	if err != nil {
		return nil, err
	}
	b := &backend{pool: pool}

	loc, err := time.LoadLocation(envOr("DISPLAY_TZ", "America/Sao_Paulo"))
	if err != nil {
		b.Close()
		return nil, errors.New("DISPLAY_TZ inválido")
	}
	b.loc = loc

	if url := strings.TrimSpace(os.Getenv("REDIS_URL")); url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("redis parse: %w", err)
		}
		b.redis = redis.NewClient(opts)
		b.bus = feed.NewRedisBus(b.redis, log.Logger)
		b.notices = painel.NewBoard(painel.NewRedisSlot(b.redis, 30*time.Second), b.bus, log.Logger)
	} else {
		log.Warn().Msg("REDIS_URL ausente: listas abertas não serão avisadas")
		b.bus = feed.NewMemoryBus()
	}

	b.live = demanda.NewLive(demanda.NewPostgresStore(pool), b.bus, log.Logger)
	return b, nil
}

// session abre uma sessão pronta para a identidade dono.
func (b *backend) session(ctx context.Context, appID, dono string) (*sessao.Session, error) {
	dono = strings.TrimSpace(dono)
	if dono == "" {
		return nil, errors.New("--dono é obrigatório")
	}
	boot := sessao.NewBootstrapper(operatorProvider{owner: dono}, b.live, appID, "", log.Logger)
	sess, err := boot.Resume(ctx, origemOperador)
	if err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

func (b *backend) Close() {
	if b.bus != nil {
		_ = b.bus.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	b.pool.Close()
}

// operatorProvider devolve sempre a mesma identidade; o operador escolhe o dono
// pela linha de comando e nunca cria identidades novas.
type operatorProvider struct {
	owner string
}

var errOperador = errors.New("operação não suportada pela linha de comando")

func (p operatorProvider) SignInAnonymous(ctx context.Context) (sessao.Identity, error) {
	return sessao.Identity{}, errOperador
}

func (p operatorProvider) SignInWithToken(ctx context.Context, token string) (sessao.Identity, error) {
	return sessao.Identity{}, errOperador
}

func (p operatorProvider) Resume(ctx context.Context, sessionToken string) (sessao.Identity, error) {
	return sessao.Identity{ID: p.owner, Origem: origemOperador, Token: sessionToken}, nil
}

func (p operatorProvider) SignOut(ctx context.Context, sessionToken string) error {
	return nil
}

func (p operatorProvider) OnIdentityChange(fn func(sessao.Change)) func() {
	return func() {}
}
