package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pluckstudio/demandas/internal/auth"
	"github.com/pluckstudio/demandas/internal/config"
	"github.com/pluckstudio/demandas/internal/db"
	"github.com/pluckstudio/demandas/internal/demanda"
	"github.com/pluckstudio/demandas/internal/feed"
	internalhttp "github.com/pluckstudio/demandas/internal/http"
	"github.com/pluckstudio/demandas/internal/painel"
	"github.com/pluckstudio/demandas/internal/repo"
	"github.com/pluckstudio/demandas/internal/sessao"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN, cfg.DB)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	checks := map[string]internalhttp.Check{
		"postgres": func(ctx context.Context) error { return pool.Ping(ctx) },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}

	var bus feed.Bus
	switch cfg.Feed.Driver {
	case config.FeedNATS:
		natsBus, err := feed.ConnectNATS(cfg.Feed.NATSURL, log.Logger)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		checks["nats"] = func(ctx context.Context) error { return natsBus.Ping() }
		bus = natsBus
	case config.FeedMemory:
		log.Warn().Msg("feed em memória: atualizações ao vivo só valem para esta instância")
		bus = feed.NewMemoryBus()
	default:
		bus = feed.NewRedisBus(redisClient, log.Logger)
	}
	defer bus.Close()

	store := demanda.NewLive(demanda.NewPostgresStore(pool), bus, log.Logger)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	customTokens := auth.NewCustomTokens(cfg.CustomTokenSecret)
	provider := auth.NewIdentityProvider(cfg.AppID, repo.New(pool), redisClient, jwtManager, customTokens, log.Logger)

	handler := internalhttp.NewRouter(cfg, internalhttp.Dependencies{
		Bootstrapper: sessao.NewBootstrapper(provider, store, cfg.AppID, cfg.BootstrapToken, log.Logger),
		Drafts:       painel.NewRedisDrafts(redisClient, cfg.DraftTTL),
		Notices:      painel.NewBoard(painel.NewRedisSlot(redisClient, cfg.NoticeTTL), bus, log.Logger),
		Checks:       checks,
		Logger:       log.Logger,
	})

	// Streams SSE só terminam quando o contexto base é cancelado no shutdown.
	baseCtx, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(stopStreams)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("app", cfg.AppID).Str("feed", cfg.Feed.Driver).Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
