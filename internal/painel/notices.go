package painel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pluckstudio/demandas/internal/demanda"
	"github.com/pluckstudio/demandas/internal/feed"
)

// KindAviso marca eventos de troca de aviso no feed.
const KindAviso = "aviso"

// Notices é o slot único de aviso por identidade. Cada Show substitui o anterior.
type Notices interface {
	Show(ctx context.Context, scope demanda.Scope, msg string) error
	Current(ctx context.Context, scope demanda.Scope) (string, error)
	Watch(ctx context.Context, scope demanda.Scope) (feed.Subscription, error)
}

// NoticeSlot guarda o texto do aviso.
type NoticeSlot interface {
	Set(ctx context.Context, key, msg string) error
	Get(ctx context.Context, key string) (string, error)
}

// Board implementa Notices sobre um slot e avisa os observadores pelo feed.
type Board struct {
	slot   NoticeSlot
	bus    feed.Bus
	logger zerolog.Logger
}

// NewBoard cria o quadro de avisos.
func NewBoard(slot NoticeSlot, bus feed.Bus, logger zerolog.Logger) *Board {
	return &Board{slot: slot, bus: bus, logger: logger.With().Str("component", "avisos").Logger()}
}

// Show grava o aviso e notifica quem acompanha o escopo.
func (b *Board) Show(ctx context.Context, scope demanda.Scope, msg string) error {
	if !scope.Valid() {
		return demanda.ErrEscopoInvalido
	}
	if err := b.slot.Set(ctx, noticeKey(scope), msg); err != nil {
		return fmt.Errorf("gravar aviso: %w", err)
	}
	if b.bus != nil {
		ev := feed.Event{Scope: noticeScope(scope), Kind: KindAviso, At: time.Now().UTC()}
		if err := b.bus.Publish(ctx, ev); err != nil {
			b.logger.Warn().Err(err).Str("scope", scope.Path()).Msg("falha ao notificar aviso")
		}
	}
	return nil
}

// Current devolve o aviso vigente ou "".
func (b *Board) Current(ctx context.Context, scope demanda.Scope) (string, error) {
	if !scope.Valid() {
		return "", demanda.ErrEscopoInvalido
	}
	return b.slot.Get(ctx, noticeKey(scope))
}

// Watch assina as trocas de aviso do escopo.
func (b *Board) Watch(ctx context.Context, scope demanda.Scope) (feed.Subscription, error) {
	if b.bus == nil {
		return nil, feed.ErrClosed
	}
	return b.bus.Subscribe(ctx, noticeScope(scope))
}

// announce publica o aviso; falhas são só registradas.
func announce(ctx context.Context, notices Notices, scope demanda.Scope, msg string, logger zerolog.Logger) {
	if notices == nil {
		return
	}
	if err := notices.Show(ctx, scope, msg); err != nil {
		logger.Warn().Err(err).Msg("falha ao publicar aviso")
	}
}

func noticeKey(scope demanda.Scope) string {
	return "aviso:" + scope.AppID + ":" + scope.OwnerID
}

func noticeScope(scope demanda.Scope) string {
	return scope.Path() + "/avisos"
}

type stringCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSlot guarda avisos no Redis com expiração.
type RedisSlot struct {
	redis stringCommander
	ttl   time.Duration
}

// NewRedisSlot cria o slot; ttl define por quanto tempo o aviso permanece.
func NewRedisSlot(client *redis.Client, ttl time.Duration) *RedisSlot {
	return &RedisSlot{redis: client, ttl: ttl}
}

func (s *RedisSlot) Set(ctx context.Context, key, msg string) error {
	return s.redis.Set(ctx, key, msg, s.ttl).Err()
}

func (s *RedisSlot) Get(ctx context.Context, key string) (string, error) {
	val, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// MemorySlot guarda avisos em memória, sem expiração.
type MemorySlot struct {
	mu   sync.Mutex
	msgs map[string]string
}

// NewMemorySlot cria um slot vazio.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{msgs: make(map[string]string)}
}

func (s *MemorySlot) Set(ctx context.Context, key, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs[key] = msg
	return nil
}

func (s *MemorySlot) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msgs[key], nil
}
