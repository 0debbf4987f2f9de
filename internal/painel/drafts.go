package painel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pluckstudio/demandas/internal/demanda"
)

// DraftStore guarda o rascunho do formulário por identidade.
type DraftStore interface {
	Load(ctx context.Context, scope demanda.Scope) (demanda.Draft, error)
	SetField(ctx context.Context, scope demanda.Scope, campo, valor string) error
	Reset(ctx context.Context, scope demanda.Scope) error
}

type hashCommander interface {
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisDrafts guarda cada rascunho como hash Redis.
type RedisDrafts struct {
	redis hashCommander
	ttl   time.Duration
}

// NewRedisDrafts cria o armazenamento de rascunhos; ttl renova a cada alteração.
func NewRedisDrafts(client *redis.Client, ttl time.Duration) *RedisDrafts {
	return &RedisDrafts{redis: client, ttl: ttl}
}

func (r *RedisDrafts) Load(ctx context.Context, scope demanda.Scope) (demanda.Draft, error) {
	fields, err := r.redis.HGetAll(ctx, draftKey(scope)).Result()
	if err != nil {
		return demanda.Draft{}, fmt.Errorf("ler rascunho: %w", err)
	}
	return demanda.DraftFromFields(fields), nil
}

func (r *RedisDrafts) SetField(ctx context.Context, scope demanda.Scope, campo, valor string) error {
	key := draftKey(scope)
	if err := r.redis.HSet(ctx, key, campo, valor).Err(); err != nil {
		return fmt.Errorf("gravar rascunho: %w", err)
	}
	if r.ttl > 0 {
		if err := r.redis.Expire(ctx, key, r.ttl).Err(); err != nil {
			return fmt.Errorf("renovar rascunho: %w", err)
		}
	}
	return nil
}

func (r *RedisDrafts) Reset(ctx context.Context, scope demanda.Scope) error {
	if err := r.redis.Del(ctx, draftKey(scope)).Err(); err != nil {
		return fmt.Errorf("limpar rascunho: %w", err)
	}
	return nil
}

func draftKey(scope demanda.Scope) string {
	return "rascunho:" + scope.AppID + ":" + scope.OwnerID
}

// MemoryDrafts guarda rascunhos em memória.
type MemoryDrafts struct {
	mu     sync.Mutex
	drafts map[demanda.Scope]demanda.Draft
}

// NewMemoryDrafts cria o armazenamento vazio.
func NewMemoryDrafts() *MemoryDrafts {
	return &MemoryDrafts{drafts: make(map[demanda.Scope]demanda.Draft)}
}

func (m *MemoryDrafts) Load(ctx context.Context, scope demanda.Scope) (demanda.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drafts[scope], nil
}

func (m *MemoryDrafts) SetField(ctx context.Context, scope demanda.Scope, campo, valor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.drafts[scope]
	if err := d.Set(campo, valor); err != nil {
		return err
	}
	m.drafts[scope] = d
	return nil
}

func (m *MemoryDrafts) Reset(ctx context.Context, scope demanda.Scope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, scope)
	return nil
}
