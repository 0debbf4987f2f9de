package painel

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluckstudio/demandas/internal/demanda"
	"github.com/pluckstudio/demandas/internal/feed"
)

type stubRedis struct {
	strings map[string]string
	hashes  map[string]map[string]string
	ttls    map[string]time.Duration
}

func newStubRedis() *stubRedis {
	return &stubRedis{
		strings: make(map[string]string),
		hashes:  make(map[string]map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	s.strings[key] = fmt.Sprint(value)
	s.ttls[key] = expiration
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.strings[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) HSet(ctx context.Context, key string, values ...any) *redis.IntCmd {
	if s.hashes[key] == nil {
		s.hashes[key] = make(map[string]string)
	}
	for i := 0; i+1 < len(values); i += 2 {
		s.hashes[key][fmt.Sprint(values[i])] = fmt.Sprint(values[i+1])
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(values) / 2))
	return cmd
}

func (s *stubRedis) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	cmd := redis.NewMapStringStringCmd(ctx)
	out := make(map[string]string, len(s.hashes[key]))
	for k, v := range s.hashes[key] {
		out[k] = v
	}
	cmd.SetVal(out)
	return cmd
}

func (s *stubRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	s.ttls[key] = expiration
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.hashes[key]; ok {
			delete(s.hashes, key)
			removed++
		}
		if _, ok := s.strings[key]; ok {
			delete(s.strings, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

var testScope = demanda.Scope{AppID: "app", OwnerID: "dono"}

func TestRedisDrafts(t *testing.T) {
	rc := newStubRedis()
	drafts := &RedisDrafts{redis: rc, ttl: time.Hour}
	ctx := context.Background()

	require.NoError(t, drafts.SetField(ctx, testScope, demanda.CampoDemanda, "Limpeza de bueiro"))
	require.NoError(t, drafts.SetField(ctx, testScope, demanda.CampoDataDemanda, "01/04/2024"))
	assert.Equal(t, time.Hour, rc.ttls["rascunho:app:dono"])

	draft, err := drafts.Load(ctx, testScope)
	require.NoError(t, err)
	assert.Equal(t, "Limpeza de bueiro", draft.Demanda)
	assert.Equal(t, "01/04/2024", draft.DataDemanda)

	require.NoError(t, drafts.Reset(ctx, testScope))
	draft, err = drafts.Load(ctx, testScope)
	require.NoError(t, err)
	assert.Equal(t, demanda.Draft{}, draft)
}

func TestBoardKeepsSingleNotice(t *testing.T) {
	rc := newStubRedis()
	bus := feed.NewMemoryBus()
	board := NewBoard(&RedisSlot{redis: rc, ttl: 30 * time.Second}, bus, zerolog.Nop())
	ctx := context.Background()

	msg, err := board.Current(ctx, testScope)
	require.NoError(t, err)
	assert.Empty(t, msg)

	watch, err := board.Watch(ctx, testScope)
	require.NoError(t, err)
	defer watch.Cancel()

	require.NoError(t, board.Show(ctx, testScope, MsgAdicionada))
	require.NoError(t, board.Show(ctx, testScope, MsgExcluida))

	msg, err = board.Current(ctx, testScope)
	require.NoError(t, err)
	assert.Equal(t, MsgExcluida, msg)
	assert.Equal(t, 30*time.Second, rc.ttls["aviso:app:dono"])

	select {
	case ev := <-watch.Events():
		assert.Equal(t, KindAviso, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("evento de aviso não entregue")
	}
}

func TestBoardRejectsInvalidScope(t *testing.T) {
	board := NewBoard(NewMemorySlot(), nil, zerolog.Nop())
	require.ErrorIs(t, board.Show(context.Background(), demanda.Scope{}, "x"), demanda.ErrEscopoInvalido)
}

func TestMensagem(t *testing.T) {
	assert.Empty(t, Mensagem(nil))
	assert.Equal(t, MsgErroGravacao, Mensagem(fmt.Errorf("%w: detalhe", ErrGravacao)))
	assert.Equal(t, MsgDataInvalida, Mensagem(fmt.Errorf("camada: %w", demanda.ErrDataInvalida)))
	assert.Equal(t, MsgErroInesperado, Mensagem(fmt.Errorf("outro")))
	assert.True(t, IsValidation(demanda.ErrStatusInvalido))
	assert.False(t, IsValidation(ErrGravacao))
}
