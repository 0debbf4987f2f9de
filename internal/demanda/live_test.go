package demanda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pluckstudio/demandas/internal/feed"
)

func nextSnapshot(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots():
		require.True(t, ok, "assinatura encerrada")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot não chegou")
		return Snapshot{}
	}
}

func TestLiveSubscribeDeliversSnapshots(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := feed.NewMemoryBus()
	live := NewLive(NewMemoryStore(), bus, zerolog.Nop())
	scope := Scope{AppID: "app", OwnerID: "dono"}
	ctx := context.Background()

	sub, err := live.Subscribe(ctx, scope)
	require.NoError(t, err)

	initial := nextSnapshot(t, sub)
	require.NoError(t, initial.Err)
	assert.Empty(t, initial.Demandas)

	id, err := live.Create(ctx, scope, Demanda{Demanda: "nova", SecretariaResponsavel: "Obras"})
	require.NoError(t, err)

	snap := nextSnapshot(t, sub)
	require.Len(t, snap.Demandas, 1)
	assert.Equal(t, id, snap.Demandas[0].ID)

	require.NoError(t, live.Delete(ctx, scope, id))
	assert.Empty(t, nextSnapshot(t, sub).Demandas)

	sub.Cancel()
	sub.Cancel()
	assert.Zero(t, bus.Subscribers(scope.Path()))
}

func TestLiveScopesAreIsolated(t *testing.T) {
	defer goleak.VerifyNone(t)

	live := NewLive(NewMemoryStore(), feed.NewMemoryBus(), zerolog.Nop())
	mine := Scope{AppID: "app", OwnerID: "a"}
	theirs := Scope{AppID: "app", OwnerID: "b"}
	ctx := context.Background()

	sub, err := live.Subscribe(ctx, mine)
	require.NoError(t, err)
	defer sub.Cancel()
	nextSnapshot(t, sub)

	_, err = live.Create(ctx, theirs, Demanda{Demanda: "alheia"})
	require.NoError(t, err)

	select {
	case snap := <-sub.Snapshots():
		t.Fatalf("snapshot inesperado: %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}

	recs, err := live.List(ctx, mine)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLiveSnapshotError(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewMemoryStore()
	bus := feed.NewMemoryBus()
	live := NewLive(store, bus, zerolog.Nop())
	scope := Scope{AppID: "app", OwnerID: "dono"}
	ctx := context.Background()

	sub, err := live.Subscribe(ctx, scope)
	require.NoError(t, err)
	defer sub.Cancel()
	nextSnapshot(t, sub)

	boom := errors.New("falha de leitura")
	store.FailWith(boom)
	require.NoError(t, bus.Publish(ctx, feed.Event{Scope: scope.Path(), Kind: feed.KindCreated}))

	snap := nextSnapshot(t, sub)
	assert.ErrorIs(t, snap.Err, boom)
}

func TestLiveFeedClosedEndsSubscription(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := feed.NewMemoryBus()
	live := NewLive(NewMemoryStore(), bus, zerolog.Nop())
	scope := Scope{AppID: "app", OwnerID: "dono"}

	sub, err := live.Subscribe(context.Background(), scope)
	require.NoError(t, err)
	nextSnapshot(t, sub)

	require.NoError(t, bus.Close())

	snap := nextSnapshot(t, sub)
	assert.ErrorIs(t, snap.Err, feed.ErrClosed)
	sub.Cancel()
}

func TestLiveRejectsInvalidScope(t *testing.T) {
	live := NewLive(NewMemoryStore(), feed.NewMemoryBus(), zerolog.Nop())
	_, err := live.Subscribe(context.Background(), Scope{AppID: "app"})
	assert.ErrorIs(t, err, ErrEscopoInvalido)
}
