package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusDeliversByScope(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	a, err := bus.Subscribe(ctx, "artifacts/app/users/a/demands")
	require.NoError(t, err)
	defer a.Cancel()
	b, err := bus.Subscribe(ctx, "artifacts/app/users/b/demands")
	require.NoError(t, err)
	defer b.Cancel()

	require.NoError(t, bus.Publish(ctx, Event{Scope: "artifacts/app/users/a/demands", Kind: KindCreated, ID: "1"}))

	select {
	case ev := <-a.Events():
		assert.Equal(t, "1", ev.ID)
		assert.Equal(t, KindCreated, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("evento não entregue")
	}

	select {
	case ev := <-b.Events():
		t.Fatalf("escopo alheio recebeu evento: %+v", ev)
	default:
	}
}

func TestMemoryBusDropsWhenFull(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()
	sub, err := bus.Subscribe(ctx, "s")
	require.NoError(t, err)
	defer sub.Cancel()

	for i := 0; i < subscriptionBuffer*3; i++ {
		require.NoError(t, bus.Publish(ctx, Event{Scope: "s", Kind: KindDeleted}))
	}
	assert.Len(t, sub.Events(), subscriptionBuffer)
}

func TestMemoryBusCancelAndClose(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, "s")
	require.NoError(t, err)
	require.Equal(t, 1, bus.Subscribers("s"))

	require.NoError(t, sub.Cancel())
	require.NoError(t, sub.Cancel())
	assert.Zero(t, bus.Subscribers("s"))
	_, open := <-sub.Events()
	assert.False(t, open)
	assert.NoError(t, sub.Err())

	other, err := bus.Subscribe(ctx, "s")
	require.NoError(t, err)
	require.NoError(t, bus.Close())
	_, open = <-other.Events()
	assert.False(t, open)
	assert.True(t, errors.Is(other.Err(), ErrClosed))

	_, err = bus.Subscribe(ctx, "s")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, bus.Publish(ctx, Event{Scope: "s"}), ErrClosed)
}

func TestEventCodec(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	payload, err := encode(Event{Scope: "x", Kind: KindCreated, ID: "id-1", At: at})
	require.NoError(t, err)

	ev, err := decode(payload)
	require.NoError(t, err)
	assert.Equal(t, "x", ev.Scope)
	assert.True(t, ev.At.Equal(at))

	_, err = decode([]byte("{"))
	assert.Error(t, err)
}
