package painel

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

func waitUpdate(t *testing.T, l *ListSubscriber, match func(Update) bool) Update {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case u, ok := <-l.Updates():
			require.True(t, ok, "canal de atualizações fechado")
			if match(u) {
				return u
			}
		case <-deadline:
			t.Fatalf("atualização esperada não chegou; lista atual: %+v", l.List())
		}
	}
}

func TestListSubscriberFollowsWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	fx := newFixture(t)
	sess := fx.session(t)
	ctx := context.Background()
	scope, _ := sess.Scope()
	seed(t, fx, scope)

	list := NewListSubscriber(sess, fx.notices, time.UTC, zerolog.Nop())
	require.NoError(t, list.Start(ctx))

	waitUpdate(t, list, func(u Update) bool { return len(u.Demandas) == 1 })

	form := NewFormController(sess, fx.drafts, fx.notices, zerolog.Nop())
	form.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	draft := validDraft()
	draft.Demanda = "Mais recente"
	_, err := form.SubmitDraft(ctx, draft)
	require.NoError(t, err)

	u := waitUpdate(t, list, func(u Update) bool { return len(u.Demandas) == 2 && u.Aviso == MsgAdicionada })
	assert.Equal(t, "Mais recente", u.Demandas[0].Demanda)
	assert.Len(t, list.List(), 2)

	list.Close()
	assert.Zero(t, fx.bus.Subscribers(scope.Path()))
	_, open := <-list.Updates()
	assert.False(t, open)
}

func TestListSubscriberKeepsLastListOnError(t *testing.T) {
	defer goleak.VerifyNone(t)

	fx := newFixture(t)
	sess := fx.session(t)
	ctx := context.Background()
	scope, _ := sess.Scope()
	seed(t, fx, scope)

	list := NewListSubscriber(sess, fx.notices, time.UTC, zerolog.Nop())
	require.NoError(t, list.Start(ctx))
	defer list.Close()

	waitUpdate(t, list, func(u Update) bool { return len(u.Demandas) == 1 })

	fx.store.FailWith(errors.New("timeout"))
	require.NoError(t, fx.bus.Publish(ctx, feed.Event{Scope: scope.Path(), Kind: feed.KindCreated}))

	u := waitUpdate(t, list, func(u Update) bool { return u.Aviso == MsgErroCarregamento })
	assert.Len(t, u.Demandas, 1)
	assert.Len(t, list.List(), 1)
	assert.Equal(t, MsgErroCarregamento, list.Aviso())

	fx.store.FailWith(nil)
	seed(t, fx, scope)
	require.NoError(t, fx.bus.Publish(ctx, feed.Event{Scope: scope.Path(), Kind: feed.KindCreated}))

	waitUpdate(t, list, func(u Update) bool { return len(u.Demandas) == 2 })
	require.Eventually(t, func() bool {
		msg, err := fx.notices.Current(ctx, scope)
		return err == nil && msg == "" && list.Aviso() == ""
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, list.List(), 2)
}

func TestListSubscriberRecoveryKeepsSuccessNotice(t *testing.T) {
	defer goleak.VerifyNone(t)

	fx := newFixture(t)
	sess := fx.session(t)
	ctx := context.Background()

	list := NewListSubscriber(sess, fx.notices, time.UTC, zerolog.Nop())
	require.NoError(t, list.Start(ctx))
	defer list.Close()
	waitUpdate(t, list, func(u Update) bool { return len(u.Demandas) == 0 })

	_, err := NewFormController(sess, fx.drafts, fx.notices, zerolog.Nop()).SubmitDraft(ctx, validDraft())
	require.NoError(t, err)

	u := waitUpdate(t, list, func(u Update) bool { return len(u.Demandas) == 1 && u.Aviso == MsgAdicionada })
	assert.Equal(t, MsgAdicionada, u.Aviso)
	assert.Equal(t, MsgAdicionada, fx.aviso(t, sess))
}

func TestListSubscriberIgnoresErrorsFromDetachedSubscription(t *testing.T) {
	defer goleak.VerifyNone(t)

	fx := newFixture(t)
	sess := fx.session(t)
	ctx := context.Background()
	scope, _ := sess.Scope()

	fx.store.FailWith(errors.New("timeout"))
	stale, err := fx.live.Subscribe(ctx, scope)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(stale.Snapshots()) == 1 }, 2*time.Second, 5*time.Millisecond)
	stale.Cancel()
	fx.store.FailWith(nil)

	// A lista não está assinando stale: o erro pendente não pode virar aviso.
	list := NewListSubscriber(sess, fx.notices, time.UTC, zerolog.Nop())
	list.wg.Add(1)
	list.consume(ctx, scope, stale)

	assert.Empty(t, list.Aviso())
	assert.Empty(t, fx.aviso(t, sess))
}

func TestListSubscriberRestartsOnIdentityChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	fx := newFixture(t)
	sess := fx.session(t)
	ctx := context.Background()
	scope, _ := sess.Scope()
	seed(t, fx, scope)

	list := NewListSubscriber(sess, fx.notices, time.UTC, zerolog.Nop())
	require.NoError(t, list.Start(ctx))
	defer list.Close()

	waitUpdate(t, list, func(u Update) bool { return len(u.Demandas) == 1 })

	require.NoError(t, fx.boot.SignOut(ctx, sess.Identity().Token))
	assert.False(t, sess.Ready())

	u := waitUpdate(t, list, func(u Update) bool { return len(u.Demandas) == 0 })
	assert.Empty(t, u.Demandas)
	assert.Zero(t, fx.bus.Subscribers(scope.Path()))
}

func TestListSubscriberWaitsForReadySession(t *testing.T) {
	defer goleak.VerifyNone(t)

	fx := newFixture(t)
	sess := fx.unreadySession(t)

	list := NewListSubscriber(sess, fx.notices, time.UTC, zerolog.Nop())
	require.NoError(t, list.Start(context.Background()))
	assert.Empty(t, list.List())
	list.Close()
}
