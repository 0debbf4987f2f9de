package painel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pluckstudio/demandas/internal/demanda"
	"github.com/pluckstudio/demandas/internal/feed"
	"github.com/pluckstudio/demandas/internal/sessao"
	"github.com/pluckstudio/demandas/internal/sessao/sessaotest"
)

type fixture struct {
	provider *sessaotest.Provider
	store    *demanda.MemoryStore
	bus      *feed.MemoryBus
	live     *demanda.Live
	notices  *Board
	drafts   *MemoryDrafts
	boot     *sessao.Bootstrapper
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		provider: sessaotest.New(),
		store:    demanda.NewMemoryStore(),
		bus:      feed.NewMemoryBus(),
		drafts:   NewMemoryDrafts(),
	}
	fx.live = demanda.NewLive(fx.store, fx.bus, zerolog.Nop())
	fx.notices = NewBoard(NewMemorySlot(), fx.bus, zerolog.Nop())
	fx.boot = sessao.NewBootstrapper(fx.provider, fx.live, "app-teste", "", zerolog.Nop())
	return fx
}

func (fx *fixture) session(t *testing.T) *sessao.Session {
	t.Helper()
	sess, err := fx.boot.Start(context.Background(), "", "")
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return sess
}

func (fx *fixture) unreadySession(t *testing.T) *sessao.Session {
	t.Helper()
	fx.provider.Fail = errors.New("fora do ar")
	defer func() { fx.provider.Fail = nil }()
	sess, err := fx.boot.Start(context.Background(), "", "")
	require.ErrorIs(t, err, sessao.ErrAutenticacao)
	t.Cleanup(sess.Close)
	return sess
}

func (fx *fixture) aviso(t *testing.T, sess *sessao.Session) string {
	t.Helper()
	scope, ok := sess.Scope()
	require.True(t, ok)
	msg, err := fx.notices.Current(context.Background(), scope)
	require.NoError(t, err)
	return msg
}

func (fx *fixture) records(t *testing.T, sess *sessao.Session) []demanda.Demanda {
	t.Helper()
	scope, ok := sess.Scope()
	require.True(t, ok)
	recs, err := fx.store.List(context.Background(), scope)
	require.NoError(t, err)
	return recs
}

func validDraft() demanda.Draft {
	return demanda.Draft{
		Demanda:               "Troca de lâmpadas na praça",
		TipoServico:           "Iluminação",
		Prioridade:            "Alta",
		Prazo:                 "15 dias",
		SecretariaResponsavel: "Obras",
		Status:                "Pendente",
		DataDemanda:           "05/03/2024",
	}
}

func at(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &t
}
