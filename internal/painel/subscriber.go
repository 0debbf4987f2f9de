package painel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pluckstudio/demandas/internal/demanda"
	"github.com/pluckstudio/demandas/internal/feed"
	"github.com/pluckstudio/demandas/internal/sessao"
)

// Update é o estado exibido após cada mudança: a lista inteira e o aviso vigente.
type Update struct {
	Demandas []demanda.View `json:"demandas"`
	Aviso    string         `json:"aviso,omitempty"`
}

// ListSubscriber mantém a lista exibida em sincronia com o armazenamento.
// Cada snapshot substitui a lista inteira; uma falha mantém a última lista boa.
type ListSubscriber struct {
	session *sessao.Session
	notices Notices
	loc     *time.Location
	logger  zerolog.Logger

	updates chan Update
	wg      sync.WaitGroup
	openMu  sync.Mutex

	mu           sync.Mutex
	ctx          context.Context
	cancel       context.CancelFunc
	views        []demanda.View
	aviso        string
	sub          *demanda.Subscription
	noticeSub    feed.Subscription
	stopIdentity func()
	started      bool
	closed       bool
}

// NewListSubscriber cria o assinante da lista da sessão.
func NewListSubscriber(sess *sessao.Session, notices Notices, loc *time.Location, logger zerolog.Logger) *ListSubscriber {
	if loc == nil {
		loc = time.UTC
	}
	return &ListSubscriber{
		session: sess,
		notices: notices,
		loc:     loc,
		logger:  logger.With().Str("component", "lista").Logger(),
		updates: make(chan Update, 1),
	}
}

// Start abre a assinatura da identidade atual e passa a acompanhar trocas de
// identidade. Com a sessão ainda não pronta, a assinatura é aberta quando a
// identidade chegar.
func (l *ListSubscriber) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.started || l.closed {
		l.mu.Unlock()
		return nil
	}
	l.started = true
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.mu.Unlock()

	stop := l.session.OnIdentityChange(func(sessao.Identity) { l.restart() })
	l.mu.Lock()
	l.stopIdentity = stop
	l.mu.Unlock()

	return l.open()
}

// List devolve a lista exibida no momento.
func (l *ListSubscriber) List() []demanda.View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copyViewsLocked()
}

// Aviso devolve o aviso vigente.
func (l *ListSubscriber) Aviso() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.aviso
}

// Updates entrega o estado mais recente; estados intermediários podem ser
// descartados. O canal é fechado por Close.
func (l *ListSubscriber) Updates() <-chan Update {
	return l.updates
}

// Close cancela as assinaturas e a escuta de identidade e aguarda as goroutines.
func (l *ListSubscriber) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	stop := l.stopIdentity
	sub, noticeSub := l.detachLocked()
	cancel := l.cancel
	l.mu.Unlock()

	if stop != nil {
		stop()
	}
	cancelSubs(sub, noticeSub)
	if cancel != nil {
		cancel()
	}
	l.wg.Wait()
	close(l.updates)
}

func (l *ListSubscriber) open() error {
	l.openMu.Lock()
	defer l.openMu.Unlock()

	scope, ready := l.session.Scope()
	store := l.session.Store()
	if store == nil {
		l.setAviso(MsgIndisponivel)
		return ErrIndisponivel
	}
	if !ready {
		return nil
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	ctx := l.ctx
	l.mu.Unlock()

	sub, err := store.Subscribe(ctx, scope)
	if err != nil {
		l.logger.Error().Err(err).Str("scope", scope.Path()).Msg("falha ao assinar demandas")
		l.setAviso(MsgErroCarregamento)
		announce(ctx, l.notices, scope, MsgErroCarregamento, l.logger)
		return fmt.Errorf("%w: %w", ErrCarregamento, err)
	}

	var noticeSub feed.Subscription
	aviso := ""
	if l.notices != nil {
		if aviso, err = l.notices.Current(ctx, scope); err != nil {
			l.logger.Warn().Err(err).Msg("falha ao ler aviso")
		}
		if noticeSub, err = l.notices.Watch(ctx, scope); err != nil {
			l.logger.Debug().Err(err).Msg("avisos ao vivo indisponíveis")
			noticeSub = nil
		}
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		cancelSubs(sub, noticeSub)
		return nil
	}
	prev, prevNotices := l.detachLocked()
	l.sub = sub
	l.noticeSub = noticeSub
	l.aviso = aviso
	l.wg.Add(1)
	go l.consume(ctx, scope, sub)
	if noticeSub != nil {
		l.wg.Add(1)
		go l.consumeNotices(ctx, scope, noticeSub)
	}
	l.mu.Unlock()

	cancelSubs(prev, prevNotices)
	return nil
}

func (l *ListSubscriber) restart() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	sub, noticeSub := l.detachLocked()
	l.views = nil
	l.aviso = ""
	l.publishLocked()
	l.mu.Unlock()

	cancelSubs(sub, noticeSub)
	if err := l.open(); err != nil {
		l.logger.Warn().Err(err).Msg("falha ao reabrir assinatura após troca de identidade")
	}
}

func (l *ListSubscriber) consume(ctx context.Context, scope demanda.Scope, sub *demanda.Subscription) {
	defer l.wg.Done()
	for snap := range sub.Snapshots() {
		if snap.Err != nil {
			l.logger.Error().Err(snap.Err).Str("scope", scope.Path()).Msg("falha no snapshot de demandas")
			l.mu.Lock()
			current := l.sub == sub
			if current {
				l.aviso = MsgErroCarregamento
				l.publishLocked()
			}
			l.mu.Unlock()
			if current {
				announce(ctx, l.notices, scope, MsgErroCarregamento, l.logger)
			}
			continue
		}

		views := demanda.ToViews(snap.Demandas, l.loc)
		l.mu.Lock()
		current := l.sub == sub
		recovered := false
		if current {
			l.views = views
			// Um snapshot bom apaga só o aviso de falha de carregamento.
			if l.aviso == MsgErroCarregamento {
				l.aviso = ""
				recovered = true
			}
			l.publishLocked()
		}
		l.mu.Unlock()
		if recovered {
			announce(ctx, l.notices, scope, "", l.logger)
		}
	}
}

func (l *ListSubscriber) consumeNotices(ctx context.Context, scope demanda.Scope, sub feed.Subscription) {
	defer l.wg.Done()
	for range sub.Events() {
		msg, err := l.notices.Current(ctx, scope)
		if err != nil {
			if ctx.Err() == nil {
				l.logger.Warn().Err(err).Msg("falha ao ler aviso")
			}
			continue
		}
		l.mu.Lock()
		if l.noticeSub == sub {
			l.aviso = msg
			l.publishLocked()
		}
		l.mu.Unlock()
	}
}

func (l *ListSubscriber) setAviso(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.aviso = msg
	l.publishLocked()
}

func (l *ListSubscriber) detachLocked() (*demanda.Subscription, feed.Subscription) {
	sub, noticeSub := l.sub, l.noticeSub
	l.sub, l.noticeSub = nil, nil
	return sub, noticeSub
}

// publishLocked troca o estado pendente pelo mais recente sem bloquear.
func (l *ListSubscriber) publishLocked() {
	if l.closed {
		return
	}
	u := Update{Demandas: l.copyViewsLocked(), Aviso: l.aviso}
	for {
		select {
		case l.updates <- u:
			return
		default:
		}
		select {
		case <-l.updates:
		default:
		}
	}
}

func (l *ListSubscriber) copyViewsLocked() []demanda.View {
	out := make([]demanda.View, len(l.views))
	copy(out, l.views)
	return out
}

func cancelSubs(sub *demanda.Subscription, noticeSub feed.Subscription) {
	if sub != nil {
		sub.Cancel()
	}
	if noticeSub != nil {
		_ = noticeSub.Cancel()
	}
}
