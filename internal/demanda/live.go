package demanda

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pluckstudio/demandas/internal/feed"
)

// Live combina o Store com o feed de mudanças para oferecer consultas ao vivo.
// Escritas feitas por aqui notificam os assinantes do escopo.
type Live struct {
	store  Store
	bus    feed.Bus
	logger zerolog.Logger
}

// NewLive cria a fachada de armazenamento ao vivo.
func NewLive(store Store, bus feed.Bus, logger zerolog.Logger) *Live {
	return &Live{store: store, bus: bus, logger: logger}
}

// Create grava e notifica o escopo. Falha ao notificar não desfaz a gravação.
func (l *Live) Create(ctx context.Context, scope Scope, d Demanda) (string, error) {
	id, err := l.store.Create(ctx, scope, d)
	if err != nil {
		return "", err
	}
	l.notify(ctx, scope, feed.KindCreated, id)
	return id, nil
}

// Delete remove e notifica o escopo.
func (l *Live) Delete(ctx context.Context, scope Scope, id string) error {
	if err := l.store.Delete(ctx, scope, id); err != nil {
		return err
	}
	l.notify(ctx, scope, feed.KindDeleted, id)
	return nil
}

// List lê o estado atual do escopo, sem ordenação.
func (l *Live) List(ctx context.Context, scope Scope) ([]Demanda, error) {
	return l.store.List(ctx, scope)
}

func (l *Live) notify(ctx context.Context, scope Scope, kind, id string) {
	ev := feed.Event{Scope: scope.Path(), Kind: kind, ID: id, At: time.Now().UTC()}
	if err := l.bus.Publish(ctx, ev); err != nil {
		l.logger.Warn().Err(err).Str("scope", scope.Path()).Str("kind", kind).Msg("demanda: falha ao notificar mudança")
	}
}

// Snapshot é o conjunto completo de demandas do escopo em um instante,
// ou o erro que impediu a leitura.
type Snapshot struct {
	Demandas []Demanda
	Err      error
}

// Subscription entrega snapshots até Cancel.
type Subscription struct {
	snapshots chan Snapshot
	feedSub   feed.Subscription
	cancel    context.CancelFunc
	done      chan struct{}
	once      sync.Once
}

// Snapshots é fechado quando a assinatura termina.
// O buffer guarda só o snapshot mais recente.
func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.snapshots
}

// Cancel encerra a assinatura e aguarda a goroutine de leitura terminar.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
		_ = s.feedSub.Cancel()
		<-s.done
	})
}

// Subscribe abre uma consulta ao vivo sobre o escopo: um snapshot inicial e
// um novo snapshot após cada mudança notificada. Rajadas de eventos geram
// uma única releitura.
func (l *Live) Subscribe(ctx context.Context, scope Scope) (*Subscription, error) {
	if !scope.Valid() {
		return nil, ErrEscopoInvalido
	}

	feedSub, err := l.bus.Subscribe(ctx, scope.Path())
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		snapshots: make(chan Snapshot, 1),
		feedSub:   feedSub,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go l.run(runCtx, scope, sub)
	return sub, nil
}

func (l *Live) run(ctx context.Context, scope Scope, sub *Subscription) {
	defer close(sub.done)
	defer close(sub.snapshots)

	l.emit(ctx, scope, sub)

	events := sub.feedSub.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				if err := sub.feedSub.Err(); err != nil && ctx.Err() == nil {
					push(ctx, sub.snapshots, Snapshot{Err: err})
				}
				return
			}
			if !drain(events) {
				l.emit(ctx, scope, sub)
				if err := sub.feedSub.Err(); err != nil && ctx.Err() == nil {
					push(ctx, sub.snapshots, Snapshot{Err: err})
				}
				return
			}
			l.emit(ctx, scope, sub)
		}
	}
}

func (l *Live) emit(ctx context.Context, scope Scope, sub *Subscription) {
	records, err := l.store.List(ctx, scope)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		l.logger.Error().Err(err).Str("scope", scope.Path()).Msg("demanda: falha ao ler snapshot")
	}
	push(ctx, sub.snapshots, Snapshot{Demandas: records, Err: err})
}

// drain descarta eventos já enfileirados. Retorna false se o canal fechou.
func drain(events <-chan feed.Event) bool {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

// push substitui o snapshot pendente pelo mais recente.
func push(ctx context.Context, out chan Snapshot, snap Snapshot) {
	for {
		select {
		case out <- snap:
			return
		case <-ctx.Done():
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
