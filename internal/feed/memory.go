package feed

import (
	"context"
	"sync"
)

// MemoryBus entrega eventos dentro do próprio processo.
// Serve para testes e para execução local com uma única instância.
type MemoryBus struct {
	mu     sync.Mutex
	subs   map[string]map[uint64]*subscription
	nextID uint64
	closed bool
}

// NewMemoryBus cria barramento vazio.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[uint64]*subscription)}
}

// Publish entrega o evento a todas as assinaturas do escopo.
func (b *MemoryBus) Publish(ctx context.Context, ev Event) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	targets := make([]*subscription, 0, len(b.subs[ev.Scope]))
	for _, sub := range b.subs[ev.Scope] {
		targets = append(targets, sub)
	}
	b.mu.Unlock()

	for _, sub := range targets {
		sub.deliver(ev)
	}
	return nil
}

// Subscribe registra nova assinatura para o escopo.
func (b *MemoryBus) Subscribe(ctx context.Context, scope string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	b.nextID++
	id := b.nextID
	sub := newSubscription()
	sub.stop = func() error {
		b.remove(scope, id)
		return nil
	}

	if b.subs[scope] == nil {
		b.subs[scope] = make(map[uint64]*subscription)
	}
	b.subs[scope][id] = sub
	return sub, nil
}

// Subscribers informa quantas assinaturas ativas existem no escopo.
func (b *MemoryBus) Subscribers(scope string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[scope])
}

// Close encerra todas as assinaturas com ErrClosed.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	all := b.subs
	b.subs = make(map[string]map[uint64]*subscription)
	b.mu.Unlock()

	for _, byID := range all {
		for _, sub := range byID {
			sub.finish(ErrClosed)
		}
	}
	return nil
}

func (b *MemoryBus) remove(scope string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	byID, ok := b.subs[scope]
	if !ok {
		return
	}
	delete(byID, id)
	if len(byID) == 0 {
		delete(b.subs, scope)
	}
}
