// Package sessaotest oferece um provedor de identidade em memória para testes.
package sessaotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pluckstudio/demandas/internal/sessao"
)

// Provider implementa sessao.Provider sem rede nem banco.
type Provider struct {
	mu        sync.Mutex
	seq       int
	sessions  map[string]sessao.Identity
	tokens    map[string]string
	listeners map[int]func(sessao.Change)
	nextLis   int
	issued    int

	// Fail, quando definido, é devolvido por todas as operações de entrada.
	Fail error
}

// New cria um provedor vazio.
func New() *Provider {
	return &Provider{
		sessions:  make(map[string]sessao.Identity),
		tokens:    make(map[string]string),
		listeners: make(map[int]func(sessao.Change)),
	}
}

// AcceptToken faz o provedor aceitar token como credencial de ownerID.
func (p *Provider) AcceptToken(token, ownerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[token] = ownerID
}

func (p *Provider) SignInAnonymous(ctx context.Context) (sessao.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail != nil {
		return sessao.Identity{}, p.Fail
	}
	p.seq++
	return p.issue(fmt.Sprintf("anon-%d", p.seq), sessao.OrigemAnonima), nil
}

func (p *Provider) SignInWithToken(ctx context.Context, token string) (sessao.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail != nil {
		return sessao.Identity{}, p.Fail
	}
	owner, ok := p.tokens[token]
	if !ok {
		return sessao.Identity{}, errors.New("token customizado recusado")
	}
	return p.issue(owner, sessao.OrigemToken), nil
}

func (p *Provider) Resume(ctx context.Context, sessionToken string) (sessao.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.sessions[sessionToken]
	if !ok {
		return sessao.Identity{}, sessao.ErrSessaoInvalida
	}
	return id, nil
}

func (p *Provider) SignOut(ctx context.Context, sessionToken string) error {
	p.mu.Lock()
	id, ok := p.sessions[sessionToken]
	delete(p.sessions, sessionToken)
	fns := make([]func(sessao.Change), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	if !ok {
		return sessao.ErrSessaoInvalida
	}
	for _, fn := range fns {
		fn(sessao.Change{Previous: id})
	}
	return nil
}

func (p *Provider) OnIdentityChange(fn func(sessao.Change)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextLis++
	key := p.nextLis
	p.listeners[key] = fn
	return func() {
		p.mu.Lock()
		delete(p.listeners, key)
		p.mu.Unlock()
	}
}

// Listeners devolve quantos observadores estão registrados.
func (p *Provider) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

func (p *Provider) issue(owner, origem string) sessao.Identity {
	p.issued++
	token := fmt.Sprintf("sessao-%s-%d", owner, p.issued)
	id := sessao.Identity{ID: owner, Origem: origem, Token: token, ExpiresAt: time.Now().Add(time.Hour)}
	p.sessions[token] = id
	return id
}
