// Package sessao estabelece a identidade da sessão e o contexto injetado nos
// componentes que leem e gravam demandas.
package sessao

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pluckstudio/demandas/internal/demanda"
)

var (
	// ErrAutenticacao indica falha do provedor de identidade.
	ErrAutenticacao = errors.New("falha ao autenticar sessão")
	// ErrSessaoInvalida indica token de sessão ausente, expirado ou revogado.
	ErrSessaoInvalida = errors.New("sessão inválida")
)

const (
	OrigemAnonima = "anonima"
	OrigemToken   = "token"
)

// Identity é a identidade opaca emitida pelo provedor.
type Identity struct {
	ID        string    `json:"id"`
	Origem    string    `json:"origem"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expira_em"`
}

// Empty indica ausência de identidade.
func (i Identity) Empty() bool {
	return i.ID == ""
}

// Change descreve a troca de identidade notificada pelo provedor.
// Current vazio significa que Previous encerrou a sessão.
type Change struct {
	Previous Identity
	Current  Identity
}

// Provider é o provedor de identidade consumido pela sessão.
type Provider interface {
	SignInAnonymous(ctx context.Context) (Identity, error)
	SignInWithToken(ctx context.Context, token string) (Identity, error)
	Resume(ctx context.Context, sessionToken string) (Identity, error)
	SignOut(ctx context.Context, sessionToken string) error
	OnIdentityChange(fn func(Change)) (cancel func())
}

// DocumentStore é o handle de armazenamento compartilhado pela sessão.
type DocumentStore interface {
	Create(ctx context.Context, scope demanda.Scope, d demanda.Demanda) (string, error)
	Delete(ctx context.Context, scope demanda.Scope, id string) error
	List(ctx context.Context, scope demanda.Scope) ([]demanda.Demanda, error)
	Subscribe(ctx context.Context, scope demanda.Scope) (*demanda.Subscription, error)
}

// Session carrega a identidade e o handle do armazenamento.
// Só o Bootstrapper altera a identidade; os demais componentes apenas leem.
type Session struct {
	appID string
	store DocumentStore

	mu       sync.RWMutex
	identity Identity
	ready    bool

	observers  observers
	stopListen func()
	closeOnce  sync.Once
}

func newSession(appID string, store DocumentStore) *Session {
	return &Session{appID: appID, store: store, observers: newObservers()}
}

// AppID devolve o identificador da aplicação que delimita o armazenamento.
func (s *Session) AppID() string {
	return s.appID
}

// Store devolve o handle do armazenamento (nil quando indisponível).
func (s *Session) Store() DocumentStore {
	return s.store
}

// Identity devolve a identidade atual.
func (s *Session) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Ready indica que a resolução de identidade terminou com sucesso.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Scope devolve a coleção da identidade atual; false se a sessão não está pronta.
func (s *Session) Scope() (demanda.Scope, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return demanda.Scope{}, false
	}
	return demanda.Scope{AppID: s.appID, OwnerID: s.identity.ID}, true
}

// OnIdentityChange registra fn para cada troca de identidade da sessão.
// O cancelamento devolvido deve ser chamado quando o observador for descartado.
func (s *Session) OnIdentityChange(fn func(Identity)) (cancel func()) {
	return s.observers.add(fn)
}

// Close cancela a escuta do provedor e descarta os observadores.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.stopListen != nil {
			s.stopListen()
		}
		s.observers.clear()
	})
}

func (s *Session) setIdentity(id Identity) {
	s.mu.Lock()
	changed := s.identity.ID != id.ID
	s.identity = id
	s.ready = !id.Empty()
	s.mu.Unlock()

	if changed {
		s.observers.notify(id)
	}
}

func (s *Session) listen(p Provider) {
	s.stopListen = p.OnIdentityChange(func(c Change) {
		current := s.Identity()
		if current.Empty() || c.Previous.ID != current.ID {
			return
		}
		// Identidades compartilhadas (token de bootstrap) só caem pelo próprio token.
		if c.Previous.Token != "" && current.Token != "" && c.Previous.Token != current.Token {
			return
		}
		s.setIdentity(c.Current)
	})
}

type observers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Identity)
}

func newObservers() observers {
	return observers{fns: make(map[int]func(Identity))}
}

func (o *observers) add(fn func(Identity)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next++
	id := o.next
	o.fns[id] = fn
	return func() {
		o.mu.Lock()
		delete(o.fns, id)
		o.mu.Unlock()
	}
}

func (o *observers) notify(id Identity) {
	o.mu.Lock()
	fns := make([]func(Identity), 0, len(o.fns))
	for _, fn := range o.fns {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

func (o *observers) clear() {
	o.mu.Lock()
	o.fns = make(map[int]func(Identity))
	o.mu.Unlock()
}
