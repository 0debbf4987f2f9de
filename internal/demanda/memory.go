package demanda

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore mantém demandas em memória. Usado em testes e na CLI local.
type MemoryStore struct {
	mu   sync.Mutex
	data map[Scope]map[string]Demanda
	fail error
}

// NewMemoryStore cria armazenamento vazio.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Scope]map[string]Demanda)}
}

// FailWith faz as próximas operações falharem com err (nil restaura).
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

func (m *MemoryStore) Create(ctx context.Context, scope Scope, d Demanda) (string, error) {
	if !scope.Valid() {
		return "", ErrEscopoInvalido
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	d.ID = uuid.NewString()
	if m.data[scope] == nil {
		m.data[scope] = make(map[string]Demanda)
	}
	m.data[scope][d.ID] = d
	return d.ID, nil
}

func (m *MemoryStore) Delete(ctx context.Context, scope Scope, id string) error {
	if !scope.Valid() {
		return ErrEscopoInvalido
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.data[scope], id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, scope Scope) ([]Demanda, error) {
	if !scope.Valid() {
		return nil, ErrEscopoInvalido
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]Demanda, 0, len(m.data[scope]))
	for _, d := range m.data[scope] {
		out = append(out, d)
	}
	return out, nil
}

// Put grava o registro como está, inclusive sem timestamps. Útil para simular dados legados.
func (m *MemoryStore) Put(scope Scope, d Demanda) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if m.data[scope] == nil {
		m.data[scope] = make(map[string]Demanda)
	}
	m.data[scope][d.ID] = d
}
