package demanda

import (
	"context"
	"errors"
)

var (
	// ErrEscopoInvalido indica chamada sem identidade dona.
	ErrEscopoInvalido = errors.New("escopo de demandas inválido")
)

// Store é o armazenamento de documentos por escopo.
// List não garante ordem; a ordenação é feita na exibição.
type Store interface {
	Create(ctx context.Context, scope Scope, d Demanda) (string, error)
	Delete(ctx context.Context, scope Scope, id string) error
	List(ctx context.Context, scope Scope) ([]Demanda, error)
}
