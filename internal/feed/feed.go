// Package feed entrega notificações de mudança por escopo de armazenamento.
//
// O feed não carrega os registros: quem assina relê o estado atual ao
// receber um evento. Assim qualquer barramento com fan-out (Redis pub/sub,
// NATS ou a implementação em memória) serve de transporte.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrClosed indica que a assinatura foi encerrada pelo transporte.
var ErrClosed = errors.New("feed: assinatura encerrada")

const (
	KindCreated = "criada"
	KindDeleted = "excluida"
)

// Event descreve uma mudança ocorrida em um escopo.
type Event struct {
	Scope string    `json:"scope"`
	Kind  string    `json:"kind"`
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
}

// Bus publica e assina eventos por escopo.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, scope string) (Subscription, error)
	Close() error
}

// Subscription entrega eventos até Cancel ser chamado.
//
// Events é fechado quando a assinatura termina; Err informa o motivo
// (nil após Cancel).
type Subscription interface {
	Events() <-chan Event
	Err() error
	Cancel() error
}

func encode(ev Event) ([]byte, error) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return json.Marshal(ev)
}

func decode(payload []byte) (Event, error) {
	var ev Event
	err := json.Unmarshal(payload, &ev)
	return ev, err
}
