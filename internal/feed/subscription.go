package feed

import "sync"

const subscriptionBuffer = 16

// subscription é a base comum das assinaturas de cada transporte.
// Entregas são não bloqueantes: com o buffer cheio já existe um evento
// pendente, e qualquer evento pendente força a releitura do escopo.
type subscription struct {
	events chan Event
	stop   func() error

	mu     sync.Mutex
	closed bool
	err    error
	once   sync.Once
}

func newSubscription() *subscription {
	return &subscription{events: make(chan Event, subscriptionBuffer)}
}

func (s *subscription) deliver(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

func (s *subscription) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.events)
}

func (s *subscription) Events() <-chan Event {
	return s.events
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) Cancel() error {
	var err error
	s.once.Do(func() {
		s.finish(nil)
		if s.stop != nil {
			err = s.stop()
		}
	})
	return err
}
