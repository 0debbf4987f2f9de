package feed

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const natsSubjectPrefix = "demandas.feed."

// NATSBus usa subjects do NATS core como barramento entre instâncias.
type NATSBus struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// ConnectNATS conecta ao servidor NATS informado.
func ConnectNATS(url string, logger zerolog.Logger) (*NATSBus, error) {
	conn, err := nats.Connect(url,
		nats.Name("demandas"),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("feed: nats desconectado")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("feed: nats reconectado")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("feed nats connect: %w", err)
	}
	return &NATSBus{conn: conn, logger: logger}, nil
}

// Publish envia o evento ao subject do escopo.
func (b *NATSBus) Publish(ctx context.Context, ev Event) error {
	payload, err := encode(ev)
	if err != nil {
		return err
	}
	if err := b.conn.Publish(natsSubject(ev.Scope), payload); err != nil {
		return fmt.Errorf("feed nats publish: %w", err)
	}
	return nil
}

// Subscribe assina o subject do escopo.
func (b *NATSBus) Subscribe(ctx context.Context, scope string) (Subscription, error) {
	sub := newSubscription()
	natsSub, err := b.conn.Subscribe(natsSubject(scope), func(msg *nats.Msg) {
		ev, err := decode(msg.Data)
		if err != nil {
			b.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("feed: evento inválido descartado")
			return
		}
		sub.deliver(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("feed nats subscribe: %w", err)
	}
	if err := b.conn.FlushTimeout(2 * time.Second); err != nil {
		_ = natsSub.Unsubscribe()
		return nil, fmt.Errorf("feed nats flush: %w", err)
	}
	natsSub.SetClosedHandler(func(string) {
		sub.finish(ErrClosed)
	})
	sub.stop = natsSub.Unsubscribe
	return sub, nil
}

// Close drena a conexão com o servidor.
func (b *NATSBus) Close() error {
	if b == nil || b.conn == nil {
		return nil
	}
	err := b.conn.Drain()
	b.conn.Close()
	return err
}

// Ping verifica se a conexão está ativa.
func (b *NATSBus) Ping() error {
	if b.conn.Status() != nats.CONNECTED {
		return fmt.Errorf("feed nats: status %s", b.conn.Status())
	}
	return nil
}

// O escopo contém "/" e pode conter ".", que têm significado em subjects.
func natsSubject(scope string) string {
	return natsSubjectPrefix + base64.RawURLEncoding.EncodeToString([]byte(scope))
}
