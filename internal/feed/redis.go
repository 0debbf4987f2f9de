package feed

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisChannelPrefix = "demandas:feed:"

// RedisBus usa pub/sub do Redis como barramento entre instâncias.
type RedisBus struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisBus cria barramento sobre um cliente já configurado.
func NewRedisBus(client *redis.Client, logger zerolog.Logger) *RedisBus {
	return &RedisBus{client: client, logger: logger}
}

// Publish envia o evento ao canal do escopo.
func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := encode(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, redisChannel(ev.Scope), payload).Err(); err != nil {
		return fmt.Errorf("feed redis publish: %w", err)
	}
	return nil
}

// Subscribe assina o canal do escopo e só retorna após a confirmação do Redis.
func (b *RedisBus) Subscribe(ctx context.Context, scope string) (Subscription, error) {
	ps := b.client.Subscribe(ctx, redisChannel(scope))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("feed redis subscribe: %w", err)
	}

	sub := newSubscription()
	done := make(chan struct{})
	sub.stop = func() error {
		err := ps.Close()
		<-done
		return err
	}

	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			ev, err := decode([]byte(msg.Payload))
			if err != nil {
				b.logger.Warn().Err(err).Str("channel", msg.Channel).Msg("feed: evento inválido descartado")
				continue
			}
			sub.deliver(ev)
		}
		sub.finish(ErrClosed)
	}()

	return sub, nil
}

// Close não encerra o cliente Redis, que pertence a quem o criou.
func (b *RedisBus) Close() error {
	return nil
}

func redisChannel(scope string) string {
	return redisChannelPrefix + scope
}
