package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher sends events over Redis pub/sub. The key is unused.
type RedisPublisher struct {
	Client *redis.Client
}

func (p *RedisPublisher) Publish(ctx context.Context, topic, _ string, payload []byte) error {
	return p.Client.Publish(ctx, topic, payload).Err()
}

// HandlerFunc processes one delivered event.
type HandlerFunc func(ctx context.Context, topic string, payload []byte) error

// RedisSubscriber listens on pub/sub channels until ctx is done. Handler
// errors are logged and the loop moves on to the next message.
type RedisSubscriber struct {
	Client *redis.Client
	Topics []string
	Log    *zap.Logger
}

func (s *RedisSubscriber) Run(ctx context.Context, h HandlerFunc) error {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	ps := s.Client.Subscribe(ctx, s.Topics...)
	defer ps.Close()

	// first reply confirms the subscription
	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %v: %w", s.Topics, err)
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := h(ctx, msg.Channel, []byte(msg.Payload)); err != nil {
				log.Warn("handler failed", zap.String("topic", msg.Channel), zap.Error(err))
			}
		}
	}
}
