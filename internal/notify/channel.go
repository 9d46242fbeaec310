package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Publisher delivers one payload to a named topic. Implementations may drop
// messages; at-most-once is all the channel promises.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

// Channel fans each event out to every publisher. Failures are logged,
// never returned.
type Channel struct {
	publishers []Publisher
	log        *zap.Logger
}

func NewChannel(log *zap.Logger, publishers ...Publisher) *Channel {
	return &Channel{publishers: publishers, log: log}
}

func (c *Channel) StockChanged(ctx context.Context, ev StockChange) {
	c.publish(ctx, TopicStockChanges, ev.ProductID, ev)
}

func (c *Channel) LowStock(ctx context.Context, ev LowStockAlert) {
	c.publish(ctx, TopicLowStock, ev.ProductID, ev)
}

func (c *Channel) InventoryUpdated(ctx context.Context, ev InventoryUpdate) {
	c.publish(ctx, TopicInventoryUpdates, ev.ProductID, ev)
}

func (c *Channel) publish(ctx context.Context, topic, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		c.log.Error("encode event", zap.String("topic", topic), zap.Error(err))
		return
	}
	for _, p := range c.publishers {
		if err := p.Publish(ctx, topic, key, b); err != nil {
			c.log.Warn("publish failed", zap.String("topic", topic), zap.String("key", key), zap.Error(err))
			continue
		}
		c.log.Debug("published", zap.String("topic", topic), zap.String("key", key))
	}
}
