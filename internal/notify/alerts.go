package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// AlertLogger is the order service's reaction to stock events: it records
// them. Undecodable payloads are logged and skipped so the stream keeps flowing.
type AlertLogger struct {
	Log *zap.Logger
}

func (a *AlertLogger) Handle(_ context.Context, topic string, payload []byte) error {
	switch topic {
	case TopicLowStock:
		var ev LowStockAlert
		if err := json.Unmarshal(payload, &ev); err != nil {
			a.skip(topic, payload, err)
			return nil
		}
		a.Log.Warn("low stock alert",
			zap.String("product_id", ev.ProductID),
			zap.String("sku", ev.SKU),
			zap.String("name", ev.Name),
			zap.Int("current_stock", ev.CurrentStock),
			zap.Int("safety_stock", ev.SafetyStock),
		)
	case TopicStockChanges:
		var ev StockChange
		if err := json.Unmarshal(payload, &ev); err != nil {
			a.skip(topic, payload, err)
			return nil
		}
		a.Log.Info("stock changed",
			zap.String("product_id", ev.ProductID),
			zap.String("sku", ev.SKU),
			zap.Int("adjustment", ev.Adjustment),
			zap.Int("old_stock", ev.OldStock),
			zap.Int("new_stock", ev.NewStock),
			zap.Bool("is_low_stock", ev.IsLowStock),
		)
	case TopicInventoryUpdates:
		var ev InventoryUpdate
		if err := json.Unmarshal(payload, &ev); err != nil {
			a.skip(topic, payload, err)
			return nil
		}
		a.Log.Info("inventory updated",
			zap.String("action", ev.Action),
			zap.String("product_id", ev.ProductID),
			zap.String("sku", ev.SKU),
		)
	default:
		a.Log.Debug("ignored event", zap.String("topic", topic))
	}
	return nil
}

func (a *AlertLogger) skip(topic string, payload []byte, err error) {
	a.Log.Warn("malformed event", zap.String("topic", topic), zap.ByteString("payload", payload), zap.Error(err))
}
