package notify

import "time"

const (
	TopicLowStock         = "low_stock_alerts"
	TopicStockChanges     = "stock_changes"
	TopicInventoryUpdates = "inventory_updates"
)

// Topics is the set a stock-event subscriber listens on.
var Topics = []string{TopicLowStock, TopicStockChanges, TopicInventoryUpdates}

type StockChange struct {
	ProductID  string    `json:"product_id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	OldStock   int       `json:"old_stock"`
	NewStock   int       `json:"new_stock"`
	Adjustment int       `json:"adjustment"`
	IsLowStock bool      `json:"is_low_stock"`
	Timestamp  time.Time `json:"timestamp"`
}

type LowStockAlert struct {
	ProductID    string    `json:"product_id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	CurrentStock int       `json:"current_stock"`
	SafetyStock  int       `json:"safety_stock"`
	Timestamp    time.Time `json:"timestamp"`
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

type InventoryUpdate struct {
	Action    string    `json:"action"`
	ProductID string    `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}
