package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              string          `json:"id"`
	Status          Status          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	CustomerName    string          `json:"customer_name,omitempty"`
	CustomerEmail   string          `json:"customer_email,omitempty"`
	ShippingAddress string          `json:"shipping_address,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	PaidAt          *time.Time      `json:"paid_at"`
	ShippedAt       *time.Time      `json:"shipped_at"`
	Lines           []OrderLine     `json:"items"`
}

// OrderLine is frozen at creation. UnitPrice is the price seen when the
// order was checked, not a live reference to the product.
type OrderLine struct {
	ID        int64           `json:"id"`
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

func LinesTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Summary is the list projection of an order.
type Summary struct {
	ID           string          `json:"id"`
	Status       Status          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	CustomerName string          `json:"customer_name,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	ItemCount    int             `json:"item_count"`
}

func (o *Order) Summary() Summary {
	return Summary{
		ID:           o.ID,
		Status:       o.Status,
		Total:        o.Total,
		CustomerName: o.CustomerName,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		ItemCount:    len(o.Lines),
	}
}

type ListFilter struct {
	Skip   int
	Limit  int
	Status Status // zero means any
}

// Details are the customer-facing fields editable while an order is CREATED.
type Details struct {
	CustomerName    *string `json:"customer_name,omitempty"`
	CustomerEmail   *string `json:"customer_email,omitempty"`
	ShippingAddress *string `json:"shipping_address,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}
