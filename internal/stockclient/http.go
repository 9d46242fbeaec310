package stockclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/MUR0612/smart-inventory/internal/saga"
)

// Client talks to the inventory service. Every call is bounded by Timeout;
// transport errors, timeouts and 5xx answers surface as unavailable.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Timeout time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
		Timeout: timeout,
	}
}

type productBody struct {
	ID    string          `json:"id"`
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type stockBody struct {
	ProductID    string `json:"product_id"`
	CurrentStock int    `json:"current_stock"`
	SafetyStock  int    `json:"safety_stock"`
}

type errorBody struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type insufficientDetails struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (c *Client) Product(ctx context.Context, id string) (saga.ProductInfo, error) {
	var p productBody
	if err := c.do(ctx, http.MethodGet, "/api/inventory/products/"+url.PathEscape(id), nil, &p); err != nil {
		return saga.ProductInfo{}, err
	}
	return saga.ProductInfo{ID: p.ID, SKU: p.SKU, Name: p.Name, Price: p.Price}, nil
}

func (c *Client) Stock(ctx context.Context, id string) (saga.StockLevel, error) {
	var s stockBody
	if err := c.do(ctx, http.MethodGet, "/api/inventory/stock/"+url.PathEscape(id), nil, &s); err != nil {
		return saga.StockLevel{}, err
	}
	return saga.StockLevel{ProductID: s.ProductID, Quantity: s.CurrentStock, SafetyStock: s.SafetyStock}, nil
}

func (c *Client) Adjust(ctx context.Context, id string, delta int) (int, error) {
	var s stockBody
	body := map[string]int{"adjustment": delta}
	if err := c.do(ctx, http.MethodPost, "/api/inventory/stock/"+url.PathEscape(id)+"/adjust", body, &s); err != nil {
		return 0, err
	}
	return s.CurrentStock, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return apperr.Unavailable(fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperr.Unavailable(fmt.Errorf("decode %s: %w", path, err))
		}
		return nil
	}
	return decodeError(resp, path)
}

func decodeError(resp *http.Response, path string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := eb.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperr.NotFound("inventory %s", path)
	case eb.Error.Code == apperr.CodeInsufficientStock:
		var d insufficientDetails
		_ = json.Unmarshal(eb.Error.Details, &d)
		return &apperr.InsufficientStockError{ProductID: d.ProductID, Requested: d.Requested, Available: d.Available}
	case resp.StatusCode == http.StatusBadRequest:
		return apperr.Validation("inventory rejected request: %s", msg)
	case resp.StatusCode == http.StatusConflict:
		return apperr.Conflict("inventory: %s", msg)
	default:
		return apperr.Unavailable(fmt.Errorf("inventory %s: status %d: %s", path, resp.StatusCode, msg))
	}
}
