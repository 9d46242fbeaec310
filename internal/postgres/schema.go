package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const inventorySchema = `
CREATE TABLE IF NOT EXISTS products (
	id           UUID PRIMARY KEY,
	sku          VARCHAR(64) NOT NULL UNIQUE,
	name         VARCHAR(255) NOT NULL,
	price        NUMERIC(10,2) NOT NULL DEFAULT 0,
	safety_stock INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS inventory (
	product_id UUID PRIMARY KEY REFERENCES products(id) ON DELETE CASCADE,
	stock      INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const ordersSchema = `
CREATE TABLE IF NOT EXISTS orders (
	id               UUID PRIMARY KEY,
	status           VARCHAR(32) NOT NULL,
	total            NUMERIC(12,2) NOT NULL DEFAULT 0,
	customer_name    TEXT NOT NULL DEFAULT '',
	customer_email   TEXT NOT NULL DEFAULT '',
	shipping_address TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL,
	paid_at          TIMESTAMPTZ,
	shipped_at       TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS order_items (
	id         BIGSERIAL PRIMARY KEY,
	order_id   UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id UUID NOT NULL,
	qty        INTEGER NOT NULL CHECK (qty > 0),
	unit_price NUMERIC(10,2) NOT NULL
);
CREATE INDEX IF NOT EXISTS order_items_order_id_idx ON order_items(order_id);
CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders(created_at DESC);`

func EnsureInventorySchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, inventorySchema)
	return err
}

func EnsureOrdersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, ordersSchema)
	return err
}
