package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectProduct = `
	SELECT p.id::text, p.sku, p.name, p.price, p.safety_stock, i.stock, p.created_at, p.updated_at
	FROM products p JOIN inventory i ON i.product_id = p.id`

// PGStore keeps products and inventory rows in Postgres. Counter updates
// lock the inventory row (FOR UPDATE) for the read-modify-write.
type PGStore struct{ DB *pgxpool.Pool }

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.SafetyStock, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *PGStore) CreateProduct(ctx context.Context, p Product) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO products(id, sku, name, price, safety_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		p.ID, p.SKU, p.Name, p.Price, p.SafetyStock, p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("sku %q already exists", p.SKU)
		}
		return err
	}
	if _, err = tx.Exec(ctx, `INSERT INTO inventory(product_id, stock, updated_at) VALUES ($1, $2, $3)`,
		p.ID, p.Stock, p.CreatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGStore) GetProduct(ctx context.Context, id string) (Product, error) {
	if !validID(id) {
		return Product{}, apperr.NotFound("product %s", id)
	}
	p, err := scanProduct(r.DB.QueryRow(ctx, selectProduct+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, apperr.NotFound("product %s", id)
	}
	return p, err
}

func (r *PGStore) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, selectProduct+` ORDER BY p.sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGStore) UpdateProduct(ctx context.Context, id string, upd ProductUpdate, now time.Time) (Product, error) {
	if !validID(id) {
		return Product{}, apperr.NotFound("product %s", id)
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET
			name = COALESCE($2, name),
			price = COALESCE($3, price),
			safety_stock = COALESCE($4, safety_stock),
			updated_at = $5
		WHERE id = $1`,
		id, upd.Name, upd.Price, upd.SafetyStock, now)
	if err != nil {
		return Product{}, err
	}
	if ct.RowsAffected() == 0 {
		return Product{}, apperr.NotFound("product %s", id)
	}
	return r.GetProduct(ctx, id)
}

func (r *PGStore) DeleteProduct(ctx context.Context, id string) (Product, error) {
	if !validID(id) {
		return Product{}, apperr.NotFound("product %s", id)
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Product{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := scanProduct(tx.QueryRow(ctx, selectProduct+` WHERE p.id = $1 FOR UPDATE OF p`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, apperr.NotFound("product %s", id)
	}
	if err != nil {
		return Product{}, err
	}
	// inventory row goes with it (ON DELETE CASCADE)
	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return Product{}, err
	}
	return p, tx.Commit(ctx)
}

func (r *PGStore) AdjustStock(ctx context.Context, id string, delta int, now time.Time) (Adjustment, error) {
	return r.mutateStock(ctx, id, now, func(old int) (int, error) {
		return nextStock(id, old, delta)
	})
}

func (r *PGStore) SetStock(ctx context.Context, id string, qty int, now time.Time) (Adjustment, error) {
	return r.mutateStock(ctx, id, now, func(int) (int, error) { return qty, nil })
}

// mutateStock locks the counter row, computes the next value and writes it
// back in one transaction. An error from next aborts with nothing written.
func (r *PGStore) mutateStock(ctx context.Context, id string, now time.Time, next func(old int) (int, error)) (Adjustment, error) {
	if !validID(id) {
		return Adjustment{}, apperr.NotFound("product %s", id)
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Adjustment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := scanProduct(tx.QueryRow(ctx, selectProduct+` WHERE p.id = $1 FOR UPDATE OF i`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Adjustment{}, apperr.NotFound("product %s", id)
	}
	if err != nil {
		return Adjustment{}, err
	}

	old := p.Stock
	qty, err := next(old)
	if err != nil {
		return Adjustment{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE inventory SET stock = $2, updated_at = $3 WHERE product_id = $1`, id, qty, now); err != nil {
		return Adjustment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Adjustment{}, err
	}
	p.Stock = qty
	p.UpdatedAt = now
	return Adjustment{Product: p, OldQuantity: old, NewQuantity: qty}, nil
}
