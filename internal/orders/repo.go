package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectOrder = `
	SELECT id::text, status, total, customer_name, customer_email, shipping_address, notes,
	       created_at, updated_at, paid_at, shipped_at
	FROM orders`

type PGStore struct{ DB *pgxpool.Pool }

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(&o.ID, &status, &o.Total, &o.CustomerName, &o.CustomerEmail, &o.ShippingAddress,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt, &o.PaidAt, &o.ShippedAt)
	if err != nil {
		return Order{}, err
	}
	if o.Status, err = ParseStatus(status); err != nil {
		return Order{}, fmt.Errorf("order %s: %w", o.ID, err)
	}
	return o, nil
}

func (r *PGStore) Create(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, status, total, customer_name, customer_email, shipping_address, notes,
		                   created_at, updated_at, paid_at, shipped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.Status.String(), o.Total, o.CustomerName, o.CustomerEmail, o.ShippingAddress, o.Notes,
		o.CreatedAt, o.UpdatedAt, o.PaidAt, o.ShippedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, l := range o.Lines {
		batch.Queue(`INSERT INTO order_items(order_id, product_id, qty, unit_price)
		             VALUES ($1, $2, $3, $4) RETURNING id`, o.ID, l.ProductID, l.Qty, l.UnitPrice)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range o.Lines {
		if err := br.QueryRow().Scan(&o.Lines[i].ID); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert line %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGStore) Get(ctx context.Context, id string) (Order, error) {
	if !validID(id) {
		return Order{}, apperr.NotFound("order %s", id)
	}
	o, err := scanOrder(r.DB.QueryRow(ctx, selectOrder+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, apperr.NotFound("order %s", id)
	}
	if err != nil {
		return Order{}, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id::text, qty, unit_price
		FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	o.Lines = []OrderLine{}
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Qty, &l.UnitPrice); err != nil {
			return Order{}, err
		}
		o.Lines = append(o.Lines, l)
	}
	return o, rows.Err()
}

func (r *PGStore) List(ctx context.Context, f ListFilter) ([]Summary, error) {
	var status *string
	if f.Status != statusInvalid {
		s := f.Status.String()
		status = &s
	}
	var limit *int
	if f.Limit > 0 {
		limit = &f.Limit
	}
	rows, err := r.DB.Query(ctx, `
		SELECT o.id::text, o.status, o.total, o.customer_name, o.created_at, o.updated_at,
		       (SELECT count(*) FROM order_items i WHERE i.order_id = o.id)
		FROM orders o
		WHERE $1::text IS NULL OR o.status = $1
		ORDER BY o.created_at DESC, o.id DESC
		OFFSET $2 LIMIT $3`, status, f.Skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			s  Summary
			st string
		)
		if err := rows.Scan(&s.ID, &st, &s.Total, &s.CustomerName, &s.CreatedAt, &s.UpdatedAt, &s.ItemCount); err != nil {
			return nil, err
		}
		if s.Status, err = ParseStatus(st); err != nil {
			return nil, fmt.Errorf("order %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGStore) Save(ctx context.Context, o Order) error {
	if !validID(o.ID) {
		return apperr.NotFound("order %s", o.ID)
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET
			status = $2, customer_name = $3, customer_email = $4, shipping_address = $5,
			notes = $6, updated_at = $7, paid_at = $8, shipped_at = $9
		WHERE id = $1`,
		o.ID, o.Status.String(), o.CustomerName, o.CustomerEmail, o.ShippingAddress,
		o.Notes, o.UpdatedAt, o.PaidAt, o.ShippedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("order %s", o.ID)
	}
	return nil
}

func (r *PGStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return apperr.NotFound("order %s", id)
	}
	// order_items go with it (ON DELETE CASCADE)
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("order %s", id)
	}
	return nil
}
