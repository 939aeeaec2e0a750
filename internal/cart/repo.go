package cart

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartRow mirrors the carts table.
type CartRow struct {
	ID        pgtype.UUID
	AnonID    pgtype.Text
	ExpiresAt pgtype.Timestamptz
	CreatedAt pgtype.Timestamptz
}

// ItemRow mirrors the cart_items table.
type ItemRow struct {
	ID        pgtype.UUID
	CartID    pgtype.UUID
	ProductID pgtype.UUID
	Title     string
	Slug      string
	Qty       int64
	Unit      string
	UnitPrice int64
	Subtotal  int64
}

const cartColumns = `id, anon_id, expires_at, created_at`
const itemColumns = `id, cart_id, product_id, title, slug, qty, unit, unit_price, subtotal`

// Repo provides cart persistence backed by a pgx pool.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo constructs a Repo.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetActiveCartByAnon loads the newest unexpired cart for an anonymous id.
func (r *Repo) GetActiveCartByAnon(ctx context.Context, anonID pgtype.Text) (CartRow, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+cartColumns+` FROM carts
		WHERE anon_id = $1 AND expires_at > now()
		ORDER BY created_at DESC LIMIT 1`, anonID)
	return scanCart(row)
}

// GetCartByID loads a cart by id.
func (r *Repo) GetCartByID(ctx context.Context, id pgtype.UUID) (CartRow, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE id = $1`, id)
	return scanCart(row)
}

// CreateCart inserts a new cart for an anonymous id.
func (r *Repo) CreateCart(ctx context.Context, anonID pgtype.Text, expiresAt pgtype.Timestamptz) (CartRow, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO carts (anon_id, expires_at) VALUES ($1, $2)
		RETURNING `+cartColumns, anonID, expiresAt)
	return scanCart(row)
}

// TouchCart extends a cart's expiry.
func (r *Repo) TouchCart(ctx context.Context, id pgtype.UUID, expiresAt pgtype.Timestamptz) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE carts SET expires_at = $2 WHERE id = $1`, id, expiresAt)
	return err
}

// ListItems returns a cart's items in insertion order.
func (r *Repo) ListItems(ctx context.Context, cartID pgtype.UUID) ([]ItemRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM cart_items WHERE cart_id = $1 ORDER BY id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []ItemRow
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// FindItem locates a cart item for the same product and unit.
func (r *Repo) FindItem(ctx context.Context, cartID, productID pgtype.UUID, unit string) (ItemRow, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+itemColumns+` FROM cart_items
		WHERE cart_id = $1 AND product_id = $2 AND unit = $3`, cartID, productID, unit)
	return scanItem(row)
}

// GetItemByID loads a cart item.
func (r *Repo) GetItemByID(ctx context.Context, id pgtype.UUID) (ItemRow, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM cart_items WHERE id = $1`, id)
	return scanItem(row)
}

// CreateItem inserts a new cart item.
func (r *Repo) CreateItem(ctx context.Context, item ItemRow) (ItemRow, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cart_items (cart_id, product_id, title, slug, qty, unit, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+itemColumns,
		item.CartID, item.ProductID, item.Title, item.Slug, item.Qty, item.Unit, item.UnitPrice, item.Subtotal)
	return scanItem(row)
}

// UpdateItem rewrites an item's quantity and price snapshot.
func (r *Repo) UpdateItem(ctx context.Context, id pgtype.UUID, qty, unitPrice, subtotal int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE cart_items SET qty = $2, unit_price = $3, subtotal = $4 WHERE id = $1`,
		id, qty, unitPrice, subtotal)
	return err
}

// DeleteItem removes an item scoped to its cart.
func (r *Repo) DeleteItem(ctx context.Context, id, cartID pgtype.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, id, cartID)
	return err
}

func scanCart(row pgx.Row) (CartRow, error) {
	var c CartRow
	err := row.Scan(&c.ID, &c.AnonID, &c.ExpiresAt, &c.CreatedAt)
	return c, err
}

func scanItem(row pgx.Row) (ItemRow, error) {
	var it ItemRow
	err := row.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Title, &it.Slug,
		&it.Qty, &it.Unit, &it.UnitPrice, &it.Subtotal)
	return it, err
}
