package quote

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RequestRow mirrors the quote_requests table.
type RequestRow struct {
	ID               pgtype.UUID
	ProductID        pgtype.UUID
	ProductTitle     string
	Quantity         int64
	Unit             string
	ZoneID           pgtype.Text
	ContactName      string
	ContactEmail     string
	ContactPhone     pgtype.Text
	Company          pgtype.Text
	Message          pgtype.Text
	FreightCost      pgtype.Int8
	FreightPending   bool
	TotalWeightGrams int64
	Status           string
	CreatedAt        pgtype.Timestamptz
}

const requestColumns = `id, product_id, product_title, quantity, unit, zone_id,
	contact_name, contact_email, contact_phone, company, message,
	freight_cost, freight_pending, total_weight_grams, status, created_at`

// Repo provides quote request persistence backed by a pgx pool.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo constructs a Repo.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// InsertRequest stores a new quote request and returns the persisted row.
func (r *Repo) InsertRequest(ctx context.Context, row RequestRow) (RequestRow, error) {
	res := r.pool.QueryRow(ctx, `
		INSERT INTO quote_requests (
			product_id, product_title, quantity, unit, zone_id,
			contact_name, contact_email, contact_phone, company, message,
			freight_cost, freight_pending, total_weight_grams, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+requestColumns,
		row.ProductID, row.ProductTitle, row.Quantity, row.Unit, row.ZoneID,
		row.ContactName, row.ContactEmail, row.ContactPhone, row.Company, row.Message,
		row.FreightCost, row.FreightPending, row.TotalWeightGrams, row.Status,
	)
	return scanRequest(res)
}

// GetRequest fetches a quote request by id.
func (r *Repo) GetRequest(ctx context.Context, id pgtype.UUID) (RequestRow, error) {
	res := r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM quote_requests WHERE id = $1`, id)
	return scanRequest(res)
}

// UpdateRequestStatus transitions a quote request to the given status.
func (r *Repo) UpdateRequestStatus(ctx context.Context, id pgtype.UUID, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quote_requests SET status = $2 WHERE id = $1`, id, status)
	return err
}

func scanRequest(row pgx.Row) (RequestRow, error) {
	var q RequestRow
	err := row.Scan(&q.ID, &q.ProductID, &q.ProductTitle, &q.Quantity, &q.Unit, &q.ZoneID,
		&q.ContactName, &q.ContactEmail, &q.ContactPhone, &q.Company, &q.Message,
		&q.FreightCost, &q.FreightPending, &q.TotalWeightGrams, &q.Status, &q.CreatedAt)
	return q, err
}
