package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRow mirrors the products table.
type ProductRow struct {
	ID              pgtype.UUID
	Title           string
	Slug            string
	Description     pgtype.Text
	BasePrice       pgtype.Int8
	UnitWeightGrams int64
	DefaultUnit     string
	InStock         bool
	Thumbnail       pgtype.Text
	CategoryID      pgtype.UUID
	CreatedAt       pgtype.Timestamptz
}

// CategoryRow mirrors the categories table.
type CategoryRow struct {
	ID       pgtype.UUID
	Name     string
	Slug     string
	ParentID pgtype.UUID
}

// ListFilter captures the storefront product filters.
type ListFilter struct {
	Query    string
	Category string
	MinPrice *int64
	MaxPrice *int64
	InStock  *bool
	Sort     string
}

const productColumns = `p.id, p.title, p.slug, p.description, p.base_price,
	p.unit_weight_grams, p.default_unit, p.in_stock, p.thumbnail, p.category_id, p.created_at`

// Repo provides catalog queries backed by a pgx pool.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo constructs a Repo.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ListCategories returns all categories ordered by name.
func (r *Repo) ListCategories(ctx context.Context) ([]CategoryRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug, parent_id FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []CategoryRow
	for rows.Next() {
		var row CategoryRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Slug, &row.ParentID); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// CountProducts counts products matching the filter.
func (r *Repo) CountProducts(ctx context.Context, filter ListFilter) (int64, error) {
	where, args := buildWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products p LEFT JOIN categories c ON c.id = p.category_id `+where,
		args...,
	).Scan(&total)
	return total, err
}

// ListProducts returns a filtered, sorted page of products.
func (r *Repo) ListProducts(ctx context.Context, filter ListFilter, limit, offset int32) ([]ProductRow, error) {
	where, args := buildWhere(filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM products p LEFT JOIN categories c ON c.id = p.category_id %s %s LIMIT $%d OFFSET $%d`,
		productColumns, where, orderBy(filter.Sort), len(args)-1, len(args),
	)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []ProductRow
	for rows.Next() {
		row, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// GetProductBySlug fetches a single product by slug.
func (r *Repo) GetProductBySlug(ctx context.Context, slug string) (ProductRow, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM products p WHERE p.slug = $1`, productColumns), slug)
	return scanProduct(row)
}

// GetProductByRef fetches a product by id or, failing that, by slug. The
// calculator accepts either form as its product reference.
func (r *Repo) GetProductByRef(ctx context.Context, ref string) (ProductRow, error) {
	var id pgtype.UUID
	if err := id.Scan(strings.TrimSpace(ref)); err == nil {
		row := r.pool.QueryRow(ctx,
			fmt.Sprintf(`SELECT %s FROM products p WHERE p.id = $1`, productColumns), id)
		return scanProduct(row)
	}
	return r.GetProductBySlug(ctx, ref)
}

// GetCategoryByID fetches a category.
func (r *Repo) GetCategoryByID(ctx context.Context, id pgtype.UUID) (CategoryRow, error) {
	var row CategoryRow
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, parent_id FROM categories WHERE id = $1`, id,
	).Scan(&row.ID, &row.Name, &row.Slug, &row.ParentID)
	return row, err
}

func scanProduct(row pgx.Row) (ProductRow, error) {
	var p ProductRow
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.BasePrice,
		&p.UnitWeightGrams, &p.DefaultUnit, &p.InStock, &p.Thumbnail, &p.CategoryID, &p.CreatedAt)
	return p, err
}

func buildWhere(filter ListFilter) (string, []any) {
	clauses := []string{"TRUE"}
	var args []any
	add := func(format string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		add(`p.title ILIKE '%%' || $%d || '%%'`, q)
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		add(`c.slug = $%d`, c)
	}
	if filter.MinPrice != nil {
		add(`p.base_price >= $%d`, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add(`p.base_price <= $%d`, *filter.MaxPrice)
	}
	if filter.InStock != nil {
		add(`p.in_stock = $%d`, *filter.InStock)
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func orderBy(sort string) string {
	switch sort {
	case "price:asc":
		return "ORDER BY p.base_price ASC NULLS LAST"
	case "price:desc":
		return "ORDER BY p.base_price DESC NULLS LAST"
	case "title:asc":
		return "ORDER BY p.title ASC"
	case "title:desc":
		return "ORDER BY p.title DESC"
	default:
		return "ORDER BY p.created_at DESC"
	}
}
