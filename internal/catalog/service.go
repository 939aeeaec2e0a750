package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/empaques-mx/backend-empaques/internal/common"
	"github.com/empaques-mx/backend-empaques/internal/obs"
	"github.com/empaques-mx/backend-empaques/internal/pricing"
)

type queryProvider interface {
	ListCategories(ctx context.Context) ([]CategoryRow, error)
	GetCategoryByID(ctx context.Context, id pgtype.UUID) (CategoryRow, error)
	CountProducts(ctx context.Context, filter ListFilter) (int64, error)
	ListProducts(ctx context.Context, filter ListFilter, limit, offset int32) ([]ProductRow, error)
	GetProductBySlug(ctx context.Context, slug string) (ProductRow, error)
	GetProductByRef(ctx context.Context, ref string) (ProductRow, error)
}

// Service orchestrates catalog queries, DTO assembly, and caching.
type Service struct {
	queries      queryProvider
	cache        *Cache
	defaultPage  int
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      queryProvider
	Cache        *Cache
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query    string
	Category string
	MinPrice *int64
	MaxPrice *int64
	InStock  *bool
	Sort     string
	Page     int
	Limit    int
}

// ProductListItem represents an entry in list responses.
type ProductListItem struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	BasePrice       *int64  `json:"basePrice,omitempty"`
	UnitWeightGrams int64   `json:"unitWeightGrams"`
	DefaultUnit     string  `json:"defaultUnit"`
	InStock         bool    `json:"inStock"`
	Thumbnail       *string `json:"thumbnail,omitempty"`
}

// ProductDetail aggregates the full detail payload.
type ProductDetail struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description,omitempty"`
	BasePrice       *int64    `json:"basePrice,omitempty"`
	BasePriceText   string    `json:"basePriceText,omitempty"`
	UnitWeightGrams int64     `json:"unitWeightGrams"`
	DefaultUnit     string    `json:"defaultUnit"`
	InStock         bool      `json:"inStock"`
	Thumbnail       *string   `json:"thumbnail,omitempty"`
	Category        *Category `json:"category,omitempty"`
}

// Category represents the public category payload.
type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parentId,omitempty"`
}

// ProductListResult contains list data and pagination metadata.
type ProductListResult struct {
	Items []ProductListItem
	Total int64
	Page  int
	Limit int
}

// PricingInfo is the product view consumed by the quantity calculator.
type PricingInfo struct {
	ID              string
	Title           string
	Slug            string
	BasePrice       *pricing.Money
	UnitWeightGrams int64
	DefaultUnit     pricing.Unit
	InStock         bool
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	defaultPage := cfg.DefaultPage
	if defaultPage < 1 {
		defaultPage = 1
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		queries:      cfg.Queries,
		cache:        cfg.Cache,
		defaultPage:  defaultPage,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ParseListParams normalises raw query values into strongly typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Page:  s.defaultPage,
		Limit: s.defaultLimit,
	}
	params.Query = strings.TrimSpace(values.Get("q"))
	params.Category = strings.TrimSpace(values.Get("category"))

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, badRequest("page", "page must be a positive integer", err)
		}
		params.Page = page
	}

	limit := s.defaultLimit
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			return params, badRequest("limit", "limit must be a positive integer", err)
		}
		limit = l
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	params.Limit = limit

	if v := strings.TrimSpace(values.Get("minPrice")); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return params, badRequest("minPrice", "minPrice must be a valid integer", err)
		}
		params.MinPrice = &parsed
	}
	if v := strings.TrimSpace(values.Get("maxPrice")); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return params, badRequest("maxPrice", "maxPrice must be a valid integer", err)
		}
		params.MaxPrice = &parsed
	}
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MinPrice > *params.MaxPrice {
		return params, badRequest("price", "minPrice cannot be greater than maxPrice", fmt.Errorf("invalid price range"))
	}

	if v := strings.TrimSpace(values.Get("inStock")); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return params, badRequest("inStock", "inStock must be true or false", err)
		}
		params.InStock = &b
	}

	params.Sort = normalizeSort(values.Get("sort"))
	return params, nil
}

// ListCategories returns all categories with parent linkage.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	result := make([]Category, 0, len(rows))
	for _, row := range rows {
		cat := Category{
			ID:   uuidString(row.ID),
			Name: row.Name,
			Slug: row.Slug,
		}
		if row.ParentID.Valid {
			parent := uuidString(row.ParentID)
			cat.ParentID = &parent
		}
		result = append(result, cat)
	}
	return result, nil
}

// ListProducts returns the filtered product list with pagination metadata.
func (s *Service) ListProducts(ctx context.Context, params ListParams) (ProductListResult, error) {
	key, shouldUseCache := s.listCacheKey(params)
	if shouldUseCache && s.cache != nil {
		var cached cachedList
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && ok {
			countCache("hit")
			return ProductListResult{Items: cached.Items, Total: cached.Total, Page: params.Page, Limit: params.Limit}, nil
		}
		countCache("miss")
	}

	filter := ListFilter{
		Query:    params.Query,
		Category: params.Category,
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		InStock:  params.InStock,
		Sort:     params.Sort,
	}
	total, err := s.queries.CountProducts(ctx, filter)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("count products: %w", err)
	}
	offset := int32((params.Page - 1) * params.Limit)
	if offset < 0 {
		offset = 0
	}
	rows, err := s.queries.ListProducts(ctx, filter, int32(params.Limit), offset)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("list products: %w", err)
	}
	items := make([]ProductListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, listItemFromRow(row))
	}
	result := ProductListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}
	if shouldUseCache && s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, cachedList{Items: items, Total: total})
	}
	return result, nil
}

// GetProductDetail returns the product detail payload for a slug.
func (s *Service) GetProductDetail(ctx context.Context, slug string) (ProductDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductDetail{}, badRequest("slug", "slug is required", nil)
	}
	cacheKey := detailCacheKey(slug)
	if s.cache != nil {
		var cached ProductDetail
		ok, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err == nil && ok {
			countCache("hit")
			return cached, nil
		}
		countCache("miss")
	}
	product, err := s.queries.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductDetail{}, &common.AppError{Code: "NOT_FOUND", Message: "product not found", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return ProductDetail{}, fmt.Errorf("get product by slug: %w", err)
	}
	detail := ProductDetail{
		ID:              uuidString(product.ID),
		Title:           product.Title,
		Slug:            product.Slug,
		UnitWeightGrams: product.UnitWeightGrams,
		DefaultUnit:     product.DefaultUnit,
		InStock:         product.InStock,
	}
	if product.Description.Valid {
		detail.Description = product.Description.String
	}
	if product.BasePrice.Valid {
		price := product.BasePrice.Int64
		detail.BasePrice = &price
		detail.BasePriceText = pricing.FormatMXN(price)
	}
	if product.Thumbnail.Valid {
		thumb := product.Thumbnail.String
		detail.Thumbnail = &thumb
	}
	if product.CategoryID.Valid {
		if cat, err := s.queries.GetCategoryByID(ctx, product.CategoryID); err == nil {
			detail.Category = &Category{ID: uuidString(cat.ID), Name: cat.Name, Slug: cat.Slug}
		}
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cacheKey, detail)
	}
	return detail, nil
}

// PricingInfoByRef resolves the calculator's product view by id or slug.
func (s *Service) PricingInfoByRef(ctx context.Context, ref string) (PricingInfo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return PricingInfo{}, badRequest("productId", "product reference is required", nil)
	}
	row, err := s.queries.GetProductByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PricingInfo{}, &common.AppError{Code: "NOT_FOUND", Message: "product not found", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return PricingInfo{}, fmt.Errorf("get product by ref: %w", err)
	}
	info := PricingInfo{
		ID:              uuidString(row.ID),
		Title:           row.Title,
		Slug:            row.Slug,
		UnitWeightGrams: row.UnitWeightGrams,
		InStock:         row.InStock,
	}
	if row.BasePrice.Valid {
		price := pricing.Money(row.BasePrice.Int64)
		info.BasePrice = &price
	}
	if unit, ok := pricing.ParseUnit(row.DefaultUnit); ok {
		info.DefaultUnit = unit
	} else {
		info.DefaultUnit = pricing.UnitPiezas
	}
	return info, nil
}

func listItemFromRow(row ProductRow) ProductListItem {
	item := ProductListItem{
		ID:              uuidString(row.ID),
		Title:           row.Title,
		Slug:            row.Slug,
		UnitWeightGrams: row.UnitWeightGrams,
		DefaultUnit:     row.DefaultUnit,
		InStock:         row.InStock,
	}
	if row.BasePrice.Valid {
		price := row.BasePrice.Int64
		item.BasePrice = &price
	}
	if row.Thumbnail.Valid {
		thumb := row.Thumbnail.String
		item.Thumbnail = &thumb
	}
	return item
}

type cachedList struct {
	Items []ProductListItem `json:"items"`
	Total int64             `json:"total"`
}

func (s *Service) listCacheKey(params ListParams) (string, bool) {
	if params.Page != s.defaultPage {
		return "", false
	}
	if params.Limit != s.defaultLimit {
		return "", false
	}
	if params.Query != "" || params.Category != "" || params.MinPrice != nil || params.MaxPrice != nil || params.InStock != nil || params.Sort != "" {
		return "", false
	}
	return "empaques:catalog:products:list:popular", true
}

func detailCacheKey(slug string) string {
	return "empaques:catalog:products:detail:" + slug
}

func countCache(result string) {
	if obs.CatalogCacheHits != nil {
		obs.CatalogCacheHits.WithLabelValues(result).Inc()
	}
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %s", value)
	}
}

func normalizeSort(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "price:asc", "price:desc", "title:asc", "title:desc":
		return s
	default:
		return ""
	}
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	u, err := uuid.FromBytes(id.Bytes[:])
	if err != nil {
		return ""
	}
	return u.String()
}

func badRequest(field, message string, err error) *common.AppError {
	return &common.AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details: map[string]any{
			"field": field,
		},
	}
}
