package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/empaques-mx/backend-empaques/internal/catalog"
	"github.com/empaques-mx/backend-empaques/internal/common"
	"github.com/empaques-mx/backend-empaques/internal/events"
	"github.com/empaques-mx/backend-empaques/internal/obs"
	"github.com/empaques-mx/backend-empaques/internal/pricing"
)

type queryProvider interface {
	GetActiveCartByAnon(ctx context.Context, anonID pgtype.Text) (CartRow, error)
	GetCartByID(ctx context.Context, id pgtype.UUID) (CartRow, error)
	CreateCart(ctx context.Context, anonID pgtype.Text, expiresAt pgtype.Timestamptz) (CartRow, error)
	TouchCart(ctx context.Context, id pgtype.UUID, expiresAt pgtype.Timestamptz) error
	ListItems(ctx context.Context, cartID pgtype.UUID) ([]ItemRow, error)
	FindItem(ctx context.Context, cartID, productID pgtype.UUID, unit string) (ItemRow, error)
	GetItemByID(ctx context.Context, id pgtype.UUID) (ItemRow, error)
	CreateItem(ctx context.Context, item ItemRow) (ItemRow, error)
	UpdateItem(ctx context.Context, id pgtype.UUID, qty, unitPrice, subtotal int64) error
	DeleteItem(ctx context.Context, id, cartID pgtype.UUID) error
}

// ProductSource resolves product data for cart snapshots.
type ProductSource interface {
	PricingInfoByRef(ctx context.Context, ref string) (catalog.PricingInfo, error)
}

// Locker serialises mutations that share a key. Concurrent adds for the same
// cart would otherwise race on the find-then-merge step.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// EventEmitter records domain events for cart activity.
type EventEmitter interface {
	Emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) (events.Event, error)
}

// Service encapsulates cart operations for the direct checkout channel. Item
// prices are snapshots: the tier modifier for the line's total quantity is
// applied to the base price when the line is written.
type Service struct {
	q        queryProvider
	products ProductSource
	lock     Locker
	bus      EventEmitter
	tiers    []pricing.Tier
	ttl      time.Duration
	now      func() time.Time
}

// ServiceConfig configures a cart Service.
type ServiceConfig struct {
	Queries  queryProvider
	Products ProductSource
	Lock     Locker
	Events   EventEmitter
	Tiers    []pricing.Tier
	TTL      time.Duration
	Now      func() time.Time
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("cart: queries provider is required")
	}
	if cfg.Products == nil {
		return nil, errors.New("cart: product source is required")
	}
	tiers := cfg.Tiers
	if len(tiers) == 0 {
		tiers = pricing.DefaultTiers()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		q:        cfg.Queries,
		products: cfg.Products,
		lock:     cfg.Lock,
		bus:      cfg.Events,
		tiers:    tiers,
		ttl:      ttl,
		now:      now,
	}, nil
}

// Cart is the API view of a cart shell.
type Cart struct {
	ID        string    `json:"id"`
	AnonID    string    `json:"anonId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ItemView is the API view of a cart line.
type ItemView struct {
	ID            string        `json:"id"`
	ProductID     string        `json:"productId"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Quantity      int64         `json:"quantity"`
	Unit          pricing.Unit  `json:"unit"`
	UnitPrice     pricing.Money `json:"unitPrice"`
	UnitPriceText string        `json:"unitPriceText"`
	Subtotal      pricing.Money `json:"subtotal"`
	SubtotalText  string        `json:"subtotalText"`
}

// Totals is the cart summary block. Amounts exclude IVA.
type Totals struct {
	Subtotal     pricing.Money `json:"subtotal"`
	SubtotalText string        `json:"subtotalText"`
}

// View is the full cart representation.
type View struct {
	Cart
	Items  []ItemView `json:"items"`
	Totals Totals     `json:"totals"`
}

// EnsureCart loads or creates the active cart for an anonymous id.
func (s *Service) EnsureCart(ctx context.Context, anonID string) (Cart, error) {
	anonID = strings.TrimSpace(anonID)
	if anonID == "" {
		return Cart{}, badRequest("anonId", "anonymous cart id is required")
	}
	anon := pgtype.Text{String: anonID, Valid: true}
	expires := s.expiry()

	row, err := s.q.GetActiveCartByAnon(ctx, anon)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return Cart{}, fmt.Errorf("get cart by anon: %w", err)
		}
		row, err = s.q.CreateCart(ctx, anon, expires)
		if err != nil {
			return Cart{}, fmt.Errorf("create cart: %w", err)
		}
		return cartView(row), nil
	}
	_ = s.q.TouchCart(ctx, row.ID, expires)
	row.ExpiresAt = expires
	return cartView(row), nil
}

// AddItem inserts or merges a cart line, snapshotting the tier-modified unit
// price for the line's new total quantity.
func (s *Service) AddItem(ctx context.Context, cartID, productRef string, qty int64, unit pricing.Unit) error {
	if qty <= 0 {
		return badRequest("quantity", "quantity must be a positive integer")
	}
	cID, err := toUUID(cartID)
	if err != nil {
		return badRequest("cartId", "invalid cart id")
	}
	return s.withCartLock(ctx, cartID, func(ctx context.Context) error {
		return s.addItem(ctx, cID, productRef, qty, unit)
	})
}

func (s *Service) addItem(ctx context.Context, cID pgtype.UUID, productRef string, qty int64, unit pricing.Unit) error {
	if _, err := s.q.GetCartByID(ctx, cID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("cart not found", err)
		}
		return fmt.Errorf("get cart: %w", err)
	}

	product, err := s.products.PricingInfoByRef(ctx, productRef)
	if err != nil {
		return err
	}
	if product.BasePrice == nil {
		return badRequest("productId", "product has no checkout price")
	}
	if !product.InStock {
		return badRequest("productId", "product is out of stock")
	}
	if unit == "" {
		unit = product.DefaultUnit
	}
	pID, err := toUUID(product.ID)
	if err != nil {
		return fmt.Errorf("parse product id: %w", err)
	}

	existing, err := s.q.FindItem(ctx, cID, pID, string(unit))
	if err == nil {
		if err := s.writeLine(ctx, cID, existing.ID, existing.Qty+qty, *product.BasePrice); err != nil {
			return err
		}
		s.emitItemAdded(ctx, cID, product.ID, qty, unit)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("find cart item: %w", err)
	}

	unitPrice := s.tierPrice(*product.BasePrice, qty)
	if _, err := s.q.CreateItem(ctx, ItemRow{
		CartID:    cID,
		ProductID: pID,
		Title:     product.Title,
		Slug:      product.Slug,
		Qty:       qty,
		Unit:      string(unit),
		UnitPrice: unitPrice,
		Subtotal:  qty * unitPrice,
	}); err != nil {
		return fmt.Errorf("create cart item: %w", err)
	}
	_ = s.q.TouchCart(ctx, cID, s.expiry())
	if obs.CartItemsAddedTotal != nil {
		obs.CartItemsAddedTotal.Inc()
	}
	s.emitItemAdded(ctx, cID, product.ID, qty, unit)
	return nil
}

// UpdateQty rewrites a line's quantity, re-resolving the tier price.
func (s *Service) UpdateQty(ctx context.Context, cartID, itemID string, qty int64) error {
	if qty <= 0 {
		return badRequest("quantity", "quantity must be a positive integer")
	}
	cID, err := toUUID(cartID)
	if err != nil {
		return badRequest("cartId", "invalid cart id")
	}
	iID, err := toUUID(itemID)
	if err != nil {
		return badRequest("itemId", "invalid item id")
	}
	return s.withCartLock(ctx, cartID, func(ctx context.Context) error {
		item, err := s.q.GetItemByID(ctx, iID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return notFound("cart item not found", err)
			}
			return fmt.Errorf("get cart item: %w", err)
		}
		if !uuidEqual(item.CartID, cID) {
			return notFound("cart item not found", nil)
		}
		basePrice, err := s.basePriceFor(ctx, item)
		if err != nil {
			return err
		}
		return s.writeLineWithBase(ctx, cID, iID, qty, basePrice)
	})
}

// RemoveItem deletes a line scoped to its cart.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) error {
	cID, err := toUUID(cartID)
	if err != nil {
		return badRequest("cartId", "invalid cart id")
	}
	iID, err := toUUID(itemID)
	if err != nil {
		return badRequest("itemId", "invalid item id")
	}
	if err := s.q.DeleteItem(ctx, iID, cID); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	_ = s.q.TouchCart(ctx, cID, s.expiry())
	return nil
}

// Get returns the cart with its lines and totals.
func (s *Service) Get(ctx context.Context, cartID string) (View, error) {
	cID, err := toUUID(cartID)
	if err != nil {
		return View{}, badRequest("cartId", "invalid cart id")
	}
	row, err := s.q.GetCartByID(ctx, cID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return View{}, notFound("cart not found", err)
		}
		return View{}, fmt.Errorf("get cart: %w", err)
	}
	items, err := s.q.ListItems(ctx, cID)
	if err != nil {
		return View{}, fmt.Errorf("list cart items: %w", err)
	}

	view := View{Cart: cartView(row), Items: make([]ItemView, 0, len(items))}
	lines := make([]pricing.Item, 0, len(items))
	for _, item := range items {
		view.Items = append(view.Items, ItemView{
			ID:            uuidString(item.ID),
			ProductID:     uuidString(item.ProductID),
			Title:         item.Title,
			Slug:          item.Slug,
			Quantity:      item.Qty,
			Unit:          pricing.Unit(item.Unit),
			UnitPrice:     item.UnitPrice,
			UnitPriceText: pricing.FormatMXN(item.UnitPrice),
			Subtotal:      item.Subtotal,
			SubtotalText:  pricing.FormatMXN(item.Subtotal),
		})
		lines = append(lines, pricing.Item{Qty: item.Qty, UnitPrice: item.UnitPrice})
	}
	summary := pricing.Summarize(lines, 0)
	view.Totals = Totals{Subtotal: summary.Subtotal, SubtotalText: pricing.FormatMXN(summary.Subtotal)}
	return view, nil
}

func (s *Service) writeLine(ctx context.Context, cartID, itemID pgtype.UUID, qty int64, basePrice pricing.Money) error {
	if err := s.writeLineWithBase(ctx, cartID, itemID, qty, basePrice); err != nil {
		return err
	}
	if obs.CartItemsAddedTotal != nil {
		obs.CartItemsAddedTotal.Inc()
	}
	return nil
}

func (s *Service) writeLineWithBase(ctx context.Context, cartID, itemID pgtype.UUID, qty int64, basePrice pricing.Money) error {
	unitPrice := s.tierPrice(basePrice, qty)
	if err := s.q.UpdateItem(ctx, itemID, qty, unitPrice, qty*unitPrice); err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	_ = s.q.TouchCart(ctx, cartID, s.expiry())
	return nil
}

func (s *Service) basePriceFor(ctx context.Context, item ItemRow) (pricing.Money, error) {
	product, err := s.products.PricingInfoByRef(ctx, uuidString(item.ProductID))
	if err != nil {
		return 0, err
	}
	if product.BasePrice == nil {
		return 0, badRequest("productId", "product has no checkout price")
	}
	return *product.BasePrice, nil
}

func (s *Service) withCartLock(ctx context.Context, cartID string, fn func(context.Context) error) error {
	if s.lock == nil {
		return fn(ctx)
	}
	return s.lock.WithLock(ctx, "cart:lock:"+cartID, 5*time.Second, fn)
}

func (s *Service) emitItemAdded(ctx context.Context, cartID pgtype.UUID, productID string, qty int64, unit pricing.Unit) {
	if s.bus == nil {
		return
	}
	// Best effort; the line is already written.
	_, _ = s.bus.Emit(ctx, events.TopicCartItemAdded, cartID, map[string]any{
		"productId": productID,
		"quantity":  qty,
		"unit":      unit,
	})
}

func (s *Service) tierPrice(base pricing.Money, qty int64) pricing.Money {
	tier := pricing.ResolveTier(qty, s.tiers)
	return pricing.ApplyModifier(base, tier.ModifierBps)
}

func (s *Service) expiry() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: s.now().Add(s.ttl), Valid: true}
}

func cartView(row CartRow) Cart {
	cart := Cart{ID: uuidString(row.ID)}
	if row.AnonID.Valid {
		cart.AnonID = row.AnonID.String
	}
	if row.ExpiresAt.Valid {
		cart.ExpiresAt = row.ExpiresAt.Time
	}
	return cart
}

func badRequest(field, message string) error {
	return &common.AppError{
		Code:       "VALIDATION",
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"field": field},
	}
}

func notFound(message string, err error) error {
	return common.NewAppError("NOT_FOUND", message, http.StatusNotFound, err)
}

func toUUID(raw string) (pgtype.UUID, error) {
	var id pgtype.UUID
	err := id.Scan(strings.TrimSpace(raw))
	return id, err
}

func uuidEqual(a, b pgtype.UUID) bool {
	return a.Valid && b.Valid && a.Bytes == b.Bytes
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	val, err := id.Value()
	if err != nil {
		return ""
	}
	s, _ := val.(string)
	return s
}
