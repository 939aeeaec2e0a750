package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/empaques-mx/backend-empaques/internal/catalog"
	"github.com/empaques-mx/backend-empaques/internal/common"
	"github.com/empaques-mx/backend-empaques/internal/pricing"
)

const cartProductUUID = "5e0efb27-43b8-4d2e-9d1c-2bb37a1ce2af"

type fakeQueries struct {
	carts map[string]CartRow
	items map[string]ItemRow
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{carts: map[string]CartRow{}, items: map[string]ItemRow{}}
}

func mustUUID(t *testing.T, raw string) pgtype.UUID {
	t.Helper()
	var id pgtype.UUID
	require.NoError(t, id.Scan(raw))
	return id
}

func (f *fakeQueries) GetActiveCartByAnon(_ context.Context, anonID pgtype.Text) (CartRow, error) {
	for _, cart := range f.carts {
		if cart.AnonID.Valid && cart.AnonID.String == anonID.String {
			return cart, nil
		}
	}
	return CartRow{}, pgx.ErrNoRows
}

func (f *fakeQueries) GetCartByID(_ context.Context, id pgtype.UUID) (CartRow, error) {
	cart, ok := f.carts[uuidString(id)]
	if !ok {
		return CartRow{}, pgx.ErrNoRows
	}
	return cart, nil
}

func (f *fakeQueries) CreateCart(_ context.Context, anonID pgtype.Text, expiresAt pgtype.Timestamptz) (CartRow, error) {
	var id pgtype.UUID
	_ = id.Scan(uuid.NewString())
	cart := CartRow{ID: id, AnonID: anonID, ExpiresAt: expiresAt}
	f.carts[uuidString(id)] = cart
	return cart, nil
}

func (f *fakeQueries) TouchCart(_ context.Context, id pgtype.UUID, expiresAt pgtype.Timestamptz) error {
	if cart, ok := f.carts[uuidString(id)]; ok {
		cart.ExpiresAt = expiresAt
		f.carts[uuidString(id)] = cart
	}
	return nil
}

func (f *fakeQueries) ListItems(_ context.Context, cartID pgtype.UUID) ([]ItemRow, error) {
	var result []ItemRow
	for _, item := range f.items {
		if uuidEqual(item.CartID, cartID) {
			result = append(result, item)
		}
	}
	return result, nil
}

func (f *fakeQueries) FindItem(_ context.Context, cartID, productID pgtype.UUID, unit string) (ItemRow, error) {
	for _, item := range f.items {
		if uuidEqual(item.CartID, cartID) && uuidEqual(item.ProductID, productID) && item.Unit == unit {
			return item, nil
		}
	}
	return ItemRow{}, pgx.ErrNoRows
}

func (f *fakeQueries) GetItemByID(_ context.Context, id pgtype.UUID) (ItemRow, error) {
	item, ok := f.items[uuidString(id)]
	if !ok {
		return ItemRow{}, pgx.ErrNoRows
	}
	return item, nil
}

func (f *fakeQueries) CreateItem(_ context.Context, item ItemRow) (ItemRow, error) {
	var id pgtype.UUID
	_ = id.Scan(uuid.NewString())
	item.ID = id
	f.items[uuidString(id)] = item
	return item, nil
}

func (f *fakeQueries) UpdateItem(_ context.Context, id pgtype.UUID, qty, unitPrice, subtotal int64) error {
	item, ok := f.items[uuidString(id)]
	if !ok {
		return pgx.ErrNoRows
	}
	item.Qty = qty
	item.UnitPrice = unitPrice
	item.Subtotal = subtotal
	f.items[uuidString(id)] = item
	return nil
}

func (f *fakeQueries) DeleteItem(_ context.Context, id, cartID pgtype.UUID) error {
	item, ok := f.items[uuidString(id)]
	if ok && uuidEqual(item.CartID, cartID) {
		delete(f.items, uuidString(id))
	}
	return nil
}

type fakeProducts struct {
	info catalog.PricingInfo
	err  error
}

func (f *fakeProducts) PricingInfoByRef(_ context.Context, _ string) (catalog.PricingInfo, error) {
	return f.info, f.err
}

func cartProduct() catalog.PricingInfo {
	price := pricing.Money(1000)
	return catalog.PricingInfo{
		ID:              cartProductUUID,
		Title:           "Caja de cartón 40x30x30",
		Slug:            "caja-carton-40",
		BasePrice:       &price,
		UnitWeightGrams: 1000,
		DefaultUnit:     pricing.UnitPiezas,
		InStock:         true,
	}
}

func newCartService(t *testing.T, queries *fakeQueries, info catalog.PricingInfo) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		Queries:  queries,
		Products: &fakeProducts{info: info},
		TTL:      time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func ensuredCart(t *testing.T, svc *Service) Cart {
	t.Helper()
	cart, err := svc.EnsureCart(context.Background(), "anon-123")
	require.NoError(t, err)
	return cart
}

func TestEnsureCartCreatesAndReuses(t *testing.T) {
	svc := newCartService(t, newFakeQueries(), cartProduct())

	first, err := svc.EnsureCart(context.Background(), "anon-123")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.Equal(t, "anon-123", first.AnonID)

	second, err := svc.EnsureCart(context.Background(), "anon-123")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	_, err = svc.EnsureCart(context.Background(), "")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION", appErr.Code)
}

func TestAddItemSnapshotsTierPrice(t *testing.T) {
	queries := newFakeQueries()
	svc := newCartService(t, queries, cartProduct())
	cart := ensuredCart(t, svc)

	require.NoError(t, svc.AddItem(context.Background(), cart.ID, "caja-carton-40", 150, pricing.UnitPiezas))

	view, err := svc.Get(context.Background(), cart.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	// Mid tier: 1000 centavos x 1.10.
	require.Equal(t, pricing.Money(1100), view.Items[0].UnitPrice)
	require.Equal(t, pricing.Money(165000), view.Items[0].Subtotal)
	require.Equal(t, pricing.Money(165000), view.Totals.Subtotal)
	require.Equal(t, "$1650.00 MXN", view.Totals.SubtotalText)
}

func TestAddItemMergesLinesAndReresolvesTier(t *testing.T) {
	queries := newFakeQueries()
	svc := newCartService(t, queries, cartProduct())
	cart := ensuredCart(t, svc)

	require.NoError(t, svc.AddItem(context.Background(), cart.ID, "caja-carton-40", 150, pricing.UnitPiezas))
	require.NoError(t, svc.AddItem(context.Background(), cart.ID, "caja-carton-40", 200, pricing.UnitPiezas))

	view, err := svc.Get(context.Background(), cart.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, int64(350), view.Items[0].Quantity)
	// Combined quantity crosses into the wholesale tier: base price applies.
	require.Equal(t, pricing.Money(1000), view.Items[0].UnitPrice)
	require.Equal(t, pricing.Money(350000), view.Items[0].Subtotal)
}

func TestUpdateQtyReresolvesTier(t *testing.T) {
	queries := newFakeQueries()
	svc := newCartService(t, queries, cartProduct())
	cart := ensuredCart(t, svc)

	require.NoError(t, svc.AddItem(context.Background(), cart.ID, "caja-carton-40", 150, pricing.UnitPiezas))
	view, err := svc.Get(context.Background(), cart.ID)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateQty(context.Background(), cart.ID, view.Items[0].ID, 50))

	view, err = svc.Get(context.Background(), cart.ID)
	require.NoError(t, err)
	// Dropping below 101 lands back in the small tier.
	require.Equal(t, pricing.Money(1300), view.Items[0].UnitPrice)
	require.Equal(t, pricing.Money(65000), view.Items[0].Subtotal)
}

func TestAddItemRejectsUnpricedProduct(t *testing.T) {
	info := cartProduct()
	info.BasePrice = nil
	svc := newCartService(t, newFakeQueries(), info)
	cart := ensuredCart(t, svc)

	err := svc.AddItem(context.Background(), cart.ID, "caja-carton-40", 150, pricing.UnitPiezas)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION", appErr.Code)
}

func TestAddItemRejectsOutOfStock(t *testing.T) {
	info := cartProduct()
	info.InStock = false
	svc := newCartService(t, newFakeQueries(), info)
	cart := ensuredCart(t, svc)

	err := svc.AddItem(context.Background(), cart.ID, "caja-carton-40", 150, pricing.UnitPiezas)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION", appErr.Code)
}

func TestRemoveItemClearsTotals(t *testing.T) {
	queries := newFakeQueries()
	svc := newCartService(t, queries, cartProduct())
	cart := ensuredCart(t, svc)

	require.NoError(t, svc.AddItem(context.Background(), cart.ID, "caja-carton-40", 150, pricing.UnitPiezas))
	view, err := svc.Get(context.Background(), cart.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(context.Background(), cart.ID, view.Items[0].ID))

	view, err = svc.Get(context.Background(), cart.ID)
	require.NoError(t, err)
	require.Empty(t, view.Items)
	require.Equal(t, pricing.Money(0), view.Totals.Subtotal)
}

func TestGetUnknownCartIsNotFound(t *testing.T) {
	svc := newCartService(t, newFakeQueries(), cartProduct())

	_, err := svc.Get(context.Background(), uuid.NewString())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}
