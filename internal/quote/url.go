package quote

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/empaques-mx/backend-empaques/internal/pricing"
)

// PathCotizar is the storefront route hosting the quote request form.
const PathCotizar = "/cotizar"

const (
	paramProducto = "producto"
	paramCantidad = "cantidad"
	paramUnidad   = "unidad"
)

// PrefillURL builds the quote-form URL the calculator dispatches wholesale
// orders to. Parameter order is part of the contract consumed by the
// storefront, so the query string is assembled by hand instead of through
// url.Values (which sorts keys).
func PrefillURL(productID string, qty int64, unit pricing.Unit) string {
	return PathCotizar + "?" +
		paramProducto + "=" + url.QueryEscape(productID) + "&" +
		paramCantidad + "=" + strconv.FormatInt(qty, 10) + "&" +
		paramUnidad + "=" + url.QueryEscape(string(unit))
}

// Prefill carries the parsed quote-form parameters.
type Prefill struct {
	ProductID string       `json:"productId"`
	Quantity  int64        `json:"quantity"`
	Unit      pricing.Unit `json:"unit"`
}

// ParsePrefill decodes the calculator's prefill query parameters. Invalid or
// non-positive quantities are rejected rather than coerced to zero.
func ParsePrefill(values url.Values) (Prefill, error) {
	productID := strings.TrimSpace(values.Get(paramProducto))
	if productID == "" {
		return Prefill{}, fmt.Errorf("parse prefill: %s is required", paramProducto)
	}
	qty, err := strconv.ParseInt(strings.TrimSpace(values.Get(paramCantidad)), 10, 64)
	if err != nil {
		return Prefill{}, fmt.Errorf("parse prefill: invalid %s: %w", paramCantidad, err)
	}
	if qty <= 0 {
		return Prefill{}, fmt.Errorf("parse prefill: %s must be positive", paramCantidad)
	}
	unit, ok := pricing.ParseUnit(values.Get(paramUnidad))
	if !ok {
		return Prefill{}, fmt.Errorf("parse prefill: invalid %s", paramUnidad)
	}
	return Prefill{ProductID: productID, Quantity: qty, Unit: unit}, nil
}
