package quote_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/empaques-mx/backend-empaques/internal/pricing"
	"github.com/empaques-mx/backend-empaques/internal/quote"
)

func TestPrefillURLExactShape(t *testing.T) {
	got := quote.PrefillURL("42", 75, pricing.UnitKg)
	require.Equal(t, "/cotizar?producto=42&cantidad=75&unidad=kg", got)
}

func TestPrefillRoundTrip(t *testing.T) {
	raw := quote.PrefillURL("a1b2", 350, pricing.UnitPiezas)
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	prefill, err := quote.ParsePrefill(parsed.Query())
	require.NoError(t, err)
	require.Equal(t, "a1b2", prefill.ProductID)
	require.Equal(t, int64(350), prefill.Quantity)
	require.Equal(t, pricing.UnitPiezas, prefill.Unit)
}

func TestParsePrefillRejectsBadInput(t *testing.T) {
	_, err := quote.ParsePrefill(url.Values{"cantidad": {"10"}, "unidad": {"kg"}})
	require.Error(t, err)

	_, err = quote.ParsePrefill(url.Values{"producto": {"42"}, "cantidad": {"muchos"}, "unidad": {"kg"}})
	require.Error(t, err)

	_, err = quote.ParsePrefill(url.Values{"producto": {"42"}, "cantidad": {"0"}, "unidad": {"kg"}})
	require.Error(t, err)

	_, err = quote.ParsePrefill(url.Values{"producto": {"42"}, "cantidad": {"10"}, "unidad": {"litros"}})
	require.Error(t, err)
}
