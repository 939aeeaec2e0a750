package calculator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/empaques-mx/backend-empaques/internal/catalog"
	"github.com/empaques-mx/backend-empaques/internal/common"
)

func testHandler(info catalog.PricingInfo) *Handler {
	svc, _ := testService(info)
	return NewHandler(HandlerConfig{Service: svc})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestQuoteHandlerReturnsSummary(t *testing.T) {
	h := testHandler(boxProduct())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculator/quote",
		strings.NewReader(`{"productId":"caja-carton-40","quantity":200,"unit":"piezas"}`))
	rec := httptest.NewRecorder()
	h.Quote(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	tier, ok := data["tier"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Cantidad media", tier["name"])
	require.Equal(t, "checkout", tier["channel"])
}

func TestQuoteHandlerRejectsInvalidJSON(t *testing.T) {
	h := testHandler(boxProduct())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculator/quote", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	h.Quote(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "BAD_REQUEST", errBody["code"])
}

func TestQuoteHandlerSurfacesQuantityValidation(t *testing.T) {
	h := testHandler(boxProduct())

	for _, payload := range []string{
		`{"productId":"caja-carton-40","quantity":0}`,
		`{"productId":"caja-carton-40","quantity":-3}`,
		`{"quantity":10}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/calculator/quote", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		h.Quote(rec, req)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, payload)
		body := decodeBody(t, rec)
		errBody, ok := body["error"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "VALIDATION", errBody["code"])
	}
}

func TestQuoteHandlerRejectsUnknownUnit(t *testing.T) {
	h := testHandler(boxProduct())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculator/quote",
		strings.NewReader(`{"productId":"caja-carton-40","quantity":10,"unit":"toneladas"}`))
	rec := httptest.NewRecorder()
	h.Quote(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestQuoteHandlerPropagatesNotFound(t *testing.T) {
	notFound := &fakeProducts{err: common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, nil)}
	h := NewHandler(HandlerConfig{Service: &Service{Products: notFound}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculator/quote",
		strings.NewReader(`{"productId":"missing","quantity":10}`))
	rec := httptest.NewRecorder()
	h.Quote(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProceedHandlerDispatchesQuoteChannel(t *testing.T) {
	h := testHandler(boxProduct())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculator/proceed",
		strings.NewReader(`{"productId":"caja-carton-40","quantity":500,"unit":"piezas"}`))
	rec := httptest.NewRecorder()
	h.Proceed(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "quote", data["channel"])
	url, ok := data["url"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(url, "/cotizar?producto="))
}

func TestProceedHandlerValidatesCartID(t *testing.T) {
	h := testHandler(boxProduct())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculator/proceed",
		strings.NewReader(`{"productId":"caja-carton-40","quantity":150,"unit":"piezas","cartId":"nope"}`))
	rec := httptest.NewRecorder()
	h.Proceed(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestZonesHandlerListsZones(t *testing.T) {
	h := testHandler(boxProduct())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shipping/zones", nil)
	rec := httptest.NewRecorder()
	h.Zones(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 5)
	first, ok := data[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "cdmx-metro", first["id"])
}
