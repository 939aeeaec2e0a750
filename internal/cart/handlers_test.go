package cart

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()
	svc := newCartService(t, newFakeQueries(), cartProduct())
	h := NewHandler(HandlerConfig{Service: svc})

	router := chi.NewRouter()
	router.Post("/api/v1/cart", h.Ensure)
	router.Get("/api/v1/cart/{cartID}", h.Get)
	router.Post("/api/v1/cart/{cartID}/items", h.AddItem)
	router.Patch("/api/v1/cart/{cartID}/items/{itemID}", h.UpdateItem)
	router.Delete("/api/v1/cart/{cartID}/items/{itemID}", h.RemoveItem)
	return router, svc
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func dataOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	return data
}

func TestEnsureHandlerIssuesAnonID(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(AnonIDHeader))

	data := dataOf(t, rec)
	require.NotEmpty(t, data["id"])
}

func TestCartItemLifecycle(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cartID, _ := dataOf(t, rec)["id"].(string)
	require.NotEmpty(t, cartID)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/"+cartID+"/items",
		`{"productId":"caja-carton-40","quantity":150,"unit":"piezas"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	items, ok := dataOf(t, rec)["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item, ok := items[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(1100), item["unitPrice"])
	itemID, _ := item["id"].(string)

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/cart/"+cartID+"/items/"+itemID,
		`{"quantity":400}`)
	require.Equal(t, http.StatusOK, rec.Code)
	items, _ = dataOf(t, rec)["items"].([]any)
	item, _ = items[0].(map[string]any)
	require.Equal(t, float64(1000), item["unitPrice"])

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/cart/"+cartID+"/items/"+itemID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart/"+cartID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	totals, ok := dataOf(t, rec)["totals"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(0), totals["subtotal"])
}

func TestAddItemHandlerValidatesPayload(t *testing.T) {
	router, svc := testRouter(t)
	cart := ensuredCart(t, svc)

	for _, payload := range []string{
		`{"quantity":10}`,
		`{"productId":"caja-carton-40","quantity":0}`,
		`{"productId":"caja-carton-40","quantity":10,"unit":"cajas"}`,
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/"+cart.ID+"/items", payload)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, payload)
	}
}

func TestGetHandlerUnknownCart(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart/5e0efb27-43b8-4d2e-9d1c-2bb37a1ce2af", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
