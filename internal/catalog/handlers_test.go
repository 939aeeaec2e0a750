package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, queries *fakeQueries) *chi.Mux {
	t.Helper()
	svc := newTestService(t, queries, nil)
	handler := NewHandler(HandlerConfig{Service: svc})

	r := chi.NewRouter()
	r.Get("/api/v1/categories", handler.Categories)
	r.Get("/api/v1/products", handler.Products)
	r.Get("/api/v1/products/{slug}", handler.ProductDetail)
	return r
}

func TestProductsEndpoint(t *testing.T) {
	queries := &fakeQueries{products: []ProductRow{boxRow(t)}, total: 42}
	router := newTestRouter(t, queries)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "42", rr.Header().Get("X-Total-Count"))

	var body struct {
		Data       []ProductListItem `json:"data"`
		Pagination struct {
			Page       int `json:"page"`
			PerPage    int `json:"per_page"`
			TotalItems int `json:"total_items"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, "caja-carton-30x30x30", body.Data[0].Slug)
	require.Equal(t, 1, body.Pagination.Page)
	require.Equal(t, 42, body.Pagination.TotalItems)
}

func TestProductsEndpointRejectsBadParams(t *testing.T) {
	router := newTestRouter(t, &fakeQueries{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?page=-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "BAD_REQUEST", body.Error.Code)
}

func TestProductDetailEndpoint(t *testing.T) {
	queries := &fakeQueries{products: []ProductRow{boxRow(t)}}
	router := newTestRouter(t, queries)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/caja-carton-30x30x30", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data ProductDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "Caja de cartón 30x30x30", body.Data.Title)
	require.Equal(t, "$15.99 MXN", body.Data.BasePriceText)
}

func TestProductDetailEndpointNotFound(t *testing.T) {
	router := newTestRouter(t, &fakeQueries{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/no-existe", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestCategoriesEndpoint(t *testing.T) {
	queries := &fakeQueries{categories: []CategoryRow{
		{ID: mustUUID(t, "0d1e2f3a-4b5c-4d6e-8f90-a1b2c3d4e5f6"), Name: "Cajas", Slug: "cajas"},
	}}
	router := newTestRouter(t, queries)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data []Category `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, "cajas", body.Data[0].Slug)
	require.Nil(t, body.Data[0].ParentID)
}
