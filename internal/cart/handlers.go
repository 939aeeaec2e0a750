package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/empaques-mx/backend-empaques/internal/common"
	"github.com/empaques-mx/backend-empaques/internal/pricing"
)

// AnonIDHeader carries the anonymous cart identifier issued to the storefront.
const AnonIDHeader = "X-Anon-Id"

// Handler exposes the cart endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service  *Service
	Validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	v := cfg.Validate
	if v == nil {
		v = validator.New()
	}
	return &Handler{service: cfg.Service, validate: v}
}

type addItemPayload struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	Unit      string `json:"unit" validate:"omitempty,oneof=kg piezas"`
}

type updateQtyPayload struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// Ensure handles POST /api/v1/cart. It issues an anonymous id when the client
// does not send one, so the storefront can persist it client-side.
func (h *Handler) Ensure(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	anonID := strings.TrimSpace(r.Header.Get(AnonIDHeader))
	if anonID == "" {
		anonID = uuid.NewString()
	}
	cart, err := h.service.EnsureCart(r.Context(), anonID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set(AnonIDHeader, anonID)
	common.JSON(w, http.StatusOK, map[string]any{"data": cart})
}

// Get handles GET /api/v1/cart/{cartID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	view, err := h.service.Get(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// AddItem handles POST /api/v1/cart/{cartID}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload addItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid cart item", common.ValidationDetails(err))
		return
	}
	var unit pricing.Unit
	if strings.TrimSpace(payload.Unit) != "" {
		parsed, ok := pricing.ParseUnit(payload.Unit)
		if !ok {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "unit must be kg or piezas", map[string]any{"field": "unit"})
			return
		}
		unit = parsed
	}
	cartID := chi.URLParam(r, "cartID")
	if err := h.service.AddItem(r.Context(), cartID, strings.TrimSpace(payload.ProductID), payload.Quantity, unit); err != nil {
		h.writeError(w, err)
		return
	}
	view, err := h.service.Get(r.Context(), cartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": view})
}

// UpdateItem handles PATCH /api/v1/cart/{cartID}/items/{itemID}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload updateQtyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid quantity", common.ValidationDetails(err))
		return
	}
	cartID := chi.URLParam(r, "cartID")
	if err := h.service.UpdateQty(r.Context(), cartID, chi.URLParam(r, "itemID"), payload.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	view, err := h.service.Get(r.Context(), cartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// RemoveItem handles DELETE /api/v1/cart/{cartID}/items/{itemID}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	if err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "itemID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := appErr.Code
		if code == "" {
			code = "INTERNAL"
		}
		message := appErr.Message
		if message == "" {
			message = "internal error"
		}
		common.JSONError(w, status, code, message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
