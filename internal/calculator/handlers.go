package calculator

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/empaques-mx/backend-empaques/internal/common"
	"github.com/empaques-mx/backend-empaques/internal/freight"
	"github.com/empaques-mx/backend-empaques/internal/pricing"
)

// Handler exposes the calculator endpoints.
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

type quotePayload struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	Unit      string `json:"unit" validate:"omitempty,oneof=kg piezas"`
	ZoneID    string `json:"zoneId" validate:"omitempty,max=64"`
}

type proceedPayload struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	Unit      string `json:"unit" validate:"omitempty,oneof=kg piezas"`
	ZoneID    string `json:"zoneId" validate:"omitempty,max=64"`
	CartID    string `json:"cartId" validate:"omitempty,uuid4"`
}

// Quote handles POST /api/v1/calculator/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "calculator service not configured", nil)
		return
	}
	var payload quotePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if details, ok := h.checkPayload(payload); !ok {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid calculator input", details)
		return
	}
	unit, err := parseOptionalUnit(payload.Unit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	result, err := h.service.Quote(r.Context(), QuoteInput{
		ProductRef: strings.TrimSpace(payload.ProductID),
		Quantity:   payload.Quantity,
		Unit:       unit,
		ZoneID:     strings.TrimSpace(payload.ZoneID),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// Proceed handles POST /api/v1/calculator/proceed.
func (h *Handler) Proceed(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "calculator service not configured", nil)
		return
	}
	var payload proceedPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if details, ok := h.checkPayload(payload); !ok {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid calculator input", details)
		return
	}
	unit, err := parseOptionalUnit(payload.Unit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	result, err := h.service.Proceed(r.Context(), ProceedInput{
		ProductRef: strings.TrimSpace(payload.ProductID),
		Quantity:   payload.Quantity,
		Unit:       unit,
		ZoneID:     strings.TrimSpace(payload.ZoneID),
		CartID:     strings.TrimSpace(payload.CartID),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// Zones handles GET /api/v1/shipping/zones.
func (h *Handler) Zones(w http.ResponseWriter, r *http.Request) {
	zones := freight.DefaultZones()
	if h.service != nil && len(h.service.Zones) > 0 {
		zones = h.service.Zones
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": zones})
}

func (h *Handler) checkPayload(payload any) (map[string]any, bool) {
	err := h.validate.Struct(payload)
	if err == nil {
		return nil, true
	}
	return common.ValidationDetails(err), false
}

func parseOptionalUnit(raw string) (pricing.Unit, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	unit, ok := pricing.ParseUnit(raw)
	if !ok {
		return "", &common.AppError{
			Code:       "VALIDATION",
			Message:    "unit must be kg or piezas",
			HTTPStatus: http.StatusUnprocessableEntity,
			Details:    map[string]any{"field": "unit"},
		}
	}
	return unit, nil
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
