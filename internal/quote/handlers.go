package quote

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/empaques-mx/backend-empaques/internal/common"
	"github.com/empaques-mx/backend-empaques/internal/pricing"
)

// Handler exposes the quote request endpoints.
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

type createPayload struct {
	ProductID    string `json:"productId" validate:"required"`
	Quantity     int64  `json:"quantity" validate:"required,gt=0"`
	Unit         string `json:"unit" validate:"omitempty,oneof=kg piezas"`
	ZoneID       string `json:"zoneId" validate:"omitempty,max=64"`
	ContactName  string `json:"contactName" validate:"required,min=2,max=120"`
	ContactEmail string `json:"contactEmail" validate:"required,email"`
	ContactPhone string `json:"contactPhone" validate:"omitempty,max=30"`
	Company      string `json:"company" validate:"omitempty,max=160"`
	Message      string `json:"message" validate:"omitempty,max=2000"`
}

// Create handles POST /api/v1/quotes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid quote request", common.ValidationDetails(err))
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
	request, err := h.service.Create(r.Context(), Input{
		ProductRef:   strings.TrimSpace(payload.ProductID),
		Quantity:     payload.Quantity,
		Unit:         unit,
		ZoneID:       payload.ZoneID,
		ContactName:  payload.ContactName,
		ContactEmail: payload.ContactEmail,
		ContactPhone: payload.ContactPhone,
		Company:      payload.Company,
		Message:      payload.Message,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": request})
}

// Get handles GET /api/v1/quotes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	request, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": request})
}

// Prefill handles GET /api/v1/quotes/prefill, resolving the /cotizar link
// parameters into form data.
func (h *Handler) Prefill(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	view, err := h.service.ResolvePrefill(r.Context(), r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
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
