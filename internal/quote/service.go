package quote

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/empaques-mx/backend-empaques/internal/catalog"
	"github.com/empaques-mx/backend-empaques/internal/common"
	"github.com/empaques-mx/backend-empaques/internal/events"
	"github.com/empaques-mx/backend-empaques/internal/freight"
	"github.com/empaques-mx/backend-empaques/internal/obs"
	"github.com/empaques-mx/backend-empaques/internal/pricing"
)

// Quote request lifecycle states.
const (
	StatusPending  = "pending"
	StatusNotified = "notified"
	StatusClosed   = "closed"
)

type store interface {
	InsertRequest(ctx context.Context, row RequestRow) (RequestRow, error)
	GetRequest(ctx context.Context, id pgtype.UUID) (RequestRow, error)
	UpdateRequestStatus(ctx context.Context, id pgtype.UUID, status string) error
}

// ProductSource resolves product data for quote requests.
type ProductSource interface {
	PricingInfoByRef(ctx context.Context, ref string) (catalog.PricingInfo, error)
}

// TaskEnqueuer abstracts the asynq client for tests.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EventEmitter records domain events for the quote workflow.
type EventEmitter interface {
	Emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) (events.Event, error)
}

// Service owns the wholesale quote request workflow.
type Service struct {
	store                  store
	products               ProductSource
	tasks                  TaskEnqueuer
	bus                    EventEmitter
	zones                  []freight.Zone
	defaultZoneID          string
	defaultUnitWeightGrams int64
	logger                 zerolog.Logger
}

// ServiceConfig configures a quote Service.
type ServiceConfig struct {
	Store                  store
	Products               ProductSource
	Tasks                  TaskEnqueuer
	Events                 EventEmitter
	Zones                  []freight.Zone
	DefaultZoneID          string
	DefaultUnitWeightGrams int64
	Logger                 zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	zones := cfg.Zones
	if len(zones) == 0 {
		zones = freight.DefaultZones()
	}
	unitWeight := cfg.DefaultUnitWeightGrams
	if unitWeight <= 0 {
		unitWeight = 100
	}
	return &Service{
		store:                  cfg.Store,
		products:               cfg.Products,
		tasks:                  cfg.Tasks,
		bus:                    cfg.Events,
		zones:                  zones,
		defaultZoneID:          cfg.DefaultZoneID,
		defaultUnitWeightGrams: unitWeight,
		logger:                 cfg.Logger,
	}
}

// Input describes a quote request submission.
type Input struct {
	ProductRef   string
	Quantity     int64
	Unit         pricing.Unit
	ZoneID       string
	ContactName  string
	ContactEmail string
	ContactPhone string
	Company      string
	Message      string
}

// ProductRef identifies the quoted product in API responses.
type ProductRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FreightSnapshot is the freight estimate captured when the request was made.
type FreightSnapshot struct {
	Cost     pricing.Money `json:"cost"`
	CostText string        `json:"costText,omitempty"`
	Pending  bool          `json:"pending"`
}

// Request is the API view of a stored quote request.
type Request struct {
	ID               string          `json:"id"`
	Product          ProductRef      `json:"product"`
	Quantity         int64           `json:"quantity"`
	Unit             pricing.Unit    `json:"unit"`
	ZoneID           string          `json:"zoneId,omitempty"`
	ContactName      string          `json:"contactName"`
	ContactEmail     string          `json:"contactEmail"`
	ContactPhone     string          `json:"contactPhone,omitempty"`
	Company          string          `json:"company,omitempty"`
	Message          string          `json:"message,omitempty"`
	Freight          FreightSnapshot `json:"freight"`
	TotalWeightGrams int64           `json:"totalWeightGrams"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// PrefillView resolves a /cotizar prefill link into form data.
type PrefillView struct {
	Product  ProductRef   `json:"product"`
	Quantity int64        `json:"quantity"`
	Unit     pricing.Unit `json:"unit"`
}

// Create stores a quote request with a freight snapshot and schedules the
// sales notification.
func (s *Service) Create(ctx context.Context, in Input) (Request, error) {
	if s.store == nil || s.products == nil {
		return Request{}, errors.New("quote: service not configured")
	}
	if in.Quantity <= 0 {
		return Request{}, &common.AppError{
			Code:       "VALIDATION",
			Message:    "quantity must be a positive integer",
			HTTPStatus: http.StatusUnprocessableEntity,
			Details:    map[string]any{"field": "quantity"},
		}
	}
	product, err := s.products.PricingInfoByRef(ctx, in.ProductRef)
	if err != nil {
		s.countRequest("error")
		return Request{}, err
	}
	unit := in.Unit
	if unit == "" {
		unit = product.DefaultUnit
	}
	if unit == "" {
		unit = pricing.UnitPiezas
	}

	zoneID := strings.TrimSpace(in.ZoneID)
	if zoneID == "" {
		zoneID = s.defaultZoneID
	}
	zone := freight.ZoneByID(zoneID, s.zones)

	unitWeight := product.UnitWeightGrams
	if unitWeight <= 0 {
		unitWeight = s.defaultUnitWeightGrams
	}
	weight := freight.TotalWeightGrams(in.Quantity, unit, unitWeight)
	estimate := freight.EstimateCost(weight, zone, pricing.ChannelQuote)

	productID, err := toUUID(product.ID)
	if err != nil {
		s.countRequest("error")
		return Request{}, err
	}
	row := RequestRow{
		ProductID:        productID,
		ProductTitle:     product.Title,
		Quantity:         in.Quantity,
		Unit:             string(unit),
		ZoneID:           textOrNull(zone.ID),
		ContactName:      strings.TrimSpace(in.ContactName),
		ContactEmail:     strings.TrimSpace(in.ContactEmail),
		ContactPhone:     textOrNull(in.ContactPhone),
		Company:          textOrNull(in.Company),
		Message:          textOrNull(in.Message),
		FreightPending:   estimate.Pending,
		TotalWeightGrams: weight,
		Status:           StatusPending,
	}
	if !estimate.Pending {
		row.FreightCost = pgtype.Int8{Int64: int64(estimate.Cost), Valid: true}
	}
	stored, err := s.store.InsertRequest(ctx, row)
	if err != nil {
		s.countRequest("error")
		return Request{}, err
	}

	request := requestView(stored)
	s.enqueueNotification(request.ID)
	s.emitRequested(ctx, stored)
	s.countRequest("created")
	return request, nil
}

func (s *Service) emitRequested(ctx context.Context, row RequestRow) {
	if s.bus == nil {
		return
	}
	payload := map[string]any{
		"productId": uuidString(row.ProductID),
		"quantity":  row.Quantity,
		"unit":      row.Unit,
	}
	if _, err := s.bus.Emit(ctx, events.TopicQuoteRequested, row.ID, payload); err != nil {
		s.logger.Error().Err(err).Str("quote_id", uuidString(row.ID)).Msg("emit quote event")
	}
}

// Get fetches a quote request by id.
func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	if s.store == nil {
		return Request{}, errors.New("quote: service not configured")
	}
	uid, err := toUUID(id)
	if err != nil {
		return Request{}, &common.AppError{
			Code:       "BAD_REQUEST",
			Message:    "invalid quote request id",
			HTTPStatus: http.StatusBadRequest,
		}
	}
	row, err := s.store.GetRequest(ctx, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, common.NewAppError("NOT_FOUND", "quote request not found", http.StatusNotFound, err)
		}
		return Request{}, err
	}
	return requestView(row), nil
}

// ResolvePrefill expands a /cotizar link's query values into form data for the
// storefront quote form.
func (s *Service) ResolvePrefill(ctx context.Context, values url.Values) (PrefillView, error) {
	if s.products == nil {
		return PrefillView{}, errors.New("quote: service not configured")
	}
	prefill, err := ParsePrefill(values)
	if err != nil {
		return PrefillView{}, &common.AppError{
			Code:       "VALIDATION",
			Message:    err.Error(),
			HTTPStatus: http.StatusUnprocessableEntity,
		}
	}
	product, err := s.products.PricingInfoByRef(ctx, prefill.ProductID)
	if err != nil {
		return PrefillView{}, err
	}
	return PrefillView{
		Product:  ProductRef{ID: product.ID, Title: product.Title},
		Quantity: prefill.Quantity,
		Unit:     prefill.Unit,
	}, nil
}

func (s *Service) enqueueNotification(quoteID string) {
	if s.tasks == nil {
		return
	}
	task, err := NewQuoteRequestedTask(quoteID)
	if err != nil {
		s.logger.Error().Err(err).Str("quote_id", quoteID).Msg("build quote task")
		return
	}
	if _, err := s.tasks.Enqueue(task); err != nil {
		// The request is already stored; notification failures are retried by
		// sales through the pending status, not by failing the API call.
		s.logger.Error().Err(err).Str("quote_id", quoteID).Msg("enqueue quote task")
	}
}

func (s *Service) countRequest(result string) {
	if obs.QuoteRequestsTotal != nil {
		obs.QuoteRequestsTotal.WithLabelValues(result).Inc()
	}
}

func requestView(row RequestRow) Request {
	request := Request{
		ID:               uuidString(row.ID),
		Product:          ProductRef{ID: uuidString(row.ProductID), Title: row.ProductTitle},
		Quantity:         row.Quantity,
		Unit:             pricing.Unit(row.Unit),
		ContactName:      row.ContactName,
		ContactEmail:     row.ContactEmail,
		TotalWeightGrams: row.TotalWeightGrams,
		Status:           row.Status,
		Freight:          FreightSnapshot{Pending: row.FreightPending},
	}
	if row.ZoneID.Valid {
		request.ZoneID = row.ZoneID.String
	}
	if row.ContactPhone.Valid {
		request.ContactPhone = row.ContactPhone.String
	}
	if row.Company.Valid {
		request.Company = row.Company.String
	}
	if row.Message.Valid {
		request.Message = row.Message.String
	}
	if row.FreightCost.Valid {
		request.Freight.Cost = pricing.Money(row.FreightCost.Int64)
		request.Freight.CostText = pricing.FormatMXN(request.Freight.Cost)
	}
	if row.CreatedAt.Valid {
		request.CreatedAt = row.CreatedAt.Time
	}
	return request
}

func toUUID(raw string) (pgtype.UUID, error) {
	var id pgtype.UUID
	err := id.Scan(strings.TrimSpace(raw))
	return id, err
}

func textOrNull(raw string) pgtype.Text {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: trimmed, Valid: true}
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
