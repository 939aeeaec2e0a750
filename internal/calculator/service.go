package calculator

import (
	"context"
	"errors"
	"net/http"

	"github.com/empaques-mx/backend-empaques/internal/catalog"
	"github.com/empaques-mx/backend-empaques/internal/common"
	"github.com/empaques-mx/backend-empaques/internal/freight"
	"github.com/empaques-mx/backend-empaques/internal/obs"
	"github.com/empaques-mx/backend-empaques/internal/pricing"
	"github.com/empaques-mx/backend-empaques/internal/quote"
)

// ProductSource resolves the product view needed for a calculation.
type ProductSource interface {
	PricingInfoByRef(ctx context.Context, ref string) (catalog.PricingInfo, error)
}

// CartService is the direct-checkout collaborator the calculator hands
// mid-tier orders to. The calculator owns no cart state.
type CartService interface {
	AddItem(ctx context.Context, cartID, productID string, qty int64, unit pricing.Unit) error
}

// Service composes tier resolution and freight estimation, and resolves the
// channel-specific dispatch action.
type Service struct {
	Products               ProductSource
	Cart                   CartService
	Tiers                  []pricing.Tier
	Zones                  []freight.Zone
	DefaultZoneID          string
	DefaultUnitWeightGrams int64
}

// QuoteInput describes a calculation request.
type QuoteInput struct {
	ProductRef string
	Quantity   int64
	Unit       pricing.Unit
	ZoneID     string
}

// ProceedInput describes a dispatch request for the resolved channel.
type ProceedInput struct {
	ProductRef string
	Quantity   int64
	Unit       pricing.Unit
	ZoneID     string
	CartID     string
}

// ProductView identifies the product a summary was computed for.
type ProductView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// TierView is the resolved tier in API form.
type TierView struct {
	Name        string          `json:"name"`
	ModifierBps int             `json:"modifierBps"`
	Channel     pricing.Channel `json:"channel"`
}

// ZoneView identifies the shipping zone used for the freight estimate.
type ZoneView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Breakdown holds the computed price components. It is omitted entirely when
// the product has no base price.
type Breakdown struct {
	BasePrice      pricing.Money `json:"basePrice"`
	UnitPrice      pricing.Money `json:"unitPrice"`
	TotalPrice     pricing.Money `json:"totalPrice"`
	BasePriceText  string        `json:"basePriceText"`
	UnitPriceText  string        `json:"unitPriceText"`
	TotalPriceText string        `json:"totalPriceText"`
}

// Action is the channel-specific dispatch the storefront performs after
// rendering the summary.
type Action struct {
	Type pricing.Channel `json:"type"`
	URL  string          `json:"url,omitempty"`
}

// FreightView augments the raw estimate with display text.
type FreightView struct {
	Cost     pricing.Money `json:"cost"`
	CostText string        `json:"costText,omitempty"`
	Note     string        `json:"note,omitempty"`
	Pending  bool          `json:"pending"`
}

// Result is the combined price/shipping summary.
type Result struct {
	Product          ProductView  `json:"product"`
	Quantity         int64        `json:"quantity"`
	Unit             pricing.Unit `json:"unit"`
	Tier             TierView     `json:"tier"`
	Pricing          *Breakdown   `json:"pricing,omitempty"`
	Zone             ZoneView     `json:"zone"`
	TotalWeightGrams int64        `json:"totalWeightGrams"`
	Freight          FreightView  `json:"freight"`
	Action           Action       `json:"action"`
}

// ProceedResult reports the dispatch performed for the resolved channel.
type ProceedResult struct {
	Channel pricing.Channel `json:"channel"`
	URL     string          `json:"url,omitempty"`
	CartID  string          `json:"cartId,omitempty"`
}

// Quote computes the price/shipping summary and dispatch action for an order
// quantity. Tier and freight resolution stay pure; the only lookup is the
// product itself.
func (s *Service) Quote(ctx context.Context, in QuoteInput) (Result, error) {
	if s.Products == nil {
		return Result{}, errors.New("calculator: product source not configured")
	}
	if in.Quantity <= 0 {
		return Result{}, &common.AppError{
			Code:       "VALIDATION",
			Message:    "quantity must be a positive integer",
			HTTPStatus: http.StatusUnprocessableEntity,
			Details:    map[string]any{"field": "quantity"},
		}
	}
	product, err := s.Products.PricingInfoByRef(ctx, in.ProductRef)
	if err != nil {
		return Result{}, err
	}
	unit := in.Unit
	if unit == "" {
		unit = product.DefaultUnit
	}
	if unit == "" {
		unit = pricing.UnitPiezas
	}

	tier := pricing.ResolveTier(in.Quantity, s.tiers())
	zone := freight.ZoneByID(s.zoneID(in.ZoneID), s.zones())

	unitWeight := product.UnitWeightGrams
	if unitWeight <= 0 {
		unitWeight = s.unitWeight()
	}
	weight := freight.TotalWeightGrams(in.Quantity, unit, unitWeight)
	estimate := freight.EstimateCost(weight, zone, tier.Channel)

	result := Result{
		Product:          ProductView{ID: product.ID, Title: product.Title},
		Quantity:         in.Quantity,
		Unit:             unit,
		Tier:             TierView{Name: tier.Name, ModifierBps: tier.ModifierBps, Channel: tier.Channel},
		Zone:             ZoneView{ID: zone.ID, Name: zone.Name},
		TotalWeightGrams: weight,
		Freight: FreightView{
			Cost:    estimate.Cost,
			Note:    estimate.Note,
			Pending: estimate.Pending,
		},
		Action: s.action(tier, product.ID, in.Quantity, unit),
	}
	if !estimate.Pending {
		result.Freight.CostText = pricing.FormatMXN(estimate.Cost)
	}
	// A product without a base price renders without the price breakdown.
	if product.BasePrice != nil {
		unitPrice := pricing.ApplyModifier(*product.BasePrice, tier.ModifierBps)
		totalPrice := unitPrice * in.Quantity
		result.Pricing = &Breakdown{
			BasePrice:      *product.BasePrice,
			UnitPrice:      unitPrice,
			TotalPrice:     totalPrice,
			BasePriceText:  pricing.FormatMXN(*product.BasePrice),
			UnitPriceText:  pricing.FormatMXN(unitPrice),
			TotalPriceText: pricing.FormatMXN(totalPrice),
		}
	}
	if obs.CalculatorQuotesTotal != nil {
		obs.CalculatorQuotesTotal.WithLabelValues(string(tier.Channel), tier.Name).Inc()
	}
	return result, nil
}

// Proceed executes the channel dispatch for a computed summary: marketplace
// and quote channels return the target URL, the checkout channel delegates to
// the cart collaborator.
func (s *Service) Proceed(ctx context.Context, in ProceedInput) (ProceedResult, error) {
	result, err := s.Quote(ctx, QuoteInput{
		ProductRef: in.ProductRef,
		Quantity:   in.Quantity,
		Unit:       in.Unit,
		ZoneID:     in.ZoneID,
	})
	if err != nil {
		return ProceedResult{}, err
	}
	switch result.Tier.Channel {
	case pricing.ChannelCheckout:
		if s.Cart == nil {
			return ProceedResult{}, errors.New("calculator: cart service not configured")
		}
		if in.CartID == "" {
			return ProceedResult{}, &common.AppError{
				Code:       "VALIDATION",
				Message:    "cartId is required for the checkout channel",
				HTTPStatus: http.StatusUnprocessableEntity,
				Details:    map[string]any{"field": "cartId"},
			}
		}
		if err := s.Cart.AddItem(ctx, in.CartID, result.Product.ID, in.Quantity, result.Unit); err != nil {
			return ProceedResult{}, err
		}
		return ProceedResult{Channel: pricing.ChannelCheckout, CartID: in.CartID}, nil
	default:
		return ProceedResult{Channel: result.Tier.Channel, URL: result.Action.URL}, nil
	}
}

func (s *Service) action(tier pricing.Tier, productID string, qty int64, unit pricing.Unit) Action {
	switch tier.Channel {
	case pricing.ChannelMarketplace:
		return Action{Type: pricing.ChannelMarketplace, URL: tier.ActionURL}
	case pricing.ChannelQuote:
		return Action{Type: pricing.ChannelQuote, URL: quote.PrefillURL(productID, qty, unit)}
	default:
		return Action{Type: pricing.ChannelCheckout}
	}
}

func (s *Service) tiers() []pricing.Tier {
	if len(s.Tiers) > 0 {
		return s.Tiers
	}
	return pricing.DefaultTiers()
}

func (s *Service) zones() []freight.Zone {
	if len(s.Zones) > 0 {
		return s.Zones
	}
	return freight.DefaultZones()
}

func (s *Service) zoneID(requested string) string {
	if requested != "" {
		return requested
	}
	return s.DefaultZoneID
}

func (s *Service) unitWeight() int64 {
	if s.DefaultUnitWeightGrams > 0 {
		return s.DefaultUnitWeightGrams
	}
	return 100
}
