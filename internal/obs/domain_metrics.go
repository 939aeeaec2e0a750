package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CalculatorQuotesTotal counts calculator summaries by resolved channel and tier.
	CalculatorQuotesTotal *prometheus.CounterVec
	// QuoteRequestsTotal counts quote request submissions by outcome.
	QuoteRequestsTotal *prometheus.CounterVec
	// QuoteNotifyTotal counts sales-inbox notification outcomes for quote requests.
	QuoteNotifyTotal *prometheus.CounterVec
	// CartItemsAddedTotal counts items added to carts.
	CartItemsAddedTotal prometheus.Counter
	// CatalogCacheHits counts catalog cache lookups by result.
	CatalogCacheHits *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CalculatorQuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculator_quotes_total",
			Help:      "Count of calculator summaries by resolved channel and tier.",
		}, []string{"channel", "tier"})
		QuoteRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_requests_total",
			Help:      "Count of quote request submissions by outcome.",
		}, []string{"result"})
		QuoteNotifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_notify_total",
			Help:      "Count of quote request notification outcomes.",
		}, []string{"result"})
		CartItemsAddedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_items_added_total",
			Help:      "Total number of items added to carts.",
		})
		CatalogCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_lookups_total",
			Help:      "Catalog cache lookups by result.",
		}, []string{"result"})

		mustRegisterCollector(reg, CalculatorQuotesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CalculatorQuotesTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteRequestsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteRequestsTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteNotifyTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteNotifyTotal = v
			}
		})
		mustRegisterCollector(reg, CartItemsAddedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CartItemsAddedTotal = v
			}
		})
		mustRegisterCollector(reg, CatalogCacheHits, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CatalogCacheHits = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
