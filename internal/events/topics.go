package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicQuoteRequested = "quote.requested"
	TopicQuoteNotified  = "quote.notified"
	TopicCartItemAdded  = "cart.item_added"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicQuoteRequested,
		TopicQuoteNotified,
		TopicCartItemAdded,
	}
}
