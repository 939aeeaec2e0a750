package quote

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TypeQuoteRequested is the task type dispatched after a quote request is stored.
const TypeQuoteRequested = "quote:requested"

type quoteRequestedPayload struct {
	QuoteID string `json:"quoteId"`
}

// NewQuoteRequestedTask builds the background task notifying sales of a new
// quote request.
func NewQuoteRequestedTask(quoteID string) (*asynq.Task, error) {
	payload, err := json.Marshal(quoteRequestedPayload{QuoteID: quoteID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeQuoteRequested, payload, asynq.MaxRetry(5)), nil
}
