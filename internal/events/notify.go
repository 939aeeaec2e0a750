package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogNotifier writes every emitted event to the structured log so the event
// trail is observable without querying the domain_events table.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements the Notifier interface.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	payload := event.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	n.Logger.Info().
		Str("topic", event.Topic).
		Str("aggregate_id", uuid.UUID(event.AggregateID.Bytes).String()).
		RawJSON("payload", payload).
		Msg("domain event")
	return nil
}
