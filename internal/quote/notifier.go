package quote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/empaques-mx/backend-empaques/internal/common"
	"github.com/empaques-mx/backend-empaques/internal/events"
	"github.com/empaques-mx/backend-empaques/internal/obs"
)

// Notifier handles quote:requested tasks by emailing the sales inbox.
type Notifier struct {
	Store      store
	Mail       common.EmailSender
	Events     EventEmitter
	SalesEmail string
	Logger     zerolog.Logger
}

// HandleQuoteRequested processes a quote notification task. Errors are
// returned so asynq retries the delivery.
func (n *Notifier) HandleQuoteRequested(ctx context.Context, task *asynq.Task) error {
	var payload quoteRequestedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("quote notifier: decode payload: %w", err)
	}
	id, err := toUUID(payload.QuoteID)
	if err != nil {
		return fmt.Errorf("quote notifier: invalid quote id %q: %w", payload.QuoteID, err)
	}
	row, err := n.Store.GetRequest(ctx, id)
	if err != nil {
		return fmt.Errorf("quote notifier: load request: %w", err)
	}
	request := requestView(row)

	if n.Mail != nil && n.SalesEmail != "" {
		if err := n.Mail.Send(n.SalesEmail, subjectFor(request), bodyFor(request)); err != nil {
			n.countNotify("error")
			return fmt.Errorf("quote notifier: send email: %w", err)
		}
	}
	if err := n.Store.UpdateRequestStatus(ctx, id, StatusNotified); err != nil {
		return fmt.Errorf("quote notifier: update status: %w", err)
	}
	n.countNotify("sent")
	if n.Events != nil {
		if _, err := n.Events.Emit(ctx, events.TopicQuoteNotified, id, nil); err != nil {
			n.Logger.Error().Err(err).Str("quote_id", request.ID).Msg("emit notified event")
		}
	}
	n.Logger.Info().Str("quote_id", request.ID).Msg("quote request notified")
	return nil
}

func (n *Notifier) countNotify(result string) {
	if obs.QuoteNotifyTotal != nil {
		obs.QuoteNotifyTotal.WithLabelValues(result).Inc()
	}
}

func subjectFor(request Request) string {
	return fmt.Sprintf("Nueva solicitud de cotización: %s", request.Product.Title)
}

func bodyFor(request Request) string {
	body := fmt.Sprintf(
		"Nueva solicitud de cotización de mayoreo.\n\nProducto: %s\nCantidad: %d %s\nPeso total: %.1f kg\nContacto: %s <%s>",
		request.Product.Title, request.Quantity, request.Unit,
		float64(request.TotalWeightGrams)/1000, request.ContactName, request.ContactEmail,
	)
	if request.Company != "" {
		body += fmt.Sprintf("\nEmpresa: %s", request.Company)
	}
	if request.ContactPhone != "" {
		body += fmt.Sprintf("\nTeléfono: %s", request.ContactPhone)
	}
	if request.ZoneID != "" {
		body += fmt.Sprintf("\nZona de envío: %s", request.ZoneID)
	}
	if request.Freight.Pending {
		body += "\nFlete: a cotizar (envío mayor a 500 kg)"
	} else if request.Freight.CostText != "" {
		body += fmt.Sprintf("\nFlete estimado: %s", request.Freight.CostText)
	}
	if request.Message != "" {
		body += "\n\nMensaje del cliente:\n" + request.Message
	}
	return body
}
