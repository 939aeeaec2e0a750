package quote

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/empaques-mx/backend-empaques/internal/common"
	"github.com/empaques-mx/backend-empaques/internal/pricing"
)

func storedRequest(t *testing.T, store *fakeStore) Request {
	t.Helper()
	svc := newTestService(store, &fakeEnqueuer{})
	request, err := svc.Create(context.Background(), Input{
		ProductRef:   "caja-carton-40",
		Quantity:     400,
		Unit:         pricing.UnitPiezas,
		ZoneID:       "norte",
		ContactName:  "Laura Méndez",
		ContactEmail: "laura@example.mx",
		Company:      "Empaques del Norte SA",
		Message:      "Necesito entrega en Monterrey antes de fin de mes.",
	})
	require.NoError(t, err)
	return request
}

func TestNotifierSendsSalesEmail(t *testing.T) {
	store := newFakeStore()
	request := storedRequest(t, store)

	outbox := &common.InMemoryEmail{}
	notifier := &Notifier{
		Store:      store,
		Mail:       outbox,
		SalesEmail: "ventas@empaques.mx",
		Logger:     zerolog.Nop(),
	}

	task, err := NewQuoteRequestedTask(request.ID)
	require.NoError(t, err)
	require.NoError(t, notifier.HandleQuoteRequested(context.Background(), task))

	require.Len(t, outbox.Outbox, 1)
	email := outbox.Outbox[0]
	require.Equal(t, "ventas@empaques.mx", email.To)
	require.Contains(t, email.Subject, "Caja de cartón 40x30x30")
	require.Contains(t, email.HTML, "400 piezas")
	require.Contains(t, email.HTML, "Empaques del Norte SA")
	require.Contains(t, email.HTML, "Monterrey")

	require.Equal(t, StatusNotified, store.statuses[request.ID])
}

func TestNotifierFailsOnUnknownQuote(t *testing.T) {
	notifier := &Notifier{Store: newFakeStore(), Mail: &common.InMemoryEmail{}, SalesEmail: "ventas@empaques.mx", Logger: zerolog.Nop()}

	task, err := NewQuoteRequestedTask(testQuoteUUID)
	require.NoError(t, err)
	require.Error(t, notifier.HandleQuoteRequested(context.Background(), task))
}

func TestNotifierFailsOnMalformedPayload(t *testing.T) {
	notifier := &Notifier{Store: newFakeStore(), Logger: zerolog.Nop()}

	task := asynq.NewTask(TypeQuoteRequested, []byte("{"))
	require.Error(t, notifier.HandleQuoteRequested(context.Background(), task))
}
