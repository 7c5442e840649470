package payment_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/metro-commuter/internal/payment"
)

func TestSandbox_Initiate(t *testing.T) {
	gw := payment.NewSandbox("https://pay.example.com/checkout?lang=en")
	ticketID := uuid.New()

	got, err := gw.Initiate(context.Background(), payment.Checkout{
		TicketID:    ticketID,
		UserID:      uuid.New(),
		Amount:      30,
		Description: "Indiranagar to Majestic",
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.TransactionID, "sbx_"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.Payload, &body))
	assert.Equal(t, got.TransactionID, body["transaction_id"])
	assert.Equal(t, ticketID.String(), body["ticket_id"])
	assert.EqualValues(t, 30, body["amount"])
	assert.Contains(t, body["checkout_url"], "lang=en")
	assert.Contains(t, body["checkout_url"], "transaction_id="+got.TransactionID)
}

func TestSandbox_Initiate_UniqueTransactions(t *testing.T) {
	gw := payment.NewSandbox("http://localhost/checkout")

	a, err := gw.Initiate(context.Background(), payment.Checkout{TicketID: uuid.New()})
	require.NoError(t, err)
	b, err := gw.Initiate(context.Background(), payment.Checkout{TicketID: uuid.New()})
	require.NoError(t, err)

	assert.NotEqual(t, a.TransactionID, b.TransactionID)
}

func TestSandbox_Initiate_BadURL(t *testing.T) {
	gw := payment.NewSandbox("://bad")

	_, err := gw.Initiate(context.Background(), payment.Checkout{TicketID: uuid.New()})

	assert.Error(t, err)
}
