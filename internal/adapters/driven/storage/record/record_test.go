package record

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

func sampleInvoice() *domain.Invoice {
	inv := domain.NewDraftInvoice(time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC), domain.DefaultInvoiceSettings())
	inv.ID = "abc"
	inv.UserID = "u1"
	inv.Settings.UseStatus = false
	inv.Items[0].Quantity = decimal.RequireFromString("1.5")
	inv.CreatedAt = time.Date(2026, 3, 30, 9, 30, 0, 0, time.UTC)
	return inv
}

func TestMarshal_RoundTrip(t *testing.T) {
	inv := sampleInvoice()

	data, err := Marshal(inv)
	require.NoError(t, err)
	got, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, inv.Receiver, got.Receiver)
	assert.False(t, got.Settings.UseStatus)
	assert.True(t, got.Items[0].Quantity.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, got.Totals().GrandTotal.Equal(inv.Totals().GrandTotal))
	assert.True(t, got.CreatedAt.Equal(inv.CreatedAt))
}

func TestMarshal_FieldNames(t *testing.T) {
	data, err := Marshal(sampleInvoice())
	require.NoError(t, err)

	for _, field := range []string{`"invoiceNumber"`, `"dueDate"`, `"taxRate"`, `"useStatus":false`, `"price"`} {
		assert.Contains(t, string(data), field)
	}
}

func TestUnmarshal_MissingUseStatusDefaultsToTrue(t *testing.T) {
	legacy := `{
		"id": "old",
		"userId": "u1",
		"invoiceNumber": "INV-2024-001",
		"status": "PAID",
		"items": [{"id": "1", "description": "Design", "quantity": 2, "price": 150000}],
		"settings": {"currency": "IDR", "taxRate": 11, "locale": "id-ID"}
	}`

	inv, err := Unmarshal([]byte(legacy))
	require.NoError(t, err)

	assert.True(t, inv.Settings.UseStatus)
	assert.Equal(t, domain.StatusPaid, inv.Status)
	assert.True(t, inv.Items[0].LineTotal().Equal(decimal.NewFromInt(300_000)))
	assert.True(t, inv.Settings.TaxRate.Equal(decimal.NewFromInt(11)))
}

func TestUnmarshal_MissingStatusIsUnpaid(t *testing.T) {
	inv, err := Unmarshal([]byte(`{"id": "x", "userId": "u1"}`))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusUnpaid, inv.Status)
	assert.Empty(t, inv.Items)
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := Unmarshal([]byte("{"))

	assert.Error(t, err)
}
