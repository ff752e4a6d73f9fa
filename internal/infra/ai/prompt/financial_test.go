package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
)

func fptr(v float64) *float64 { return &v }

func promptSnapshot() erp.Snapshot {
	return erp.Snapshot{
		Invoice: &erp.Invoice{
			Name:        "INV-002",
			Customer:    "CUST-002",
			Currency:    "USD",
			PostingDate: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			Items: []erp.InvoiceItem{
				{ItemCode: "ITEM-B", Quantity: fptr(10), Rate: fptr(1050), Amount: fptr(10500)},
			},
			Subtotal: fptr(10500),
			Total:    fptr(10500),
		},
		SalesOrder: &erp.SalesOrder{
			Name:     "SO-002",
			Customer: "CUST-002",
			Currency: "USD",
			Items: []erp.SalesOrderItem{
				{ItemCode: "ITEM-B", Quantity: fptr(10), AgreedRate: fptr(900), Amount: fptr(9000)},
			},
			AgreedTotal: fptr(9000),
		},
		Status: erp.ExtractionSuccess,
	}
}

func TestBuildUserPromptIsDeterministic(t *testing.T) {
	snap := promptSnapshot()

	first := BuildUserPrompt(snap, "customer disputes the total")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildUserPrompt(snap, "customer disputes the total"), "run %d", i)
	}
}

func TestBuildUserPromptCarriesNumericAnalysis(t *testing.T) {
	p := BuildUserPrompt(promptSnapshot(), "")

	assert.Contains(t, p, "INV-002")
	assert.Contains(t, p, "SO-002")
	assert.Contains(t, p, "10500.00 - 9000.00 = 1500.00")
	assert.Contains(t, p, "rate MISMATCH (invoice: 1050.00 vs SO: 900.00)")
	assert.Contains(t, p, "(none provided)")
}

func TestBuildUserPromptMissingValuesStayExplicit(t *testing.T) {
	snap := promptSnapshot()
	snap.Invoice.Total = nil
	snap.Invoice.Items[0].Rate = nil

	p := BuildUserPrompt(snap, "")

	// unparsable money renders as n/a, never as zero
	assert.Contains(t, p, "- Total: n/a")
	assert.Contains(t, p, "rate ? (invoice: n/a vs SO: 900.00)")
	assert.NotContains(t, p, "NUMERIC ANALYSIS")
}

func TestBuildUserPromptWithoutSalesOrder(t *testing.T) {
	snap := promptSnapshot()
	snap.SalesOrder = nil

	p := BuildUserPrompt(snap, "")

	assert.Contains(t, p, "(no sales order linked)")
	assert.Contains(t, p, "(no sales order to compare against)")
}

func TestSystemPromptListsAllowedSources(t *testing.T) {
	p := GetSystemPrompt()

	for _, code := range []string{
		"PRICING_VARIANCE", "NO_VARIANCE",
		"DUPLICATE_MATCH", "NO_DUPLICATE_FOUND",
		"DELIVERY_BILLING_MISMATCH", "NO_MISMATCH_FOUND",
		"INSUFFICIENT_DATA",
	} {
		assert.Contains(t, p, code)
	}
}
