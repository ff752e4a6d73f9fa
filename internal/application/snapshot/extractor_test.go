package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
	"github.com/bryanwahyu/incident-replay/internal/infra/erpnext"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestExtractor(client erp.Client) *Extractor {
	return NewExtractor(client, fixedClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)})
}

func TestExtractCompleteSnapshot(t *testing.T) {
	e := newTestExtractor(erpnext.NewMockClient())

	snap := e.Extract(context.Background(), "INV-001")

	assert.Equal(t, erp.ExtractionSuccess, snap.Status)
	assert.True(t, snap.Complete())
	assert.Empty(t, snap.MissingFields)

	require.NotNil(t, snap.Invoice)
	assert.Equal(t, "INV-001", snap.Invoice.Name)
	require.NotNil(t, snap.Invoice.Total)
	assert.InDelta(t, 5000.0, *snap.Invoice.Total, 1e-9)

	require.NotNil(t, snap.SalesOrder)
	assert.Equal(t, "SO-001", snap.SalesOrder.Name)
	require.NotNil(t, snap.SalesOrder.AgreedTotal)

	require.NotNil(t, snap.Customer)
	assert.Equal(t, "Acme Corp", snap.Customer.CustomerName)
}

func TestExtractCollectsDuplicateCandidates(t *testing.T) {
	e := newTestExtractor(erpnext.NewMockClient())

	snap := e.Extract(context.Background(), "INV-001")

	// INV-003 is 2 days away, INV-004 is outside the window, INV-001 is
	// the target itself
	require.Len(t, snap.CandidateInvoices, 1)
	assert.Equal(t, "INV-003", snap.CandidateInvoices[0].Name)
}

func TestExtractInvoiceNotFound(t *testing.T) {
	e := newTestExtractor(erpnext.NewMockClient())

	snap := e.Extract(context.Background(), "INV-999")

	assert.Equal(t, erp.ExtractionError, snap.Status)
	assert.Equal(t, []string{erp.MissingInvoiceNotFound}, snap.MissingFields)
	assert.False(t, snap.Complete())
	assert.Nil(t, snap.Invoice)
}

func TestExtractERPUnreachable(t *testing.T) {
	client := erpnext.NewMockClient()
	client.Err = errors.New("connection refused")
	e := newTestExtractor(client)

	snap := e.Extract(context.Background(), "INV-001")

	assert.Equal(t, erp.ExtractionError, snap.Status)
	assert.Equal(t, []string{erp.MissingERPUnreachable}, snap.MissingFields)
}

func TestExtractUnlinkedSalesOrder(t *testing.T) {
	e := newTestExtractor(erpnext.NewMockClient())

	snap := e.Extract(context.Background(), "INV-005")

	assert.Equal(t, erp.ExtractionIncomplete, snap.Status)
	assert.False(t, snap.Complete())
	assert.Contains(t, snap.MissingFields, erp.MissingSalesOrderNotLinked)
	assert.Nil(t, snap.SalesOrder)
	require.NotNil(t, snap.Invoice)
}

func TestExtractLinkedSalesOrderMissingInERP(t *testing.T) {
	client := erpnext.NewMockClient()
	client.Invoices["INV-010"] = erp.Record{
		"name": "INV-010", "customer": "CUST-001", "posting_date": "2024-01-15",
		"sales_order": "SO-999", "grand_total": 100.00,
		"items": []any{map[string]any{"item_code": "ITEM-A", "qty": 1.0, "rate": 100.00, "amount": 100.00}},
	}
	e := newTestExtractor(client)

	snap := e.Extract(context.Background(), "INV-010")

	assert.Equal(t, erp.ExtractionIncomplete, snap.Status)
	assert.Contains(t, snap.MissingFields, erp.MissingSalesOrderNotFound)
}

func TestExtractFillsItemNames(t *testing.T) {
	// INV-004 carries ITEM-X by code only; the item master has its name
	e := newTestExtractor(erpnext.NewMockClient())

	snap := e.Extract(context.Background(), "INV-004")

	require.NotNil(t, snap.Invoice)
	var found bool
	for _, it := range snap.Invoice.Items {
		if it.ItemCode == "ITEM-X" {
			found = true
			assert.Equal(t, "Widget X", it.ItemName)
		}
	}
	assert.True(t, found)
}

func TestExtractFlagsMissingTotals(t *testing.T) {
	client := erpnext.NewMockClient()
	client.Invoices["INV-011"] = erp.Record{
		"name": "INV-011", "customer": "CUST-001", "posting_date": "2024-01-15",
		"sales_order": "SO-001",
		"grand_total": "not-a-number",
		"items":       []any{map[string]any{"item_code": "ITEM-A", "qty": 1.0}},
	}
	e := newTestExtractor(client)

	snap := e.Extract(context.Background(), "INV-011")

	assert.Equal(t, erp.ExtractionIncomplete, snap.Status)
	assert.Contains(t, snap.MissingFields, erp.MissingInvoiceTotal)
	require.NotNil(t, snap.Invoice)
	assert.Nil(t, snap.Invoice.Total)
}

func TestSafeFloat(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want *float64
	}{
		{"nil", nil, nil},
		{"float64", 12.5, fptr(12.5)},
		{"int", 7, fptr(7)},
		{"numeric string", " 99.90 ", fptr(99.9)},
		{"garbage string", "12,50", nil},
		{"bool", true, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := safeFloat(tc.in)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func fptr(v float64) *float64 { return &v }
