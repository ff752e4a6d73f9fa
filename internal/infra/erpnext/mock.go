package erpnext

import (
	"context"
	"sort"
	"time"

	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
)

// MockClient returns hardcoded ERP fixtures. Deterministic by design: used
// for local development and as the in-memory fake in tests.
//
// Scenarios:
//   - INV-001: invoice matching its sales order (SO-001)
//   - INV-002: pricing issue, invoice higher than SO-002
//   - INV-003: duplicate of INV-001 (same customer, same total, 2 days apart)
//   - INV-004: over-billed quantities vs SO-001
//   - INV-005: no linked sales order
type MockClient struct {
	Invoices    map[string]erp.Record
	SalesOrders map[string]erp.Record
	Customers   map[string]erp.Record
	Items       map[string]erp.Record

	// Err, when set, is returned by every call; simulates ERP downtime.
	Err error
}

func NewMockClient() *MockClient {
	return &MockClient{
		Invoices: map[string]erp.Record{
			"INV-001": {
				"name": "INV-001", "customer": "CUST-001", "posting_date": "2024-01-15",
				"sales_order": "SO-001", "currency": "USD",
				"net_total": 5000.00, "grand_total": 5000.00,
				"items": []any{
					map[string]any{"item_code": "ITEM-A", "item_name": "Widget A", "qty": 10.0, "rate": 500.00, "amount": 5000.00},
				},
			},
			"INV-002": {
				"name": "INV-002", "customer": "CUST-002", "posting_date": "2024-01-16",
				"sales_order": "SO-002", "currency": "USD",
				"net_total": 10500.00, "grand_total": 10500.00,
				"items": []any{
					map[string]any{"item_code": "ITEM-B", "item_name": "Widget B", "qty": 10.0, "rate": 1050.00, "amount": 10500.00},
				},
			},
			"INV-003": {
				"name": "INV-003", "customer": "CUST-001", "posting_date": "2024-01-17",
				"sales_order": "SO-001", "currency": "USD",
				"net_total": 5000.00, "grand_total": 5000.00,
				"items": []any{
					map[string]any{"item_code": "ITEM-A", "item_name": "Widget A", "qty": 10.0, "rate": 500.00, "amount": 5000.00},
				},
			},
			"INV-004": {
				"name": "INV-004", "customer": "CUST-001", "posting_date": "2024-03-02",
				"sales_order": "SO-001", "currency": "USD",
				"net_total": 6500.00, "grand_total": 6500.00,
				"items": []any{
					map[string]any{"item_code": "ITEM-A", "item_name": "Widget A", "qty": 12.0, "rate": 500.00, "amount": 6000.00},
					map[string]any{"item_code": "ITEM-X", "qty": 1.0, "rate": 500.00, "amount": 500.00},
				},
			},
			"INV-005": {
				"name": "INV-005", "customer": "CUST-002", "posting_date": "2024-02-10",
				"currency": "USD",
				"net_total": 1200.00, "grand_total": 1200.00,
				"items": []any{
					map[string]any{"item_code": "ITEM-B", "item_name": "Widget B", "qty": 1.0, "rate": 1200.00, "amount": 1200.00},
				},
			},
		},
		SalesOrders: map[string]erp.Record{
			"SO-001": {
				"name": "SO-001", "customer": "CUST-001", "currency": "USD", "grand_total": 5000.00,
				"items": []any{
					map[string]any{"item_code": "ITEM-A", "item_name": "Widget A", "qty": 10.0, "rate": 500.00, "amount": 5000.00},
				},
			},
			"SO-002": {
				"name": "SO-002", "customer": "CUST-002", "currency": "USD", "grand_total": 9000.00,
				"items": []any{
					map[string]any{"item_code": "ITEM-B", "item_name": "Widget B", "qty": 10.0, "rate": 900.00, "amount": 9000.00},
				},
			},
		},
		Customers: map[string]erp.Record{
			"CUST-001": {"name": "CUST-001", "customer_name": "Acme Corp", "payment_terms": "Net 30", "credit_limit": 50000.00},
			"CUST-002": {"name": "CUST-002", "customer_name": "Beta Inc", "payment_terms": "Net 14", "credit_limit": 20000.00},
		},
		Items: map[string]erp.Record{
			"ITEM-A": {"name": "ITEM-A", "item_name": "Widget A"},
			"ITEM-B": {"name": "ITEM-B", "item_name": "Widget B"},
			"ITEM-X": {"name": "ITEM-X", "item_name": "Widget X"},
		},
	}
}

func (m *MockClient) GetInvoice(_ context.Context, invoiceID string) (erp.Record, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Invoices[invoiceID], nil
}

func (m *MockClient) GetSalesOrder(_ context.Context, orderID string) (erp.Record, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.SalesOrders[orderID], nil
}

func (m *MockClient) GetCustomer(_ context.Context, customerID string) (erp.Record, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Customers[customerID], nil
}

func (m *MockClient) GetItem(_ context.Context, itemCode string) (erp.Record, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Items[itemCode], nil
}

func (m *MockClient) ListInvoicesByCustomer(_ context.Context, customerID string, from, to time.Time) ([]erp.Record, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	// iterate names in stable order supaya hasilnya deterministik
	names := make([]string, 0, len(m.Invoices))
	for name := range m.Invoices {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []erp.Record
	for _, name := range names {
		rec := m.Invoices[name]
		if rec["customer"] != customerID {
			continue
		}
		dateStr, _ := rec["posting_date"].(string)
		posted, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		if posted.Before(from) || posted.After(to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
