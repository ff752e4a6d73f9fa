package erp

import (
	"context"
	"time"
)

// Record is a raw ERP document as returned by ERPNext. Field names follow
// the ERP's own schema; the extractor owns all normalization.
type Record map[string]any

// Client port (interface untuk ERPNext). A nil Record with nil error means
// the document does not exist; errors are reserved for transport failures.
type Client interface {
	GetInvoice(ctx context.Context, invoiceID string) (Record, error)
	GetSalesOrder(ctx context.Context, orderID string) (Record, error)
	GetCustomer(ctx context.Context, customerID string) (Record, error)
	GetItem(ctx context.Context, itemCode string) (Record, error)

	// ListInvoicesByCustomer returns invoices of one customer posted inside
	// [from, to], used to collect duplicate-match candidates.
	ListInvoicesByCustomer(ctx context.Context, customerID string, from, to time.Time) ([]Record, error)
}
