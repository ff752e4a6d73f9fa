package erp

import "time"

// ExtractionStatus enum
type ExtractionStatus string

const (
	ExtractionSuccess    ExtractionStatus = "SUCCESS"
	ExtractionIncomplete ExtractionStatus = "INCOMPLETE"
	ExtractionError      ExtractionStatus = "ERROR"
)

// Symbolic gaps recorded in Snapshot.MissingFields. An INCOMPLETE snapshot
// lists every missing critical field explicitly; nothing is defaulted.
const (
	MissingInvoiceNotFound     = "invoice_not_found"
	MissingSalesOrderNotLinked = "sales_order_not_linked"
	MissingSalesOrderNotFound  = "sales_order_not_found"
	MissingInvoiceItems        = "invoice.items"
	MissingInvoiceTotal        = "invoice.total"
	MissingInvoiceCustomer     = "invoice.customer"
	MissingSalesOrderItems     = "sales_order.items"
	MissingSalesOrderTotal     = "sales_order.agreed_total"
	MissingERPUnreachable      = "erp_unreachable"
)

// InvoiceItem line pada invoice. Money/qty pakai *float64: nil artinya
// nilai hilang atau tidak bisa diparse, bukan nol.
type InvoiceItem struct {
	ItemCode string   `json:"item_code"`
	ItemName string   `json:"item_name,omitempty"`
	Quantity *float64 `json:"quantity"`
	Rate     *float64 `json:"rate"`
	Amount   *float64 `json:"amount"`
}

type Tax struct {
	TaxType   string   `json:"tax_type"`
	TaxRate   *float64 `json:"tax_rate"`
	TaxAmount *float64 `json:"tax_amount"`
}

type Charge struct {
	ChargeType string   `json:"charge_type"`
	Amount     *float64 `json:"amount"`
}

type Invoice struct {
	Name        string        `json:"name"`
	Customer    string        `json:"customer"`
	PostingDate time.Time     `json:"posting_date"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	Currency    string        `json:"currency,omitempty"`
	Items       []InvoiceItem `json:"items"`
	Taxes       []Tax         `json:"taxes,omitempty"`
	Charges     []Charge      `json:"extra_charges,omitempty"`
	Subtotal    *float64      `json:"subtotal"`
	Total       *float64      `json:"total"`
	Status      string        `json:"status,omitempty"`
	SalesOrder  string        `json:"sales_order,omitempty"` // linkage field on the invoice itself
}

type SalesOrderItem struct {
	ItemCode   string   `json:"item_code"`
	ItemName   string   `json:"item_name,omitempty"`
	Quantity   *float64 `json:"quantity"`
	AgreedRate *float64 `json:"agreed_rate"`
	Amount     *float64 `json:"amount"`
}

type SalesOrder struct {
	Name        string           `json:"name"`
	Customer    string           `json:"customer"`
	Currency    string           `json:"currency,omitempty"`
	Items       []SalesOrderItem `json:"items"`
	AgreedTotal *float64         `json:"agreed_total"`
	Status      string           `json:"status,omitempty"`
}

type Customer struct {
	Name         string   `json:"name"`
	CustomerName string   `json:"customer_name,omitempty"`
	CreditLimit  *float64 `json:"credit_limit,omitempty"`
	PaymentTerms string   `json:"payment_terms,omitempty"`
}

// Snapshot is the read-only, point-in-time aggregate of ERP records built
// once per analysis run and passed by value into every downstream stage.
//
// Invariant: ExtractionStatus == SUCCESS implies len(MissingFields) == 0.
type Snapshot struct {
	Invoice    *Invoice    `json:"invoice"`
	SalesOrder *SalesOrder `json:"sales_order"`
	Customer   *Customer   `json:"customer"`

	// CandidateInvoices: invoices of the same customer posted inside the
	// duplicate match window, target excluded. Fetched during extraction
	// supaya analyzer tetap pure terhadap snapshot.
	CandidateInvoices []Invoice `json:"candidate_invoices,omitempty"`

	MissingFields []string         `json:"missing_fields"`
	Notes         []string         `json:"extraction_notes,omitempty"`
	Status        ExtractionStatus `json:"extraction_status"`
	ExtractedAt   time.Time        `json:"extracted_at"`
}

// Complete reports whether every critical field was present.
func (s Snapshot) Complete() bool {
	return s.Status == ExtractionSuccess && len(s.MissingFields) == 0
}
