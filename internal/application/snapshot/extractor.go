package snapshot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bryanwahyu/incident-replay/internal/application"
	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
)

// duplicateWindow: candidate invoices for duplicate detection are collected
// from this many days around the target invoice's posting date.
const duplicateWindowDays = 7

// Extractor pulls an incident's referenced invoice, its linked sales order
// and customer from ERP and normalizes them into one immutable snapshot.
// It owns all validation; analyzers never touch raw ERP records.
type Extractor struct {
	client erp.Client
	clock  application.Clock
}

func NewExtractor(client erp.Client, clock application.Clock) *Extractor {
	return &Extractor{client: client, clock: clock}
}

// Extract builds the snapshot for one ERP reference (an invoice ID).
// Failures never escape as errors: transport trouble and absent documents
// are encoded in the snapshot's status and missing fields.
func (e *Extractor) Extract(ctx context.Context, erpReference string) erp.Snapshot {
	now := e.clock.Now()

	raw, err := e.client.GetInvoice(ctx, erpReference)
	if err != nil {
		return errorSnapshot(now, []string{erp.MissingERPUnreachable},
			fmt.Sprintf("invoice fetch failed: %v", err))
	}
	if raw == nil {
		return errorSnapshot(now, []string{erp.MissingInvoiceNotFound},
			fmt.Sprintf("invoice %s not found in ERP", erpReference))
	}

	snap := erp.Snapshot{ExtractedAt: now}
	inv := extractInvoice(raw)
	snap.Invoice = &inv
	snap.Notes = append(snap.Notes, "invoice: "+inv.Name)

	// Sales order identity comes from the invoice's own linkage field.
	// Never re-derive it from a line-item loop: with zero items that loop
	// never runs and the order identity ends up wrong or unset.
	if inv.SalesOrder == "" {
		snap.MissingFields = append(snap.MissingFields, erp.MissingSalesOrderNotLinked)
		snap.Notes = append(snap.Notes, "sales order: NOT_LINKED")
	} else {
		rawSO, err := e.client.GetSalesOrder(ctx, inv.SalesOrder)
		if err != nil {
			return errorSnapshot(now, []string{erp.MissingERPUnreachable},
				fmt.Sprintf("sales order fetch failed: %v", err))
		}
		if rawSO == nil {
			snap.MissingFields = append(snap.MissingFields, erp.MissingSalesOrderNotFound)
			snap.Notes = append(snap.Notes, "sales order: "+inv.SalesOrder+" (missing in ERP)")
		} else {
			so := extractSalesOrder(rawSO)
			snap.SalesOrder = &so
			snap.Notes = append(snap.Notes, "sales order: "+so.Name)
		}
	}

	// Customer is best-effort; absence never degrades the snapshot.
	if inv.Customer != "" {
		if rawCust, err := e.client.GetCustomer(ctx, inv.Customer); err == nil && rawCust != nil {
			cust := extractCustomer(rawCust)
			snap.Customer = &cust
		} else if err != nil {
			snap.Notes = append(snap.Notes, fmt.Sprintf("customer fetch skipped: %v", err))
		}
	}

	e.fillItemNames(ctx, &inv)
	e.collectCandidates(ctx, &snap, inv)

	snap.MissingFields = append(snap.MissingFields, validateCompleteness(inv, snap.SalesOrder)...)

	if len(snap.MissingFields) > 0 {
		snap.Status = erp.ExtractionIncomplete
	} else {
		snap.Status = erp.ExtractionSuccess
	}
	return snap
}

// fillItemNames resolves display names for items the invoice carries only
// by code. Best-effort: lookup failures leave the name empty.
func (e *Extractor) fillItemNames(ctx context.Context, inv *erp.Invoice) {
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.ItemName != "" || it.ItemCode == "" {
			continue
		}
		rec, err := e.client.GetItem(ctx, it.ItemCode)
		if err != nil || rec == nil {
			continue
		}
		it.ItemName = getString(rec, "item_name")
	}
}

// collectCandidates fetches same-customer invoices inside the duplicate
// window so the duplicate analyzer stays pure over the snapshot.
func (e *Extractor) collectCandidates(ctx context.Context, snap *erp.Snapshot, inv erp.Invoice) {
	if inv.Customer == "" || inv.PostingDate.IsZero() {
		return
	}
	from := inv.PostingDate.AddDate(0, 0, -duplicateWindowDays)
	to := inv.PostingDate.AddDate(0, 0, duplicateWindowDays)
	records, err := e.client.ListInvoicesByCustomer(ctx, inv.Customer, from, to)
	if err != nil {
		snap.MissingFields = append(snap.MissingFields, "invoice_candidates")
		snap.Notes = append(snap.Notes, fmt.Sprintf("candidate listing failed: %v", err))
		return
	}
	for _, rec := range records {
		cand := extractInvoice(rec)
		if cand.Name == inv.Name {
			continue
		}
		snap.CandidateInvoices = append(snap.CandidateInvoices, cand)
	}
}

func validateCompleteness(inv erp.Invoice, so *erp.SalesOrder) []string {
	var missing []string
	if len(inv.Items) == 0 {
		missing = append(missing, erp.MissingInvoiceItems)
	}
	if inv.Total == nil {
		missing = append(missing, erp.MissingInvoiceTotal)
	}
	if inv.Customer == "" {
		missing = append(missing, erp.MissingInvoiceCustomer)
	}
	if so != nil {
		if len(so.Items) == 0 {
			missing = append(missing, erp.MissingSalesOrderItems)
		}
		if so.AgreedTotal == nil {
			missing = append(missing, erp.MissingSalesOrderTotal)
		}
	}
	return missing
}

func errorSnapshot(now time.Time, missing []string, note string) erp.Snapshot {
	return erp.Snapshot{
		Status:        erp.ExtractionError,
		MissingFields: missing,
		Notes:         []string{note},
		ExtractedAt:   now,
	}
}

//
// ==== RECORD NORMALIZATION ====
//

func extractInvoice(rec erp.Record) erp.Invoice {
	inv := erp.Invoice{
		Name:        getString(rec, "name"),
		Customer:    getString(rec, "customer"),
		Currency:    getString(rec, "currency"),
		Status:      getString(rec, "status"),
		SalesOrder:  getString(rec, "sales_order"),
		PostingDate: parseDate(getString(rec, "posting_date")),
		Subtotal:    safeFloat(rec["net_total"]),
		Total:       safeFloat(rec["grand_total"]),
	}
	if due := parseDate(getString(rec, "due_date")); !due.IsZero() {
		inv.DueDate = &due
	}
	for _, item := range getRecords(rec, "items") {
		inv.Items = append(inv.Items, erp.InvoiceItem{
			ItemCode: getString(item, "item_code"),
			ItemName: getString(item, "item_name"),
			Quantity: safeFloat(item["qty"]),
			Rate:     safeFloat(item["rate"]),
			Amount:   safeFloat(item["amount"]),
		})
	}
	for _, tax := range getRecords(rec, "taxes") {
		inv.Taxes = append(inv.Taxes, erp.Tax{
			TaxType:   getString(tax, "tax_type"),
			TaxRate:   safeFloat(tax["rate"]),
			TaxAmount: safeFloat(tax["tax_amount"]),
		})
	}
	for _, charge := range getRecords(rec, "charges") {
		inv.Charges = append(inv.Charges, erp.Charge{
			ChargeType: getString(charge, "charge_type"),
			Amount:     safeFloat(charge["amount"]),
		})
	}
	return inv
}

func extractSalesOrder(rec erp.Record) erp.SalesOrder {
	so := erp.SalesOrder{
		Name:        getString(rec, "name"),
		Customer:    getString(rec, "customer"),
		Currency:    getString(rec, "currency"),
		Status:      getString(rec, "status"),
		AgreedTotal: safeFloat(rec["grand_total"]),
	}
	for _, item := range getRecords(rec, "items") {
		so.Items = append(so.Items, erp.SalesOrderItem{
			ItemCode:   getString(item, "item_code"),
			ItemName:   getString(item, "item_name"),
			Quantity:   safeFloat(item["qty"]),
			AgreedRate: safeFloat(item["rate"]),
			Amount:     safeFloat(item["amount"]),
		})
	}
	return so
}

func extractCustomer(rec erp.Record) erp.Customer {
	return erp.Customer{
		Name:         getString(rec, "name"),
		CustomerName: getString(rec, "customer_name"),
		CreditLimit:  safeFloat(rec["credit_limit"]),
		PaymentTerms: getString(rec, "payment_terms"),
	}
}

//
// ==== HELPERS ====
//

// safeFloat maps unparsable or missing values to nil, never to zero.
func safeFloat(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func getString(rec erp.Record, key string) string {
	if s, ok := rec[key].(string); ok {
		return s
	}
	return ""
}

func getRecords(rec erp.Record, key string) []erp.Record {
	raw, ok := rec[key].([]any)
	if !ok {
		// already-typed slices come from the mock client
		if typed, ok := rec[key].([]erp.Record); ok {
			return typed
		}
		return nil
	}
	out := make([]erp.Record, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, erp.Record(m))
		}
	}
	return out
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
