package rules

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/incident-replay/internal/domain/analysis"
	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
)

// DeliveryBillingMismatchAnalyzer compares invoiced quantities per item
// code against the sales order's ordered quantities. Over-billing and
// billed items absent from the order are mismatches; all of them are
// aggregated into one finding keyed by item code.
type DeliveryBillingMismatchAnalyzer struct{}

func (DeliveryBillingMismatchAnalyzer) Analyze(snap erp.Snapshot) analysis.Finding {
	inv := snap.Invoice
	so := snap.SalesOrder
	if so == nil {
		return analysis.InsufficientData(analysis.PathRule,
			"No linked sales order to compare billed quantities against",
			fmt.Sprintf("Invoice %s cannot be checked without a sales order", inv.Name))
	}

	ordered := make(map[string]float64, len(so.Items))
	for _, it := range so.Items {
		if it.ItemCode == "" || it.Quantity == nil {
			continue
		}
		ordered[it.ItemCode] += *it.Quantity
	}

	breakdown := make(map[string]float64)
	var lines []string
	var unverifiable []string
	for _, it := range inv.Items {
		if it.ItemCode == "" {
			continue
		}
		if it.Quantity == nil {
			unverifiable = append(unverifiable, it.ItemCode)
			continue
		}
		billed := *it.Quantity
		orderedQty, onOrder := ordered[it.ItemCode]
		switch {
		case !onOrder:
			breakdown[it.ItemCode] = billed
			lines = append(lines, fmt.Sprintf("%s: billed %.2f but absent from sales order", it.ItemCode, billed))
		case billed > orderedQty:
			breakdown[it.ItemCode] = billed - orderedQty
			lines = append(lines, fmt.Sprintf("%s: billed %.2f vs ordered %.2f (over-billed %.2f)",
				it.ItemCode, billed, orderedQty, billed-orderedQty))
		}
	}
	if len(unverifiable) > 0 {
		lines = append(lines, "unverifiable quantities: "+strings.Join(unverifiable, ", "))
	}

	if len(breakdown) == 0 {
		return analysis.Finding{
			DiscrepancySource: analysis.SourceNoMismatchFound,
			Summary:           fmt.Sprintf("Billed quantities on %s match sales order %s", inv.Name, so.Name),
			Details: fmt.Sprintf("Compared %d invoice line(s) against %d order line(s); no over-billing found",
				len(inv.Items), len(so.Items)),
			Conclusion:      "Every billed item and quantity is covered by the sales order.",
			ConfidenceScore: 1.0,
			Source:          analysis.PathRule,
		}
	}

	return analysis.Finding{
		DiscrepancySource:   analysis.SourceDeliveryMismatch,
		DifferenceBreakdown: breakdown,
		Summary: fmt.Sprintf("%d item(s) on invoice %s exceed or are absent from sales order %s",
			len(breakdown), inv.Name, so.Name),
		Details:    strings.Join(lines, "\n"),
		Conclusion: "Billing does not match the order: issue a credit note for the over-billed quantities or correct the sales order.",
		ConfidenceScore: 0.9,
		Source:          analysis.PathRule,
	}
}
