package rules

import (
	"fmt"
	"math"

	"github.com/bryanwahyu/incident-replay/internal/domain/analysis"
	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
)

// PricingTolerance: deltas at or below this many currency units are
// rounding noise, not a variance.
const PricingTolerance = 0.01

// PricingIssueAnalyzer compares the invoice total against the linked sales
// order's agreed total.
type PricingIssueAnalyzer struct{}

func (PricingIssueAnalyzer) Analyze(snap erp.Snapshot) analysis.Finding {
	inv := snap.Invoice
	so := snap.SalesOrder
	if so == nil || so.AgreedTotal == nil || inv.Total == nil {
		return analysis.InsufficientData(analysis.PathRule,
			"No linked sales order total to compare against",
			fmt.Sprintf("Invoice %s cannot be priced without a sales order", inv.Name))
	}

	invTotal := *inv.Total
	soTotal := *so.AgreedTotal
	delta := invTotal - soTotal
	breakdown := map[string]float64{
		"invoice_total": invTotal,
		"so_total":      soTotal,
		"delta":         delta,
	}

	if math.Abs(delta) <= PricingTolerance {
		return analysis.Finding{
			DiscrepancySource:   analysis.SourceNoVariance,
			DifferenceBreakdown: breakdown,
			Summary:             fmt.Sprintf("Invoice %s matches sales order %s within tolerance", inv.Name, so.Name),
			Details: fmt.Sprintf("Invoice total: %.2f\nAgreed total: %.2f\nDelta: %.2f (tolerance %.2f)",
				invTotal, soTotal, delta, PricingTolerance),
			Conclusion:      "No pricing variance detected; the invoiced amount honours the agreed order total.",
			ConfidenceScore: 1.0,
			Source:          analysis.PathRule,
		}
	}

	// Larger relative deltas are more certainly a real issue.
	confidence := 0.95
	if soTotal != 0 {
		rel := math.Abs(delta) / math.Abs(soTotal)
		confidence = math.Min(0.95, 0.5+2*rel)
	}

	direction := "above"
	if delta < 0 {
		direction = "below"
	}
	return analysis.Finding{
		DiscrepancySource:   analysis.SourcePricingVariance,
		DifferenceBreakdown: breakdown,
		Summary: fmt.Sprintf("Invoice total %.2f is %.2f %s the agreed order total %.2f",
			invTotal, math.Abs(delta), direction, soTotal),
		Details: fmt.Sprintf("Invoice: %s\nSales order: %s\nInvoice total: %.2f\nAgreed total: %.2f\nDelta: %+.2f",
			inv.Name, so.Name, invTotal, soTotal, delta),
		Conclusion: fmt.Sprintf("Pricing variance of %+.2f against sales order %s. Verify item rates, taxes and charges on the invoice.",
			delta, so.Name),
		ConfidenceScore: confidence,
		Source:          analysis.PathRule,
	}
}
