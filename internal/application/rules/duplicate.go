package rules

import (
	"fmt"
	"math"

	"github.com/bryanwahyu/incident-replay/internal/domain/analysis"
	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
)

// DuplicateAmountWindow: candidate totals within this many currency units
// of the target are considered a potential duplicate.
const DuplicateAmountWindow = 1.00

// DuplicateInvoiceAnalyzer looks for another invoice of the same customer,
// posted inside the match window, with a near-identical total. Candidates
// were collected during extraction.
type DuplicateInvoiceAnalyzer struct{}

func (DuplicateInvoiceAnalyzer) Analyze(snap erp.Snapshot) analysis.Finding {
	inv := snap.Invoice
	if inv.Total == nil {
		return analysis.InsufficientData(analysis.PathRule,
			"Invoice total unavailable for duplicate matching",
			fmt.Sprintf("Invoice %s has no parseable total", inv.Name))
	}
	invTotal := *inv.Total

	var (
		best     *erp.Invoice
		bestDiff float64
	)
	for i := range snap.CandidateInvoices {
		cand := &snap.CandidateInvoices[i]
		if cand.Total == nil {
			continue
		}
		diff := math.Abs(*cand.Total - invTotal)
		if diff > DuplicateAmountWindow {
			continue
		}
		if best == nil || diff < bestDiff {
			best, bestDiff = cand, diff
		}
	}

	if best == nil {
		return analysis.Finding{
			DiscrepancySource: analysis.SourceNoDuplicateFound,
			DifferenceBreakdown: map[string]float64{
				"invoice_total":      invTotal,
				"candidates_checked": float64(len(snap.CandidateInvoices)),
			},
			Summary: fmt.Sprintf("No duplicate found for invoice %s", inv.Name),
			Details: fmt.Sprintf("Checked %d invoice(s) of customer %s inside the match window; none within %.2f of total %.2f",
				len(snap.CandidateInvoices), inv.Customer, DuplicateAmountWindow, invTotal),
			Conclusion:      "No duplicate invoice exists for this customer, amount and period.",
			ConfidenceScore: 1.0,
			Source:          analysis.PathRule,
		}
	}

	// Exact amount matches are the most certain duplicates.
	confidence := 0.95 - 0.25*(bestDiff/DuplicateAmountWindow)
	return analysis.Finding{
		DiscrepancySource: analysis.SourceDuplicateMatch,
		DifferenceBreakdown: map[string]float64{
			"invoice_total": invTotal,
			"match_total":   *best.Total,
			"delta":         *best.Total - invTotal,
		},
		Summary: fmt.Sprintf("Invoice %s duplicates %s (totals %.2f vs %.2f)",
			inv.Name, best.Name, invTotal, *best.Total),
		Details: fmt.Sprintf("Invoice: %s posted %s\nMatch: %s posted %s\nCustomer: %s\nAmount difference: %.2f",
			inv.Name, inv.PostingDate.Format("2006-01-02"),
			best.Name, best.PostingDate.Format("2006-01-02"),
			inv.Customer, bestDiff),
		Conclusion: fmt.Sprintf("Invoice %s appears to duplicate %s. Block payment and cancel one of the two documents.",
			inv.Name, best.Name),
		ConfidenceScore: confidence,
		Source:          analysis.PathRule,
	}
}
