package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are an expert ERP financial analyst. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Use ONLY the provided ERP data. Do NOT assume or guess missing values.
- Do NOT invent ERP records or transactions.
- Identify EXACT numeric sources of any difference.
- discrepancy_source must be one of: PRICING_VARIANCE, NO_VARIANCE, DUPLICATE_MATCH, NO_DUPLICATE_FOUND, DELIVERY_BILLING_MISMATCH, NO_MISMATCH_FOUND, INSUFFICIENT_DATA.
- difference_breakdown is an object of numeric values (e.g. invoice_total, reference_total, delta).
- confidence_score is a number between 0.0 and 1.0.

Schema (example with empty values):
{
  "summary": "<string>",
  "details": "<string>",
  "discrepancy_source": "<string>",
  "difference_breakdown": {"invoice_total": 0, "reference_total": 0, "delta": 0},
  "conclusion": "<string>",
  "confidence_score": 0.0
}

Confidence guidance:
- 0.95+: data complete, discrepancy fully explained with all sources identified
- 0.85-0.94: data complete but multiple possible causes
- 0.70-0.84: data mostly complete but some values missing or ambiguous
- 0.50-0.69: partial data, explanation is uncertain
- below 0.50: insufficient data to explain the discrepancy`
}

// BuildUserPrompt renders a snapshot into the analysis request. Pure and
// deterministic: the same snapshot always renders the same prompt.
func BuildUserPrompt(snap erp.Snapshot, incidentDescription string) string {
	var b strings.Builder

	b.WriteString("Analyze the financial discrepancy between the Sales Invoice and its linked Sales Order below, then respond with the JSON per schema.\n")
	b.WriteString("\nINCIDENT DESCRIPTION:\n")
	if incidentDescription == "" {
		b.WriteString("(none provided)\n")
	} else {
		b.WriteString(incidentDescription + "\n")
	}

	inv := snap.Invoice
	so := snap.SalesOrder

	b.WriteString("\nSALES ORDER DATA:\n")
	if so == nil {
		b.WriteString("(no sales order linked)\n")
	} else {
		fmt.Fprintf(&b, "- ID: %s\n- Currency: %s\n- Agreed Total: %s\n- Items Count: %d\n- Items:\n",
			orUnknown(so.Name), orUnknown(so.Currency), amount(so.AgreedTotal), len(so.Items))
		for i, it := range so.Items {
			fmt.Fprintf(&b, "  %d. %s: qty=%s, rate=%s, amount=%s\n",
				i+1, orUnknown(it.ItemCode), amount(it.Quantity), amount(it.AgreedRate), amount(it.Amount))
		}
	}

	b.WriteString("\nINVOICE DATA:\n")
	fmt.Fprintf(&b, "- ID: %s\n- Customer: %s\n- Currency: %s\n- Subtotal: %s\n- Total: %s\n- Items Count: %d\n- Items:\n",
		orUnknown(inv.Name), orUnknown(inv.Customer), orUnknown(inv.Currency),
		amount(inv.Subtotal), amount(inv.Total), len(inv.Items))
	for i, it := range inv.Items {
		fmt.Fprintf(&b, "  %d. %s: qty=%s, rate=%s, amount=%s\n",
			i+1, orUnknown(it.ItemCode), amount(it.Quantity), amount(it.Rate), amount(it.Amount))
	}
	b.WriteString("- Taxes:\n")
	if len(inv.Taxes) == 0 {
		b.WriteString("  (no taxes applied)\n")
	}
	for i, t := range inv.Taxes {
		fmt.Fprintf(&b, "  %d. %s: rate=%s%%, amount=%s\n", i+1, orUnknown(t.TaxType), amount(t.TaxRate), amount(t.TaxAmount))
	}
	b.WriteString("- Charges:\n")
	if len(inv.Charges) == 0 {
		b.WriteString("  (no additional charges)\n")
	}
	for i, c := range inv.Charges {
		fmt.Fprintf(&b, "  %d. %s: %s\n", i+1, orUnknown(c.ChargeType), amount(c.Amount))
	}

	if so != nil && inv.Total != nil && so.AgreedTotal != nil {
		diff := *inv.Total - *so.AgreedTotal
		b.WriteString("\nNUMERIC ANALYSIS:\n")
		fmt.Fprintf(&b, "- Invoice Total vs SO Total: %.2f - %.2f = %.2f\n", *inv.Total, *so.AgreedTotal, diff)
		if *so.AgreedTotal != 0 {
			fmt.Fprintf(&b, "- As Percentage: %.1f%%\n", diff / *so.AgreedTotal*100)
		}
	}

	b.WriteString("\nITEMS COMPARISON (Line-by-Line):\n")
	b.WriteString(itemsComparison(inv, so))

	b.WriteString("\nOUTPUT ONLY THE JSON OBJECT. NO ADDITIONAL TEXT.\n")
	return b.String()
}

func itemsComparison(inv *erp.Invoice, so *erp.SalesOrder) string {
	if so == nil {
		return "  (no sales order to compare against)\n"
	}
	soByCode := make(map[string]erp.SalesOrderItem, len(so.Items))
	for _, it := range so.Items {
		soByCode[it.ItemCode] = it
	}
	invCodes := make(map[string]bool, len(inv.Items))

	var b strings.Builder
	for _, it := range inv.Items {
		invCodes[it.ItemCode] = true
		soIt, ok := soByCode[it.ItemCode]
		if !ok {
			fmt.Fprintf(&b, "  %s: NOT IN SALES ORDER (invoice qty=%s, rate=%s, amount=%s)\n",
				orUnknown(it.ItemCode), amount(it.Quantity), amount(it.Rate), amount(it.Amount))
			continue
		}
		fmt.Fprintf(&b, "  %s: qty %s (invoice: %s vs SO: %s), rate %s (invoice: %s vs SO: %s)\n",
			orUnknown(it.ItemCode),
			matchMark(it.Quantity, soIt.Quantity), amount(it.Quantity), amount(soIt.Quantity),
			matchMark(it.Rate, soIt.AgreedRate), amount(it.Rate), amount(soIt.AgreedRate))
	}
	// order preserved from the sales order lines, not map iteration
	for _, it := range so.Items {
		if invCodes[it.ItemCode] {
			continue
		}
		fmt.Fprintf(&b, "  %s: IN SALES ORDER BUT NOT IN INVOICE (qty=%s, amount=%s)\n",
			orUnknown(it.ItemCode), amount(it.Quantity), amount(it.Amount))
	}
	if b.Len() == 0 {
		return "  (no items to compare)\n"
	}
	return b.String()
}

func matchMark(a, b *float64) string {
	if a == nil || b == nil {
		return "?"
	}
	if *a == *b {
		return "OK"
	}
	return "MISMATCH"
}

func amount(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}
