package rules

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/incident-replay/internal/domain/analysis"
	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
	"github.com/bryanwahyu/incident-replay/internal/domain/incidents"
)

// Analyzer: deterministic rule evaluation over a validated snapshot.
// Analyzers may assume the snapshot is complete; the registry enforces the
// insufficient-data short-circuit once for all of them.
type Analyzer interface {
	Analyze(snap erp.Snapshot) analysis.Finding
}

// Registry maps incident types to analyzers. Adding a type is a
// registration, not an edit to existing analyzers.
type Registry struct {
	analyzers map[incidents.Type]Analyzer
}

// NewRegistry returns a registry with the built-in analyzers registered.
func NewRegistry() *Registry {
	r := &Registry{analyzers: make(map[incidents.Type]Analyzer)}
	r.Register(incidents.TypePricingIssue, PricingIssueAnalyzer{})
	r.Register(incidents.TypeDuplicateInvoice, DuplicateInvoiceAnalyzer{})
	r.Register(incidents.TypeDeliveryBillingMismatch, DeliveryBillingMismatchAnalyzer{})
	return r
}

func (r *Registry) Register(t incidents.Type, a Analyzer) {
	r.analyzers[t] = a
}

// Analyze dispatches by incident type. An incomplete snapshot short-circuits
// to INSUFFICIENT_DATA before any analyzer runs: rules never guess around
// missing critical fields.
func (r *Registry) Analyze(t incidents.Type, snap erp.Snapshot) analysis.Finding {
	if !snap.Complete() {
		return analysis.InsufficientData(analysis.PathRule,
			"ERP snapshot is missing critical fields",
			fmt.Sprintf("Missing: %s", strings.Join(snap.MissingFields, ", ")))
	}
	a, ok := r.analyzers[t]
	if !ok {
		return analysis.InsufficientData(analysis.PathRule,
			fmt.Sprintf("No rule analyzer registered for incident type %s", t),
			"Supported types: PRICING_ISSUE, DUPLICATE_INVOICE, DELIVERY_BILLING_MISMATCH")
	}
	return a.Analyze(snap)
}
