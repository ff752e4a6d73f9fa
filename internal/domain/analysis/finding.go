package analysis

import (
	"time"

	"github.com/bryanwahyu/incident-replay/internal/domain/incidents"
)

// DiscrepancySource is the symbolic code naming the kind of mismatch (or
// its absence) an analysis detected.
type DiscrepancySource string

const (
	SourcePricingVariance  DiscrepancySource = "PRICING_VARIANCE"
	SourceNoVariance       DiscrepancySource = "NO_VARIANCE"
	SourceDuplicateMatch   DiscrepancySource = "DUPLICATE_MATCH"
	SourceNoDuplicateFound DiscrepancySource = "NO_DUPLICATE_FOUND"
	SourceDeliveryMismatch DiscrepancySource = "DELIVERY_BILLING_MISMATCH"
	SourceNoMismatchFound  DiscrepancySource = "NO_MISMATCH_FOUND"
	SourceInsufficientData DiscrepancySource = "INSUFFICIENT_DATA"
)

// Path enum: which path produced the finding
type Path string

const (
	PathRule            Path = "RULE"
	PathAI              Path = "AI"
	PathAIFailed        Path = "AI_FAILED"
	PathExtractionError Path = "EXTRACTION_ERROR"
)

// Finding is the structured output of exactly one analysis path. Produced
// fresh on every run; a single run never mixes rule- and AI-derived data.
type Finding struct {
	DiscrepancySource   DiscrepancySource  `json:"discrepancy_source"`
	DifferenceBreakdown map[string]float64 `json:"difference_breakdown,omitempty"`
	Summary             string             `json:"summary"`
	Details             string             `json:"details"`
	Conclusion          string             `json:"conclusion"`
	ConfidenceScore     float64            `json:"confidence_score"`
	Source              Path               `json:"analysis_source"`
}

// AnalysisResult: Finding plus the terminal status assigned by Decide.
// This is the only artifact persisted onto the incident.
type AnalysisResult struct {
	Finding    Finding          `json:"finding"`
	Status     incidents.Status `json:"status"`
	AnalyzedAt time.Time        `json:"analyzed_at"`
}

// InsufficientData builds the short-circuit finding used whenever an
// analysis cannot proceed on the data it has.
func InsufficientData(path Path, summary, details string) Finding {
	return Finding{
		DiscrepancySource: SourceInsufficientData,
		Summary:           summary,
		Details:           details,
		Conclusion:        "Manual review required: data is insufficient for automated analysis.",
		ConfidenceScore:   0.0,
		Source:            path,
	}
}
