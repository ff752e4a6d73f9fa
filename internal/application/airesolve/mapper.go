package airesolve

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/incident-replay/internal/domain/analysis"
)

// knownSources: the closed set of discrepancy codes the prompt schema allows.
var knownSources = map[analysis.DiscrepancySource]bool{
	analysis.SourcePricingVariance:  true,
	analysis.SourceNoVariance:       true,
	analysis.SourceDuplicateMatch:   true,
	analysis.SourceNoDuplicateFound: true,
	analysis.SourceDeliveryMismatch: true,
	analysis.SourceNoMismatchFound:  true,
	analysis.SourceInsufficientData: true,
}

type rawResponse struct {
	Summary             string             `json:"summary"`
	Details             string             `json:"details"`
	DiscrepancySource   string             `json:"discrepancy_source"`
	DifferenceBreakdown map[string]float64 `json:"difference_breakdown"`
	Conclusion          string             `json:"conclusion"`
	ConfidenceScore     *float64           `json:"confidence_score"`
}

// mapResponse validates and normalizes the model's raw JSON into a Finding.
// Strict mapping, no defaults: a missing or malformed field is a failure,
// never coerced.
func mapResponse(raw string) (analysis.Finding, error) {
	var r rawResponse
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&r); err != nil {
		return analysis.Finding{}, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if strings.TrimSpace(r.Summary) == "" {
		return analysis.Finding{}, fmt.Errorf("response missing summary")
	}
	if strings.TrimSpace(r.Details) == "" {
		return analysis.Finding{}, fmt.Errorf("response missing details")
	}
	if strings.TrimSpace(r.Conclusion) == "" {
		return analysis.Finding{}, fmt.Errorf("response missing conclusion")
	}
	source := analysis.DiscrepancySource(strings.TrimSpace(r.DiscrepancySource))
	if !knownSources[source] {
		return analysis.Finding{}, fmt.Errorf("unknown discrepancy_source: %q", r.DiscrepancySource)
	}
	if r.ConfidenceScore == nil {
		return analysis.Finding{}, fmt.Errorf("response missing confidence_score")
	}
	conf := *r.ConfidenceScore
	if conf < 0.0 || conf > 1.0 {
		return analysis.Finding{}, fmt.Errorf("confidence_score out of range: %v", conf)
	}

	return analysis.Finding{
		DiscrepancySource:   source,
		DifferenceBreakdown: r.DifferenceBreakdown,
		Summary:             strings.TrimSpace(r.Summary),
		Details:             strings.TrimSpace(r.Details),
		Conclusion:          strings.TrimSpace(r.Conclusion),
		ConfidenceScore:     conf,
		Source:              analysis.PathAI,
	}, nil
}
