package analysis

import "github.com/bryanwahyu/incident-replay/internal/domain/incidents"

// ReviewThreshold: findings below this confidence go to a human.
const ReviewThreshold = 0.5

// Decide applies the status policy to a finding. This is the single place
// the policy lives; analyzers and the AI mapper never assign statuses.
func Decide(f Finding) incidents.Status {
	if f.DiscrepancySource == SourceInsufficientData {
		return incidents.StatusUnderReview
	}
	if f.ConfidenceScore < ReviewThreshold {
		return incidents.StatusUnderReview
	}
	return incidents.StatusResolved
}
