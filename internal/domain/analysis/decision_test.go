package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/incident-replay/internal/domain/incidents"
)

func TestDecideResolvesAtThreshold(t *testing.T) {
	f := Finding{
		DiscrepancySource: SourcePricingVariance,
		ConfidenceScore:   0.5,
		Source:            PathRule,
	}
	assert.Equal(t, incidents.StatusResolved, Decide(f))
}

func TestDecideSendsLowConfidenceToReview(t *testing.T) {
	f := Finding{
		DiscrepancySource: SourcePricingVariance,
		ConfidenceScore:   0.499999,
		Source:            PathRule,
	}
	assert.Equal(t, incidents.StatusUnderReview, Decide(f))
}

func TestDecideInsufficientDataAlwaysReviewed(t *testing.T) {
	// INSUFFICIENT_DATA goes to review regardless of confidence
	f := Finding{
		DiscrepancySource: SourceInsufficientData,
		ConfidenceScore:   1.0,
		Source:            PathAI,
	}
	assert.Equal(t, incidents.StatusUnderReview, Decide(f))
}

func TestDecideHighConfidenceNoIssueResolves(t *testing.T) {
	f := Finding{
		DiscrepancySource: SourceNoVariance,
		ConfidenceScore:   1.0,
		Source:            PathRule,
	}
	assert.Equal(t, incidents.StatusResolved, Decide(f))
}
