package airesolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/incident-replay/internal/domain/analysis"
)

const validResponse = `{
	"summary": "Invoice total exceeds the agreed order total by 100.00",
	"details": "Invoice INV-002 bills 10500.00 against sales order SO-002 agreed at 9000.00",
	"discrepancy_source": "PRICING_VARIANCE",
	"difference_breakdown": {"invoice_total": 10500, "so_total": 9000, "delta": 1500},
	"conclusion": "The invoice overcharges the customer; verify item rates before payment.",
	"confidence_score": 0.87
}`

func TestMapResponseValid(t *testing.T) {
	f, err := mapResponse(validResponse)
	require.NoError(t, err)

	assert.Equal(t, analysis.SourcePricingVariance, f.DiscrepancySource)
	assert.Equal(t, analysis.PathAI, f.Source)
	assert.Equal(t, 0.87, f.ConfidenceScore)
	assert.InDelta(t, 1500.0, f.DifferenceBreakdown["delta"], 1e-9)
	assert.NotEmpty(t, f.Summary)
	assert.NotEmpty(t, f.Conclusion)
}

func TestMapResponseMalformedJSON(t *testing.T) {
	_, err := mapResponse(`the invoice looks fine to me`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestMapResponseMissingSummary(t *testing.T) {
	_, err := mapResponse(`{
		"summary": "  ",
		"details": "d",
		"discrepancy_source": "NO_VARIANCE",
		"conclusion": "c",
		"confidence_score": 0.9
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing summary")
}

func TestMapResponseUnknownSource(t *testing.T) {
	_, err := mapResponse(`{
		"summary": "s",
		"details": "d",
		"discrepancy_source": "TOTALLY_NEW_CODE",
		"conclusion": "c",
		"confidence_score": 0.9
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown discrepancy_source")
}

func TestMapResponseMissingConfidence(t *testing.T) {
	// absent confidence is a failure, never defaulted to zero
	_, err := mapResponse(`{
		"summary": "s",
		"details": "d",
		"discrepancy_source": "NO_VARIANCE",
		"conclusion": "c"
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing confidence_score")
}

func TestMapResponseConfidenceOutOfRange(t *testing.T) {
	for _, conf := range []string{"-0.1", "1.5"} {
		_, err := mapResponse(`{
			"summary": "s",
			"details": "d",
			"discrepancy_source": "NO_VARIANCE",
			"conclusion": "c",
			"confidence_score": ` + conf + `
		}`)
		require.Error(t, err, "confidence %s", conf)
		assert.Contains(t, err.Error(), "out of range")
	}
}
