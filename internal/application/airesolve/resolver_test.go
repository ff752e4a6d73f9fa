package airesolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/incident-replay/internal/domain/analysis"
	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
)

type stubAIClient struct {
	available bool
	response  string
	err       error
	calls     int
}

func (s *stubAIClient) Analyze(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubAIClient) IsAvailable() bool { return s.available }

func testSnapshot() erp.Snapshot {
	total := 5000.0
	return erp.Snapshot{
		Invoice: &erp.Invoice{
			Name: "INV-001", Customer: "CUST-001",
			PostingDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Total:       &total,
		},
		Status: erp.ExtractionSuccess,
	}
}

func TestResolveHappyPath(t *testing.T) {
	client := &stubAIClient{available: true, response: validResponse}
	r := NewResolver(client)

	res := r.Resolve(context.Background(), testSnapshot(), "customer disputes the total")

	assert.Equal(t, analysis.PathAI, res.Finding.Source)
	assert.Equal(t, analysis.SourcePricingVariance, res.Finding.DiscrepancySource)
	assert.Equal(t, validResponse, res.RawResponse)
	assert.NotEmpty(t, res.Prompt)
	assert.Equal(t, 1, client.calls)
}

func TestResolveClientUnavailable(t *testing.T) {
	r := NewResolver(&stubAIClient{available: false})

	res := r.Resolve(context.Background(), testSnapshot(), "")

	assert.Equal(t, analysis.PathAIFailed, res.Finding.Source)
	assert.Equal(t, analysis.SourceInsufficientData, res.Finding.DiscrepancySource)
	assert.Equal(t, 0.0, res.Finding.ConfidenceScore)
}

func TestResolveNilClient(t *testing.T) {
	r := NewResolver(nil)

	res := r.Resolve(context.Background(), testSnapshot(), "")

	assert.Equal(t, analysis.PathAIFailed, res.Finding.Source)
}

func TestResolveCallFailure(t *testing.T) {
	client := &stubAIClient{available: true, err: errors.New("rate limited")}
	r := NewResolver(client)

	res := r.Resolve(context.Background(), testSnapshot(), "")

	assert.Equal(t, analysis.PathAIFailed, res.Finding.Source)
	assert.Contains(t, res.Finding.Details, "rate limited")
	assert.Equal(t, 0.0, res.Finding.ConfidenceScore)
}

func TestResolveUnusableResponse(t *testing.T) {
	client := &stubAIClient{available: true, response: `{"summary": "s"}`}
	r := NewResolver(client)

	res := r.Resolve(context.Background(), testSnapshot(), "")

	assert.Equal(t, analysis.PathAIFailed, res.Finding.Source)
	// the raw exchange is preserved for the transcript even when mapping fails
	assert.Equal(t, `{"summary": "s"}`, res.RawResponse)
}
