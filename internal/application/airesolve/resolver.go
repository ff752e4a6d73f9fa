package airesolve

import (
	"context"
	"fmt"
	"log"

	"github.com/bryanwahyu/incident-replay/internal/domain/analysis"
	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
	"github.com/bryanwahyu/incident-replay/internal/infra/ai/prompt"
)

// Resolver drives the AI analysis path: render prompt, one blocking call,
// strict mapping. It never merges with rule results and never falls back
// to them; a failed call degrades to an AI_FAILED finding, not an error.
type Resolver struct {
	client analysis.AIClient
}

func NewResolver(client analysis.AIClient) *Resolver {
	return &Resolver{client: client}
}

// Resolution carries the finding plus the transcript of the exchange, so
// the orchestrator can archive what the model actually saw and said.
type Resolution struct {
	Finding     analysis.Finding
	Prompt      string
	RawResponse string
}

// Resolve runs the AI path over a snapshot. The returned finding is always
// usable: unavailability, transport failure and malformed responses all
// become the AI_FAILED sentinel with confidence 0.0.
func (r *Resolver) Resolve(ctx context.Context, snap erp.Snapshot, incidentDescription string) Resolution {
	userPrompt := prompt.BuildUserPrompt(snap, incidentDescription)
	res := Resolution{Prompt: userPrompt}

	if r.client == nil || !r.client.IsAvailable() {
		res.Finding = failedFinding("AI service is not available", "No AI client is configured for this deployment")
		return res
	}

	raw, err := r.client.Analyze(ctx, userPrompt)
	if err != nil {
		log.Printf("ai analyze error: %v", err)
		res.Finding = failedFinding("AI analysis call failed", fmt.Sprintf("AI client error: %v", err))
		return res
	}
	res.RawResponse = raw

	f, err := mapResponse(raw)
	if err != nil {
		log.Printf("ai response mapping error: %v", err)
		res.Finding = failedFinding("AI returned an unusable response", fmt.Sprintf("Mapping error: %v", err))
		return res
	}
	res.Finding = f
	return res
}

func failedFinding(summary, details string) analysis.Finding {
	return analysis.Finding{
		DiscrepancySource: analysis.SourceInsufficientData,
		Summary:           summary,
		Details:           details,
		Conclusion:        "Manual review required: the AI path could not produce a valid finding.",
		ConfidenceScore:   0.0,
		Source:            analysis.PathAIFailed,
	}
}
