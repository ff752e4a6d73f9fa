package analysis

import "context"

// AIClient port. Analyze is a single blocking call; no streaming, no
// multi-turn state.
type AIClient interface {
	Analyze(ctx context.Context, prompt string) (string, error)
	IsAvailable() bool
}
