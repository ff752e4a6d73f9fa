package incidents

import (
	"context"
	"time"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, inc *Incident) error
	Get(ctx context.Context, id IncidentID) (*Incident, error)
	GetByReference(ctx context.Context, erpReference string) (*Incident, error)
	Latest(ctx context.Context, limit int) ([]*Incident, error)
	Paginate(ctx context.Context, page, pageSize int) (PaginatedResult, error)

	// UpdateAnalysis writes all result fields plus status in one statement.
	UpdateAnalysis(ctx context.Context, id IncidentID, res AnalysisUpdate) error
}

// AnalysisUpdate is the atomic write-back produced by one analysis run.
type AnalysisUpdate struct {
	Status          Status
	Summary         string
	Details         string
	Conclusion      string
	ConfidenceScore float64
	AnalysisSource  string
	AnalyzedAt      time.Time
}
