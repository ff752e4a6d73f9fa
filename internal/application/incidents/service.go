package incidents

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bryanwahyu/incident-replay/internal/application"
	"github.com/bryanwahyu/incident-replay/internal/application/airesolve"
	"github.com/bryanwahyu/incident-replay/internal/application/rules"
	"github.com/bryanwahyu/incident-replay/internal/application/snapshot"
	"github.com/bryanwahyu/incident-replay/internal/domain/analysis"
	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
	domain "github.com/bryanwahyu/incident-replay/internal/domain/incidents"
)

// ErrNotFound: the referenced incident does not exist. The only analysis
// failure mode surfaced to callers as an error.
var ErrNotFound = errors.New("incident not found")

// ErrValidation: malformed incident input, rejected before extraction.
var ErrValidation = errors.New("invalid incident input")

// TranscriptStore port (interface untuk arsip transkrip analisis)
type TranscriptStore interface {
	UploadJSON(ctx context.Context, key string, payload any) (string, error)
}

// Service implements the incident use-cases, analysis orchestration
// included. Safe for concurrent use; runs against the same incident are
// serialized by a per-incident lock, reruns fully overwrite the previous
// result.
type Service struct {
	Repo        domain.Repository
	Extractor   *snapshot.Extractor
	Rules       *rules.Registry
	AI          *airesolve.Resolver
	AIEnabled   bool
	Transcripts TranscriptStore // optional, best-effort
	Clock       application.Clock

	mu    sync.Mutex
	locks map[domain.IncidentID]*sync.Mutex
}

func NewService(repo domain.Repository, extractor *snapshot.Extractor, registry *rules.Registry,
	resolver *airesolve.Resolver, aiEnabled bool, transcripts TranscriptStore, clock application.Clock) *Service {
	return &Service{
		Repo:        repo,
		Extractor:   extractor,
		Rules:       registry,
		AI:          resolver,
		AIEnabled:   aiEnabled,
		Transcripts: transcripts,
		Clock:       clock,
		locks:       make(map[domain.IncidentID]*sync.Mutex),
	}
}

//
// ==== USE CASES ====
//

// Command untuk intake insiden baru
type CreateIncidentCommand struct {
	ERPReference string
	Type         string
	Description  string
}

// Create registers a new incident with status OPEN.
func (s *Service) Create(ctx context.Context, cmd CreateIncidentCommand) (*domain.Incident, error) {
	if strings.TrimSpace(cmd.ERPReference) == "" {
		return nil, fmt.Errorf("%w: erp_reference is required", ErrValidation)
	}
	t := domain.Type(cmd.Type)
	if !domain.KnownTypes[t] {
		return nil, fmt.Errorf("%w: unknown incident_type %q", ErrValidation, cmd.Type)
	}

	inc := &domain.Incident{
		ID:           domain.IncidentID(uuid.New().String()),
		ERPReference: strings.TrimSpace(cmd.ERPReference),
		Type:         t,
		Description:  cmd.Description,
		Status:       domain.StatusOpen,
		CreatedAt:    s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, inc); err != nil {
		return nil, err
	}
	return inc, nil
}

// Get ambil 1 incident by id
func (s *Service) Get(ctx context.Context, id domain.IncidentID) (*domain.Incident, error) {
	inc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inc == nil {
		return nil, ErrNotFound
	}
	return inc, nil
}

// GetByReference ambil 1 incident by ERP reference
func (s *Service) GetByReference(ctx context.Context, erpReference string) (*domain.Incident, error) {
	inc, err := s.Repo.GetByReference(ctx, erpReference)
	if err != nil {
		return nil, err
	}
	if inc == nil {
		return nil, ErrNotFound
	}
	return inc, nil
}

// List ambil incidents per halaman
func (s *Service) List(ctx context.Context, page, pageSize int) (domain.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, page, pageSize)
}

// Latest ambil N incident terakhir
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Incident, error) {
	return s.Repo.Latest(ctx, limit)
}

//
// ==== ANALYSIS ORCHESTRATION ====
//

// Analyze runs one analysis over an incident:
//
//	START -> EXTRACT -> {RULE_PATH | AI_PATH} -> DECIDE -> PERSIST -> DONE
//
// The path is chosen once per run from configuration and the two paths are
// never combined within a run. Every failure mode except incident-not-found
// resolves into a valid AnalysisResult; the outer boundary converts
// unexpected faults into status ANALYSIS_ERROR instead of letting them
// escape.
func (s *Service) Analyze(ctx context.Context, id domain.IncidentID) (analysis.AnalysisResult, error) {
	inc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return analysis.AnalysisResult{}, err
	}
	if inc == nil {
		return analysis.AnalysisResult{}, ErrNotFound
	}
	if strings.TrimSpace(inc.ERPReference) == "" {
		return analysis.AnalysisResult{}, fmt.Errorf("%w: incident has empty erp_reference", ErrValidation)
	}

	// Concurrent runs against one incident are serialized; each run
	// persists a result computed from its own snapshot.
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	return s.run(ctx, inc), nil
}

func (s *Service) run(ctx context.Context, inc *domain.Incident) (res analysis.AnalysisResult) {
	useAI := s.AIEnabled && s.AI != nil

	defer func() {
		if r := recover(); r != nil {
			log.Printf("analysis panic for incident %s: %v", inc.ID, r)
			now := s.Clock.Now()
			path := analysis.PathRule
			if useAI {
				path = analysis.PathAI
			}
			f := analysis.InsufficientData(path,
				"Analysis aborted by an unexpected error",
				fmt.Sprintf("internal fault: %v", r))
			res = analysis.AnalysisResult{Finding: f, Status: domain.StatusAnalysisError, AnalyzedAt: now}
			s.persist(ctx, inc.ID, res)
		}
	}()

	snap := s.Extractor.Extract(ctx, inc.ERPReference)

	var finding analysis.Finding
	var transcript *airesolve.Resolution
	switch {
	case snap.Status == erp.ExtractionError:
		finding = analysis.InsufficientData(analysis.PathExtractionError,
			"ERP snapshot extraction failed",
			fmt.Sprintf("Missing: %s. %s", strings.Join(snap.MissingFields, ", "), strings.Join(snap.Notes, "; ")))
	case useAI:
		if !snap.Complete() {
			// AI reasons only over validated snapshots
			finding = analysis.InsufficientData(analysis.PathExtractionError,
				"ERP snapshot incomplete; AI analysis skipped",
				fmt.Sprintf("Missing: %s", strings.Join(snap.MissingFields, ", ")))
		} else {
			r := s.AI.Resolve(ctx, snap, inc.Description)
			transcript = &r
			finding = r.Finding
		}
	default:
		finding = s.Rules.Analyze(inc.Type, snap)
	}

	res = analysis.AnalysisResult{
		Finding:    finding,
		Status:     analysis.Decide(finding),
		AnalyzedAt: s.Clock.Now(),
	}

	if !s.persist(ctx, inc.ID, res) {
		res.Status = domain.StatusAnalysisError
	}
	s.archive(ctx, inc.ID, res, transcript)
	return res
}

// persist writes the run's result as one atomic update. Reports success.
func (s *Service) persist(ctx context.Context, id domain.IncidentID, res analysis.AnalysisResult) bool {
	err := s.Repo.UpdateAnalysis(ctx, id, domain.AnalysisUpdate{
		Status:          res.Status,
		Summary:         res.Finding.Summary,
		Details:         res.Finding.Details,
		Conclusion:      res.Finding.Conclusion,
		ConfidenceScore: res.Finding.ConfidenceScore,
		AnalysisSource:  string(res.Finding.Source),
		AnalyzedAt:      res.AnalyzedAt,
	})
	if err != nil {
		log.Printf("persist analysis result for incident %s: %v", id, err)
		return false
	}
	return true
}

// archive stores the run transcript for audit. Best-effort: a storage
// failure never fails the run.
func (s *Service) archive(ctx context.Context, id domain.IncidentID, res analysis.AnalysisResult, transcript *airesolve.Resolution) {
	if s.Transcripts == nil {
		return
	}
	payload := map[string]any{
		"incident_id": string(id),
		"finding":     res.Finding,
		"status":      res.Status,
		"analyzed_at": res.AnalyzedAt,
	}
	if transcript != nil {
		payload["prompt"] = transcript.Prompt
		payload["raw_response"] = transcript.RawResponse
	}
	key := fmt.Sprintf("incidents/%s/analysis-%d.json", id, res.AnalyzedAt.UnixMilli())
	if _, err := s.Transcripts.UploadJSON(ctx, key, payload); err != nil {
		log.Printf("archive transcript for incident %s: %v", id, err)
	}
}

func (s *Service) lockFor(id domain.IncidentID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}
