package mysql

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	domain "github.com/bryanwahyu/incident-replay/internal/domain/incidents"
)

type IncidentRepository struct {
	db *sql.DB
}

func NewIncidentRepository(db *sql.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// Save insert/update Incident record (intake fields only; analysis result
// fields are written exclusively through UpdateAnalysis)
func (r *IncidentRepository) Save(ctx context.Context, inc *domain.Incident) error {
	const q = `
INSERT INTO incidents
(id, erp_reference, incident_type, description, status, created_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 incident_type=VALUES(incident_type), description=VALUES(description), status=VALUES(status);
`
	status := stringOrDash(string(inc.Status))
	created := inc.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		inc.ID, inc.ERPReference, stringOrDash(string(inc.Type)), inc.Description, status, created,
	)
	return err
}

const selectColumns = `
id, erp_reference, incident_type, description, status,
summary, details, conclusion, confidence_score, analysis_source, analyzed_at,
created_at`

// Get by ID
func (r *IncidentRepository) Get(ctx context.Context, id domain.IncidentID) (*domain.Incident, error) {
	const q = `SELECT` + selectColumns + `
FROM incidents WHERE id=? LIMIT 1;`
	inc, err := scanIncident(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return inc, err
}

// GetByReference by unique ERP reference
func (r *IncidentRepository) GetByReference(ctx context.Context, erpReference string) (*domain.Incident, error) {
	const q = `SELECT` + selectColumns + `
FROM incidents WHERE erp_reference=? LIMIT 1;`
	inc, err := scanIncident(r.db.QueryRowContext(ctx, q, erpReference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return inc, err
}

// Latest incidents
func (r *IncidentRepository) Latest(ctx context.Context, limit int) ([]*domain.Incident, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT` + selectColumns + `
FROM incidents ORDER BY created_at DESC, id DESC LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Paginate returns a page of incidents plus total metadata
func (r *IncidentRepository) Paginate(ctx context.Context, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents;`).Scan(&total); err != nil {
		return domain.PaginatedResult{}, err
	}

	const q = `SELECT` + selectColumns + `
FROM incidents ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?;`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	defer rows.Close()

	data, err := collect(rows)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	return domain.PaginatedResult{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// UpdateAnalysis writes one run's full result in a single statement.
func (r *IncidentRepository) UpdateAnalysis(ctx context.Context, id domain.IncidentID, res domain.AnalysisUpdate) error {
	const q = `
UPDATE incidents SET
 status=?, summary=?, details=?, conclusion=?,
 confidence_score=?, analysis_source=?, analyzed_at=?
WHERE id=?;
`
	result, err := r.db.ExecContext(ctx, q,
		stringOrDash(string(res.Status)), res.Summary, res.Details, res.Conclusion,
		res.ConfidenceScore, stringOrDash(res.AnalysisSource), res.AnalyzedAt, id,
	)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (*domain.Incident, error) {
	var inc domain.Incident
	var summary, details, conclusion, source sql.NullString
	var confidence sql.NullFloat64
	var analyzedAt sql.NullTime
	if err := row.Scan(
		&inc.ID, &inc.ERPReference, &inc.Type, &inc.Description, &inc.Status,
		&summary, &details, &conclusion, &confidence, &source, &analyzedAt,
		&inc.CreatedAt,
	); err != nil {
		return nil, err
	}
	inc.Summary = summary.String
	inc.Details = details.String
	inc.Conclusion = conclusion.String
	inc.AnalysisSource = source.String
	if confidence.Valid {
		inc.ConfidenceScore = &confidence.Float64
	}
	if analyzedAt.Valid {
		t := analyzedAt.Time
		inc.AnalyzedAt = &t
	}
	return &inc, nil
}

func collect(rows *sql.Rows) ([]*domain.Incident, error) {
	var out []*domain.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
