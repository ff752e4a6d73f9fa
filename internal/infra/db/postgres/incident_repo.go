package postgres

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

func NewIncidentRepository(db *sql.DB) *IncidentRepository { return &IncidentRepository{db: db} }

// Save inserts or updates intake fields
func (r *IncidentRepository) Save(ctx context.Context, inc *domain.Incident) error {
	const q = `
INSERT INTO incidents
(id, erp_reference, incident_type, description, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
 incident_type=EXCLUDED.incident_type,
 description=EXCLUDED.description,
 status=EXCLUDED.status;
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

func (r *IncidentRepository) Get(ctx context.Context, id domain.IncidentID) (*domain.Incident, error) {
	const q = `SELECT` + selectColumns + `
FROM incidents WHERE id=$1 LIMIT 1;`
	inc, err := scanIncident(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return inc, err
}

func (r *IncidentRepository) GetByReference(ctx context.Context, erpReference string) (*domain.Incident, error) {
	const q = `SELECT` + selectColumns + `
FROM incidents WHERE erp_reference=$1 LIMIT 1;`
	inc, err := scanIncident(r.db.QueryRowContext(ctx, q, erpReference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return inc, err
}

func (r *IncidentRepository) Latest(ctx context.Context, limit int) ([]*domain.Incident, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT` + selectColumns + `
FROM incidents ORDER BY created_at DESC, id DESC LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

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
FROM incidents ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2;`
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

func (r *IncidentRepository) UpdateAnalysis(ctx context.Context, id domain.IncidentID, res domain.AnalysisUpdate) error {
	const q = `
UPDATE incidents SET
 status=$1, summary=$2, details=$3, conclusion=$4,
 confidence_score=$5, analysis_source=$6, analyzed_at=$7
WHERE id=$8;
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

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
