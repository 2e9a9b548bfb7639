package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// AnalysisResultRepo stores the per-consultant assessments produced by one
// job so the API can return them. The rows are a job-scoped copy; the
// authoritative snapshot lives on the consultant.
type AnalysisResultRepo struct{ Pool PgxPool }

// NewAnalysisResultRepo constructs an AnalysisResultRepo with the given pool.
func NewAnalysisResultRepo(p PgxPool) *AnalysisResultRepo { return &AnalysisResultRepo{Pool: p} }

// Upsert inserts or replaces the assessments for a job. The list is stored
// as a JSONB document keyed by job_id.
func (r *AnalysisResultRepo) Upsert(ctx domain.Context, jobID string, items []domain.RiskAssessment) error {
	tracer := otel.Tracer("repo.analysis_results")
	ctx, span := tracer.Start(ctx, "analysis_results.Upsert")
	defer span.End()
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("op=analysis_result.upsert: %w", err)
	}
	q := `INSERT INTO analysis_results (job_id, assessments, created_at)
	VALUES ($1,$2,$3)
	ON CONFLICT (job_id)
	DO UPDATE SET assessments=EXCLUDED.assessments`
	if _, err := r.Pool.Exec(ctx, q, jobID, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("op=analysis_result.upsert: %w", err)
	}
	return nil
}

// GetByJobID loads the assessments of a job.
func (r *AnalysisResultRepo) GetByJobID(ctx domain.Context, jobID string) ([]domain.RiskAssessment, error) {
	tracer := otel.Tracer("repo.analysis_results")
	ctx, span := tracer.Start(ctx, "analysis_results.GetByJobID")
	defer span.End()
	q := `SELECT assessments FROM analysis_results WHERE job_id=$1`
	var payload []byte
	if err := r.Pool.QueryRow(ctx, q, jobID).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("op=analysis_result.get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("op=analysis_result.get: %w", err)
	}
	var items []domain.RiskAssessment
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("op=analysis_result.get: %w", err)
	}
	return items, nil
}
