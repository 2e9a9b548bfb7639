package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// AnalysisJobRepo persists report analysis jobs.
type AnalysisJobRepo struct{ Pool PgxPool }

// NewAnalysisJobRepo constructs an AnalysisJobRepo with the given pool.
func NewAnalysisJobRepo(p PgxPool) *AnalysisJobRepo { return &AnalysisJobRepo{Pool: p} }

// Create inserts a new job and returns its id (generates one if empty).
func (r *AnalysisJobRepo) Create(ctx domain.Context, j domain.AnalysisJob) (string, error) {
	tracer := otel.Tracer("repo.analysis_jobs")
	ctx, span := tracer.Start(ctx, "analysis_jobs.Create")
	defer span.End()
	id := j.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO analysis_jobs (id, status, error, gestor_nome, mes, segments, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.Pool.Exec(ctx, q, id, j.Status, j.Error, j.GestorNome, j.Mes, j.Segments, time.Now().UTC(), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=analysis_job.create: %w", err)
	}
	return id, nil
}

// UpdateStatus updates a job's status and optional error message.
func (r *AnalysisJobRepo) UpdateStatus(ctx domain.Context, id string, status domain.AnalysisJobStatus, errMsg *string) error {
	tracer := otel.Tracer("repo.analysis_jobs")
	ctx, span := tracer.Start(ctx, "analysis_jobs.UpdateStatus")
	defer span.End()
	errVal := ""
	if errMsg != nil {
		errVal = *errMsg
	}
	q := `UPDATE analysis_jobs SET status=$2, error=$3, updated_at=$4 WHERE id=$1`
	_, err := r.Pool.Exec(ctx, q, id, status, errVal, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=analysis_job.update_status: %w", err)
	}
	return nil
}

// Get loads a job by id.
func (r *AnalysisJobRepo) Get(ctx domain.Context, id string) (domain.AnalysisJob, error) {
	tracer := otel.Tracer("repo.analysis_jobs")
	ctx, span := tracer.Start(ctx, "analysis_jobs.Get")
	defer span.End()
	q := `SELECT id, status, COALESCE(error,''), gestor_nome, mes, segments, created_at, updated_at FROM analysis_jobs WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var j domain.AnalysisJob
	if err := row.Scan(&j.ID, &j.Status, &j.Error, &j.GestorNome, &j.Mes, &j.Segments, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AnalysisJob{}, fmt.Errorf("op=analysis_job.get: %w", domain.ErrNotFound)
		}
		return domain.AnalysisJob{}, fmt.Errorf("op=analysis_job.get: %w", err)
	}
	return j, nil
}
