package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CleanupService removes analysis jobs and their job-scoped result copies
// past the retention window. The consultant risk snapshot is authoritative
// and is never touched.
type CleanupService struct {
	Pool          *pgxpool.Pool
	RetentionDays int
}

// NewCleanupService creates a cleanup service with a default 90 day window.
func NewCleanupService(pool *pgxpool.Pool, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &CleanupService{Pool: pool, RetentionDays: retentionDays}
}

// CleanupOldData deletes analysis jobs older than the retention window and
// their result rows, in one transaction.
func (s *CleanupService) CleanupOldData(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -s.RetentionDays)

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("op=cleanup.begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	resTag, err := tx.Exec(ctx, `DELETE FROM analysis_results WHERE job_id IN (SELECT id FROM analysis_jobs WHERE created_at < $1)`, cutoff)
	if err != nil {
		return fmt.Errorf("op=cleanup.results: %w", err)
	}
	jobTag, err := tx.Exec(ctx, `DELETE FROM analysis_jobs WHERE created_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("op=cleanup.jobs: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("op=cleanup.commit: %w", err)
	}

	slog.InfoContext(ctx, "cleanup completed",
		slog.Int64("deleted_results", resTag.RowsAffected()),
		slog.Int64("deleted_jobs", jobTag.RowsAffected()),
		slog.Time("cutoff", cutoff))
	return nil
}

// StartPeriodicCleanup runs CleanupOldData every interval until ctx is done.
func (s *CleanupService) StartPeriodicCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.CleanupOldData(ctx); err != nil {
				slog.ErrorContext(ctx, "cleanup failed", slog.Any("error", err))
			}
		}
	}
}
