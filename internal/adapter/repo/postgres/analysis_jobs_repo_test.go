package postgres_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raisa-rms/raisa-backend/internal/adapter/repo/postgres"
	"github.com/raisa-rms/raisa-backend/internal/domain"
)

func TestAnalysisJobRepo_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps provided id", func(t *testing.T) {
		repo := postgres.NewAnalysisJobRepo(&poolStub{})
		id, err := repo.Create(ctx, domain.AnalysisJob{ID: "job-1", Status: domain.AnalysisQueued})
		require.NoError(t, err)
		assert.Equal(t, "job-1", id)
	})

	t.Run("generates id when empty", func(t *testing.T) {
		repo := postgres.NewAnalysisJobRepo(&poolStub{})
		id, err := repo.Create(ctx, domain.AnalysisJob{Status: domain.AnalysisQueued})
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("database error", func(t *testing.T) {
		repo := postgres.NewAnalysisJobRepo(&poolStub{execErr: assert.AnError})
		_, err := repo.Create(ctx, domain.AnalysisJob{Status: domain.AnalysisQueued})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "op=analysis_job.create")
	})
}

func TestAnalysisJobRepo_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	repo := postgres.NewAnalysisJobRepo(&poolStub{})
	require.NoError(t, repo.UpdateStatus(ctx, "job-1", domain.AnalysisCompleted, nil))

	errMsg := "provider error"
	require.NoError(t, repo.UpdateStatus(ctx, "job-1", domain.AnalysisFailed, &errMsg))

	repo = postgres.NewAnalysisJobRepo(&poolStub{execErr: assert.AnError})
	err := repo.UpdateStatus(ctx, "job-1", domain.AnalysisCompleted, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=analysis_job.update_status")
}

func TestAnalysisJobRepo_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("not found maps to ErrNotFound", func(t *testing.T) {
		pool := &poolStub{row: rowStub{scan: func(_ ...any) error { return pgx.ErrNoRows }}}
		repo := postgres.NewAnalysisJobRepo(pool)
		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("scan error wrapped", func(t *testing.T) {
		pool := &poolStub{row: rowStub{scan: func(_ ...any) error { return assert.AnError }}}
		repo := postgres.NewAnalysisJobRepo(pool)
		_, err := repo.Get(ctx, "job-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "op=analysis_job.get")
	})
}
