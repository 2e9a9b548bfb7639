package postgres_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raisa-rms/raisa-backend/internal/adapter/repo/postgres"
	"github.com/raisa-rms/raisa-backend/internal/domain"
)

func TestAnalysisResultRepo_Upsert(t *testing.T) {
	ctx := context.Background()
	items := []domain.RiskAssessment{{ConsultantNome: "Maria Silva", Score: 1}}

	repo := postgres.NewAnalysisResultRepo(&poolStub{})
	require.NoError(t, repo.Upsert(ctx, "job-1", items))

	repo = postgres.NewAnalysisResultRepo(&poolStub{execErr: assert.AnError})
	err := repo.Upsert(ctx, "job-1", items)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=analysis_result.upsert")
}

func TestAnalysisResultRepo_GetByJobID(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes stored assessments", func(t *testing.T) {
		stored, err := json.Marshal([]domain.RiskAssessment{
			{ConsultantNome: "Maria Silva", ClienteNome: "Acme Corp", Score: 1},
			{ConsultantNome: "Bruno Lima", ClienteNome: "Varejo Beta", Score: 4},
		})
		require.NoError(t, err)

		pool := &poolStub{row: rowStub{scan: func(dest ...any) error {
			*dest[0].(*[]byte) = stored
			return nil
		}}}
		repo := postgres.NewAnalysisResultRepo(pool)

		got, err := repo.GetByJobID(ctx, "job-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Maria Silva", got[0].ConsultantNome)
		assert.Equal(t, 4, got[1].Score)
	})

	t.Run("not found maps to ErrNotFound", func(t *testing.T) {
		pool := &poolStub{row: rowStub{scan: func(_ ...any) error { return pgx.ErrNoRows }}}
		repo := postgres.NewAnalysisResultRepo(pool)
		_, err := repo.GetByJobID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
