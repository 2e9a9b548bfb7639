package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raisa-rms/raisa-backend/internal/domain"
	"github.com/raisa-rms/raisa-backend/internal/domain/mocks"
)

func Test_ResultService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("completed job includes assessments", func(t *testing.T) {
		jobs := new(mocks.MockAnalysisJobRepository)
		results := new(mocks.MockAnalysisResultRepository)
		jobs.On("Get", ctx, "job-1").Return(domain.AnalysisJob{ID: "job-1", Status: domain.AnalysisCompleted}, nil)
		items := []domain.RiskAssessment{{ConsultantNome: "Maria Silva", Score: 2}}
		results.On("GetByJobID", ctx, "job-1").Return(items, nil)

		svc := NewResultService(jobs, results)
		view, err := svc.Get(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, items, view.Assessments)
	})

	t.Run("pending job returns status only", func(t *testing.T) {
		jobs := new(mocks.MockAnalysisJobRepository)
		results := new(mocks.MockAnalysisResultRepository)
		jobs.On("Get", ctx, "job-2").Return(domain.AnalysisJob{ID: "job-2", Status: domain.AnalysisProcessing}, nil)

		svc := NewResultService(jobs, results)
		view, err := svc.Get(ctx, "job-2")
		require.NoError(t, err)
		assert.Empty(t, view.Assessments)
		results.AssertNotCalled(t, "GetByJobID", ctx, "job-2")
	})

	t.Run("completed job with missing results row still returns the job", func(t *testing.T) {
		jobs := new(mocks.MockAnalysisJobRepository)
		results := new(mocks.MockAnalysisResultRepository)
		jobs.On("Get", ctx, "job-3").Return(domain.AnalysisJob{ID: "job-3", Status: domain.AnalysisCompleted}, nil)
		results.On("GetByJobID", ctx, "job-3").Return(nil, domain.ErrNotFound)

		svc := NewResultService(jobs, results)
		view, err := svc.Get(ctx, "job-3")
		require.NoError(t, err)
		assert.Equal(t, "job-3", view.Job.ID)
		assert.Empty(t, view.Assessments)
	})

	t.Run("unknown job", func(t *testing.T) {
		jobs := new(mocks.MockAnalysisJobRepository)
		jobs.On("Get", ctx, "missing").Return(domain.AnalysisJob{}, domain.ErrNotFound)

		svc := NewResultService(jobs, new(mocks.MockAnalysisResultRepository))
		_, err := svc.Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
