package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/raisa-rms/raisa-backend/internal/domain"
	"github.com/raisa-rms/raisa-backend/internal/domain/mocks"
)

func Test_ParseSegments(t *testing.T) {
	tests := []struct {
		name   string
		report string
		want   []ReportSegment
	}{
		{
			name:   "single segment with client",
			report: "◆ Maria Silva | Acme Corp\nEntregou tudo no prazo.",
			want: []ReportSegment{
				{Nome: "Maria Silva", Cliente: "Acme Corp", Texto: "Entregou tudo no prazo."},
			},
		},
		{
			name:   "header without client",
			report: "◆ João Souza\nSem cliente atribuído neste mês.",
			want: []ReportSegment{
				{Nome: "João Souza", Texto: "Sem cliente atribuído neste mês."},
			},
		},
		{
			name:   "text before first marker ignored",
			report: "Resumo geral do mês.\n◆ Maria Silva | Acme Corp\nTudo bem.",
			want: []ReportSegment{
				{Nome: "Maria Silva", Cliente: "Acme Corp", Texto: "Tudo bem."},
			},
		},
		{
			name:   "multiple segments",
			report: "◆ Maria | Acme\nOk.\n◆ João | Beta\nPreocupante.",
			want: []ReportSegment{
				{Nome: "Maria", Cliente: "Acme", Texto: "Ok."},
				{Nome: "João", Cliente: "Beta", Texto: "Preocupante."},
			},
		},
		{
			name:   "empty header skipped",
			report: "◆ | Acme\nSem nome.\n◆ Maria | Acme\nOk.",
			want: []ReportSegment{
				{Nome: "Maria", Cliente: "Acme", Texto: "Ok."},
			},
		},
		{
			name:   "no markers",
			report: "Relatório sem marcadores de consultor.",
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSegments(tt.report))
		})
	}
}

func Test_AnalyzeService_Enqueue(t *testing.T) {
	ctx := context.Background()
	report := "◆ Maria Silva | Acme Corp\nEntregou tudo no prazo."

	t.Run("happy path", func(t *testing.T) {
		jobs := new(mocks.MockAnalysisJobRepository)
		queue := new(mocks.MockQueue)
		jobs.On("Create", ctx, mock.MatchedBy(func(j domain.AnalysisJob) bool {
			return j.Status == domain.AnalysisQueued && j.Segments == 1
		})).Return("job-1", nil)
		queue.On("EnqueueAnalysis", ctx, domain.AnalysisTaskPayload{
			JobID: "job-1", ReportText: report, GestorNome: "Carlos", Mes: 8,
		}).Return("job-1", nil)

		svc := NewAnalyzeService(jobs, queue)
		job, err := svc.Enqueue(ctx, report, "Carlos", 8)
		require.NoError(t, err)
		assert.Equal(t, "job-1", job.ID)
		assert.Equal(t, domain.AnalysisQueued, job.Status)
		jobs.AssertExpectations(t)
		queue.AssertExpectations(t)
	})

	t.Run("empty report rejected", func(t *testing.T) {
		svc := NewAnalyzeService(new(mocks.MockAnalysisJobRepository), new(mocks.MockQueue))
		_, err := svc.Enqueue(ctx, "   ", "Carlos", 8)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("month out of range rejected", func(t *testing.T) {
		svc := NewAnalyzeService(new(mocks.MockAnalysisJobRepository), new(mocks.MockQueue))
		_, err := svc.Enqueue(ctx, report, "Carlos", 13)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("report without segments rejected", func(t *testing.T) {
		svc := NewAnalyzeService(new(mocks.MockAnalysisJobRepository), new(mocks.MockQueue))
		_, err := svc.Enqueue(ctx, "Relatório sem marcadores.", "Carlos", 8)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("enqueue failure marks job failed", func(t *testing.T) {
		jobs := new(mocks.MockAnalysisJobRepository)
		queue := new(mocks.MockQueue)
		jobs.On("Create", ctx, mock.Anything).Return("job-2", nil)
		queue.On("EnqueueAnalysis", ctx, mock.Anything).Return("", errors.New("broker down"))
		jobs.On("UpdateStatus", ctx, "job-2", domain.AnalysisFailed, mock.MatchedBy(func(msg *string) bool {
			return msg != nil && *msg == "enqueue failed"
		})).Return(nil)

		svc := NewAnalyzeService(jobs, queue)
		_, err := svc.Enqueue(ctx, report, "Carlos", 8)
		assert.Error(t, err)
		jobs.AssertExpectations(t)
	})
}
