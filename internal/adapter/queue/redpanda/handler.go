package redpanda

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/raisa-rms/raisa-backend/internal/adapter/ai"
	"github.com/raisa-rms/raisa-backend/internal/adapter/observability"
	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// HandleAnalysis runs the full report analysis pipeline for one job: prompt
// build, one Gemini call, JSON extraction, validation, then persistence of
// each consultant's risk snapshot. Any pipeline failure marks the job failed;
// nothing is retried.
func HandleAnalysis(
	ctx context.Context,
	jobs domain.AnalysisJobRepository,
	consultants domain.ConsultantRepository,
	results domain.AnalysisResultRepository,
	aicl domain.AIClient,
	payload domain.AnalysisTaskPayload,
) error {
	tracer := otel.Tracer("queue.handler")
	ctx, span := tracer.Start(ctx, "HandleAnalysis")
	defer span.End()

	if jobs == nil || consultants == nil || results == nil || aicl == nil {
		return fmt.Errorf("handler dependencies are nil")
	}

	lg := observability.LoggerFromContext(ctx).With(slog.String("job_id", payload.JobID))

	if err := jobs.UpdateStatus(ctx, payload.JobID, domain.AnalysisProcessing, nil); err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	observability.StartProcessingJob("analyze")

	prompt := ai.BuildRiskPrompt(payload.ReportText, payload.GestorNome, payload.Mes)

	raw, err := aicl.GenerateJSON(ctx, prompt)
	if err != nil {
		return failJob(ctx, jobs, payload.JobID, lg, "ai call failed", err)
	}

	extracted, err := ai.ExtractJSON(raw)
	if err != nil {
		return failJob(ctx, jobs, payload.JobID, lg, "no parseable JSON in response", err)
	}

	assessments, err := ai.ValidateRiskResults(extracted, payload.GestorNome, payload.Mes)
	if err != nil {
		return failJob(ctx, jobs, payload.JobID, lg, "response validation failed", err)
	}

	for _, a := range assessments {
		observability.ObserveRiskScore(a.Score)
		consultant, err := consultants.FindByNomeCliente(ctx, a.ConsultantNome, a.ClienteNome)
		if err != nil {
			// The model may name consultants not present in the base. The
			// assessment still reaches the job results below.
			lg.Warn("consultant not found for assessment",
				slog.String("consultant", a.ConsultantNome),
				slog.String("cliente", a.ClienteNome),
				slog.Any("error", err))
			continue
		}
		if err := consultants.ApplyRiskSnapshot(ctx, consultant.ID, a); err != nil {
			return failJob(ctx, jobs, payload.JobID, lg, "persist risk snapshot failed", err)
		}
	}

	if err := results.Upsert(ctx, payload.JobID, assessments); err != nil {
		return failJob(ctx, jobs, payload.JobID, lg, "persist results failed", err)
	}

	if err := jobs.UpdateStatus(ctx, payload.JobID, domain.AnalysisCompleted, nil); err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	observability.CompleteJob("analyze")
	lg.Info("analysis job completed", slog.Int("assessments", len(assessments)))
	return nil
}

func failJob(ctx context.Context, jobs domain.AnalysisJobRepository, jobID string, lg *slog.Logger, msg string, err error) error {
	lg.Error(msg, slog.Any("error", err))
	errMsg := msg
	if uErr := jobs.UpdateStatus(ctx, jobID, domain.AnalysisFailed, &errMsg); uErr != nil {
		lg.Error("failed to mark job failed", slog.Any("error", uErr))
	}
	observability.FailJob("analyze")
	return fmt.Errorf("%s: %w", msg, err)
}
