// Package usecase contains the application services orchestrating the
// analysis, matching, priority and notification flows.
package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// SegmentMarker starts each consultant segment in an activity report.
const SegmentMarker = "◆"

// ReportSegment is one `◆ Nome | Cliente` block of an activity report.
type ReportSegment struct {
	Nome    string
	Cliente string
	Texto   string
}

// AnalyzeService accepts activity reports, creates analysis jobs and hands
// them to the worker via the queue. The report text itself is never
// persisted; it travels only in the queue payload.
type AnalyzeService struct {
	Jobs  domain.AnalysisJobRepository
	Queue domain.Queue
}

// NewAnalyzeService constructs an AnalyzeService with its dependencies.
func NewAnalyzeService(j domain.AnalysisJobRepository, q domain.Queue) AnalyzeService {
	return AnalyzeService{Jobs: j, Queue: q}
}

// ParseSegments splits a report into consultant segments. Headers look like
// `◆ Nome | Cliente`; the client part is optional. Text before the first
// marker is ignored.
func ParseSegments(reportText string) []ReportSegment {
	var out []ReportSegment
	blocks := strings.Split(reportText, SegmentMarker)
	for _, block := range blocks[1:] {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		header, body, _ := strings.Cut(block, "\n")
		seg := ReportSegment{Texto: strings.TrimSpace(body)}
		nome, cliente, ok := strings.Cut(header, "|")
		seg.Nome = strings.TrimSpace(nome)
		if ok {
			seg.Cliente = strings.TrimSpace(cliente)
		}
		if seg.Nome == "" {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// Enqueue validates the report, creates a queued job and enqueues the
// analysis task. On enqueue failure the job is marked failed so the caller
// never sees a queued job that will not run.
func (s AnalyzeService) Enqueue(ctx domain.Context, reportText, gestorNome string, mes int) (domain.AnalysisJob, error) {
	if strings.TrimSpace(reportText) == "" {
		return domain.AnalysisJob{}, fmt.Errorf("%w: report text required", domain.ErrInvalidArgument)
	}
	if mes < 0 || mes > 12 {
		return domain.AnalysisJob{}, fmt.Errorf("%w: month out of range", domain.ErrInvalidArgument)
	}
	segments := ParseSegments(reportText)
	if len(segments) == 0 {
		return domain.AnalysisJob{}, fmt.Errorf("%w: no consultant segments found", domain.ErrInvalidArgument)
	}

	job := domain.AnalysisJob{
		Status:     domain.AnalysisQueued,
		GestorNome: gestorNome,
		Mes:        mes,
		Segments:   len(segments),
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	jobID, err := s.Jobs.Create(ctx, job)
	if err != nil {
		return domain.AnalysisJob{}, err
	}
	job.ID = jobID

	payload := domain.AnalysisTaskPayload{
		JobID:      jobID,
		ReportText: reportText,
		GestorNome: gestorNome,
		Mes:        mes,
	}
	if _, err := s.Queue.EnqueueAnalysis(ctx, payload); err != nil {
		_ = s.Jobs.UpdateStatus(ctx, jobID, domain.AnalysisFailed, ptr("enqueue failed"))
		return domain.AnalysisJob{}, err
	}
	return job, nil
}

func ptr(s string) *string { return &s }
