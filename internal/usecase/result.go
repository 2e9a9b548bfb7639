package usecase

import (
	"errors"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// ResultService serves analysis job status and results.
type ResultService struct {
	Jobs    domain.AnalysisJobRepository
	Results domain.AnalysisResultRepository
}

// NewResultService constructs a ResultService with its dependencies.
func NewResultService(j domain.AnalysisJobRepository, r domain.AnalysisResultRepository) ResultService {
	return ResultService{Jobs: j, Results: r}
}

// AnalysisView is the job plus its assessments once completed.
type AnalysisView struct {
	Job         domain.AnalysisJob
	Assessments []domain.RiskAssessment
}

// Get returns the job and, when completed, its per-consultant assessments. A
// completed job whose results row is missing still returns the job.
func (s ResultService) Get(ctx domain.Context, jobID string) (AnalysisView, error) {
	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return AnalysisView{}, err
	}
	view := AnalysisView{Job: job}
	if job.Status != domain.AnalysisCompleted {
		return view, nil
	}
	items, err := s.Results.GetByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return view, nil
		}
		return AnalysisView{}, err
	}
	view.Assessments = items
	return view, nil
}
