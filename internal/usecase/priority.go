package usecase

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/raisa-rms/raisa-backend/internal/adapter/ai"
	"github.com/raisa-rms/raisa-backend/internal/adapter/observability"
	"github.com/raisa-rms/raisa-backend/internal/domain"
	"github.com/raisa-rms/raisa-backend/internal/priority"
)

// PriorityService computes vaga priority scores. The AI path is preferred;
// when the provider is unconfigured, unreachable or over budget the
// deterministic local scorer substitutes, so the endpoint never fails for
// provider reasons.
type PriorityService struct {
	Vagas   domain.VagaRepository
	AI      domain.AIClient
	Weights priority.Weights
}

// NewPriorityService constructs a PriorityService with its dependencies.
func NewPriorityService(v domain.VagaRepository, aicl domain.AIClient, w priority.Weights) PriorityService {
	return PriorityService{Vagas: v, AI: aicl, Weights: w}
}

// Compute scores the vaga and fully replaces its stored priority.
func (s PriorityService) Compute(ctx domain.Context, vagaID string) (domain.JobPriorityScore, error) {
	vaga, err := s.Vagas.Get(ctx, vagaID)
	if err != nil {
		return domain.JobPriorityScore{}, err
	}
	now := time.Now().UTC()

	score, err := s.aiScore(ctx, vaga, now)
	if err != nil {
		if !fallbackEligible(err) {
			return domain.JobPriorityScore{}, err
		}
		observability.LoggerFromContext(ctx).Warn("ai priority unavailable, using local scorer",
			slog.String("vaga_id", vagaID), slog.Any("error", err))
		score = priority.Score(vaga, s.Weights, now)
	}

	if err := s.Vagas.ReplacePriority(ctx, score); err != nil {
		return domain.JobPriorityScore{}, err
	}
	return score, nil
}

// aiScore runs the AI path of the priority pipeline. The factor breakdown is
// always the deterministic one; the model only overrides the final score.
func (s PriorityService) aiScore(ctx domain.Context, vaga domain.Vaga, now time.Time) (domain.JobPriorityScore, error) {
	local := priority.Score(vaga, s.Weights, now)

	var diasAteLimite *int
	if vaga.DataLimite != nil {
		d := int(math.Ceil(vaga.DataLimite.Sub(now).Hours() / 24))
		diasAteLimite = &d
	}
	diasAberta := int(now.Sub(vaga.AbertaEm).Hours() / 24)

	prompt := ai.BuildPriorityPrompt(vaga, diasAteLimite, diasAberta)
	raw, err := s.AI.GenerateJSON(ctx, prompt)
	if err != nil {
		return domain.JobPriorityScore{}, err
	}
	extracted, err := ai.ExtractJSON(raw)
	if err != nil {
		return domain.JobPriorityScore{}, err
	}
	value, err := ai.ValidatePriorityScore(extracted)
	if err != nil {
		return domain.JobPriorityScore{}, err
	}

	local.Score = math.Round(value*10) / 10
	local.Tier = priority.TierFor(local.Score)
	local.SLADias = priority.SLAFor(local.Tier)
	local.Fonte = domain.PriorityFonteIA
	return local, nil
}

// fallbackEligible reports whether the local scorer substitutes for err.
// Extraction and validation failures also fall back: the deterministic score
// is always available and the endpoint prefers a heuristic answer over a 502.
func fallbackEligible(err error) bool {
	return errors.Is(err, domain.ErrConfiguration) ||
		errors.Is(err, domain.ErrProvider) ||
		errors.Is(err, domain.ErrRateLimited) ||
		errors.Is(err, domain.ErrExtraction) ||
		errors.Is(err, domain.ErrValidation)
}
