package usecase

import (
	"fmt"
	"time"

	"github.com/raisa-rms/raisa-backend/internal/adapter/ai"
	"github.com/raisa-rms/raisa-backend/internal/adapter/observability"
	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// MatchingService runs the synchronous candidate matching pipeline and the
// analyst-driven workflow transitions.
type MatchingService struct {
	Matches domain.MatchRepository
	Pessoas domain.PessoaRepository
	Vagas   domain.VagaRepository
	AI      domain.AIClient
}

// NewMatchingService constructs a MatchingService with its dependencies.
func NewMatchingService(m domain.MatchRepository, p domain.PessoaRepository, v domain.VagaRepository, aicl domain.AIClient) MatchingService {
	return MatchingService{Matches: m, Pessoas: p, Vagas: v, AI: aicl}
}

// Create runs the matching pipeline for one pessoa/vaga pair within the
// request: prompt, one model call, extraction, validation, persistence. Any
// stage failure surfaces to the caller; no partial match row is written.
func (s MatchingService) Create(ctx domain.Context, pessoaID, vagaID string) (domain.CandidateMatch, error) {
	if pessoaID == "" || vagaID == "" {
		return domain.CandidateMatch{}, fmt.Errorf("%w: pessoa_id and vaga_id required", domain.ErrInvalidArgument)
	}
	pessoa, err := s.Pessoas.Get(ctx, pessoaID)
	if err != nil {
		return domain.CandidateMatch{}, err
	}
	if pessoa.CVTexto == "" {
		return domain.CandidateMatch{}, fmt.Errorf("%w: pessoa has no CV text", domain.ErrInvalidArgument)
	}
	vaga, err := s.Vagas.Get(ctx, vagaID)
	if err != nil {
		return domain.CandidateMatch{}, err
	}

	prompt := ai.BuildMatchPrompt(vaga, ai.TruncateForPrompt(pessoa.CVTexto))
	raw, err := s.AI.GenerateJSON(ctx, prompt)
	if err != nil {
		return domain.CandidateMatch{}, err
	}
	extracted, err := ai.ExtractJSON(raw)
	if err != nil {
		return domain.CandidateMatch{}, err
	}
	result, err := ai.ValidateMatch(extracted)
	if err != nil {
		return domain.CandidateMatch{}, err
	}
	observability.ObserveMatchScore(result.Score)

	match := domain.CandidateMatch{
		PessoaID:          pessoaID,
		VagaID:            vagaID,
		Score:             result.Score,
		SkillsCompativeis: result.SkillsCompativeis,
		SkillsFaltantes:   result.SkillsFaltantes,
		Status:            domain.MatchNovo,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	id, err := s.Matches.Create(ctx, match)
	if err != nil {
		return domain.CandidateMatch{}, err
	}
	match.ID = id
	return match, nil
}

// Transition moves a match to a new workflow state. Illegal transitions
// (out of a terminal state, back to novo, self-transitions) fail with
// ErrConflict. Discarding requires a reason.
func (s MatchingService) Transition(ctx domain.Context, matchID string, next domain.MatchStatus, motivo string) (domain.CandidateMatch, error) {
	if !next.Valid() {
		return domain.CandidateMatch{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidArgument, next)
	}
	if next == domain.MatchDescartado && motivo == "" {
		return domain.CandidateMatch{}, fmt.Errorf("%w: discard reason required", domain.ErrInvalidArgument)
	}
	match, err := s.Matches.Get(ctx, matchID)
	if err != nil {
		return domain.CandidateMatch{}, err
	}
	if !match.Status.CanTransitionTo(next) {
		return domain.CandidateMatch{}, fmt.Errorf("%w: cannot move match from %s to %s", domain.ErrConflict, match.Status, next)
	}
	if err := s.Matches.UpdateStatus(ctx, matchID, next, motivo); err != nil {
		return domain.CandidateMatch{}, err
	}
	match.Status = next
	match.MotivoDescarte = motivo
	match.UpdatedAt = time.Now().UTC()
	return match, nil
}

// ListByVaga returns the matches of a vaga; selectableOnly hides the
// terminal states so discarded matches are never reconsidered.
func (s MatchingService) ListByVaga(ctx domain.Context, vagaID string, selectableOnly bool) ([]domain.CandidateMatch, error) {
	if vagaID == "" {
		return nil, fmt.Errorf("%w: vaga_id required", domain.ErrInvalidArgument)
	}
	return s.Matches.ListByVaga(ctx, vagaID, selectableOnly)
}
