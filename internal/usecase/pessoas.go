package usecase

import (
	"fmt"
	"strings"

	"github.com/raisa-rms/raisa-backend/internal/adapter/ai"
	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// PessoaService manages candidates: creation, CV ingestion and semantic
// search.
type PessoaService struct {
	Pessoas domain.PessoaRepository
	Vagas   domain.VagaRepository
	AI      domain.AIClient
}

// NewPessoaService constructs a PessoaService with its dependencies.
func NewPessoaService(p domain.PessoaRepository, v domain.VagaRepository, aicl domain.AIClient) PessoaService {
	return PessoaService{Pessoas: p, Vagas: v, AI: aicl}
}

// Create registers a new candidate.
func (s PessoaService) Create(ctx domain.Context, nome, email string) (domain.Pessoa, error) {
	if strings.TrimSpace(nome) == "" {
		return domain.Pessoa{}, fmt.Errorf("%w: nome required", domain.ErrInvalidArgument)
	}
	pessoa := domain.Pessoa{Nome: nome, Email: email}
	id, err := s.Pessoas.Create(ctx, pessoa)
	if err != nil {
		return domain.Pessoa{}, err
	}
	pessoa.ID = id
	return pessoa, nil
}

// Get loads a candidate.
func (s PessoaService) Get(ctx domain.Context, id string) (domain.Pessoa, error) {
	return s.Pessoas.Get(ctx, id)
}

// IngestCV runs the CV pipeline for an uploaded document already extracted
// to plain text: profile prompt, one model call, extraction, validation with
// defaults, embedding, then a single persistence write.
func (s PessoaService) IngestCV(ctx domain.Context, pessoaID, cvText string) (domain.CVProfile, error) {
	if strings.TrimSpace(cvText) == "" {
		return domain.CVProfile{}, fmt.Errorf("%w: empty CV text", domain.ErrInvalidArgument)
	}
	if _, err := s.Pessoas.Get(ctx, pessoaID); err != nil {
		return domain.CVProfile{}, err
	}

	truncated := ai.TruncateForPrompt(cvText)
	raw, err := s.AI.GenerateJSON(ctx, ai.BuildCVProfilePrompt(truncated))
	if err != nil {
		return domain.CVProfile{}, err
	}
	extracted, err := ai.ExtractJSON(raw)
	if err != nil {
		return domain.CVProfile{}, err
	}
	profile, err := ai.ValidateCVProfile(extracted)
	if err != nil {
		return domain.CVProfile{}, err
	}

	embedding, err := s.AI.Embed(ctx, truncated)
	if err != nil {
		return domain.CVProfile{}, err
	}

	if err := s.Pessoas.ApplyCVProfile(ctx, pessoaID, cvText, profile, embedding); err != nil {
		return domain.CVProfile{}, err
	}
	return profile, nil
}

// Search finds candidates semantically close to a free-text query or to a
// vaga's requirements. Exactly one of query/vagaID must be provided.
func (s PessoaService) Search(ctx domain.Context, query, vagaID string, limit int) ([]domain.Pessoa, error) {
	if (query == "") == (vagaID == "") {
		return nil, fmt.Errorf("%w: provide exactly one of text or vaga_id", domain.ErrInvalidArgument)
	}
	if vagaID != "" {
		vaga, err := s.Vagas.Get(ctx, vagaID)
		if err != nil {
			return nil, err
		}
		query = fmt.Sprintf("%s %s %s", vaga.Titulo, vaga.Senioridade, strings.Join(vaga.StackRequerida, " "))
	}
	embedding, err := s.AI.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.Pessoas.SearchByEmbedding(ctx, embedding, limit)
}
