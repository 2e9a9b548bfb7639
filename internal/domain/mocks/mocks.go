// Package mocks provides testify mocks for the domain ports.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// MockAnalysisJobRepository mocks domain.AnalysisJobRepository.
type MockAnalysisJobRepository struct{ mock.Mock }

func (m *MockAnalysisJobRepository) Create(ctx domain.Context, j domain.AnalysisJob) (string, error) {
	args := m.Called(ctx, j)
	return args.String(0), args.Error(1)
}

func (m *MockAnalysisJobRepository) UpdateStatus(ctx domain.Context, id string, status domain.AnalysisJobStatus, errMsg *string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

func (m *MockAnalysisJobRepository) Get(ctx domain.Context, id string) (domain.AnalysisJob, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.AnalysisJob), args.Error(1)
}

// MockAnalysisResultRepository mocks domain.AnalysisResultRepository.
type MockAnalysisResultRepository struct{ mock.Mock }

func (m *MockAnalysisResultRepository) Upsert(ctx domain.Context, jobID string, items []domain.RiskAssessment) error {
	args := m.Called(ctx, jobID, items)
	return args.Error(0)
}

func (m *MockAnalysisResultRepository) GetByJobID(ctx domain.Context, jobID string) ([]domain.RiskAssessment, error) {
	args := m.Called(ctx, jobID)
	if v := args.Get(0); v != nil {
		return v.([]domain.RiskAssessment), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockConsultantRepository mocks domain.ConsultantRepository.
type MockConsultantRepository struct{ mock.Mock }

func (m *MockConsultantRepository) Get(ctx domain.Context, id string) (domain.Consultant, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Consultant), args.Error(1)
}

func (m *MockConsultantRepository) FindByNomeCliente(ctx domain.Context, nome, cliente string) (domain.Consultant, error) {
	args := m.Called(ctx, nome, cliente)
	return args.Get(0).(domain.Consultant), args.Error(1)
}

func (m *MockConsultantRepository) ApplyRiskSnapshot(ctx domain.Context, consultantID string, a domain.RiskAssessment) error {
	args := m.Called(ctx, consultantID, a)
	return args.Error(0)
}

func (m *MockConsultantRepository) CountByRiskScore(ctx domain.Context) (map[int]int64, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(map[int]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockVagaRepository mocks domain.VagaRepository.
type MockVagaRepository struct{ mock.Mock }

func (m *MockVagaRepository) Get(ctx domain.Context, id string) (domain.Vaga, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Vaga), args.Error(1)
}

func (m *MockVagaRepository) ReplacePriority(ctx domain.Context, p domain.JobPriorityScore) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockVagaRepository) GetPriority(ctx domain.Context, vagaID string) (domain.JobPriorityScore, error) {
	args := m.Called(ctx, vagaID)
	return args.Get(0).(domain.JobPriorityScore), args.Error(1)
}

func (m *MockVagaRepository) CountOpen(ctx domain.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPessoaRepository mocks domain.PessoaRepository.
type MockPessoaRepository struct{ mock.Mock }

func (m *MockPessoaRepository) Create(ctx domain.Context, p domain.Pessoa) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *MockPessoaRepository) Get(ctx domain.Context, id string) (domain.Pessoa, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Pessoa), args.Error(1)
}

func (m *MockPessoaRepository) ApplyCVProfile(ctx domain.Context, id, cvText string, profile domain.CVProfile, embedding []float32) error {
	args := m.Called(ctx, id, cvText, profile, embedding)
	return args.Error(0)
}

func (m *MockPessoaRepository) SearchByEmbedding(ctx domain.Context, embedding []float32, limit int) ([]domain.Pessoa, error) {
	args := m.Called(ctx, embedding, limit)
	if v := args.Get(0); v != nil {
		return v.([]domain.Pessoa), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMatchRepository mocks domain.MatchRepository.
type MockMatchRepository struct{ mock.Mock }

func (m *MockMatchRepository) Create(ctx domain.Context, cm domain.CandidateMatch) (string, error) {
	args := m.Called(ctx, cm)
	return args.String(0), args.Error(1)
}

func (m *MockMatchRepository) Get(ctx domain.Context, id string) (domain.CandidateMatch, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.CandidateMatch), args.Error(1)
}

func (m *MockMatchRepository) UpdateStatus(ctx domain.Context, id string, status domain.MatchStatus, motivo string) error {
	args := m.Called(ctx, id, status, motivo)
	return args.Error(0)
}

func (m *MockMatchRepository) ListByVaga(ctx domain.Context, vagaID string, selectableOnly bool) ([]domain.CandidateMatch, error) {
	args := m.Called(ctx, vagaID, selectableOnly)
	if v := args.Get(0); v != nil {
		return v.([]domain.CandidateMatch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMatchRepository) CountByStatus(ctx domain.Context) (map[domain.MatchStatus]int64, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(map[domain.MatchStatus]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSendRepository mocks domain.SendRepository.
type MockSendRepository struct{ mock.Mock }

func (m *MockSendRepository) Create(ctx domain.Context, s domain.CandidatureSend) (string, error) {
	args := m.Called(ctx, s)
	return args.String(0), args.Error(1)
}

func (m *MockSendRepository) SetMensagemID(ctx domain.Context, id, mensagemID string) error {
	args := m.Called(ctx, id, mensagemID)
	return args.Error(0)
}

func (m *MockSendRepository) ListRecent(ctx domain.Context, limit int) ([]domain.CandidatureSend, error) {
	args := m.Called(ctx, limit)
	if v := args.Get(0); v != nil {
		return v.([]domain.CandidatureSend), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockEmailQueueRepository mocks domain.EmailQueueRepository.
type MockEmailQueueRepository struct{ mock.Mock }

func (m *MockEmailQueueRepository) Enqueue(ctx domain.Context, item domain.EmailQueueItem) (string, error) {
	args := m.Called(ctx, item)
	return args.String(0), args.Error(1)
}

// MockQueue mocks domain.Queue.
type MockQueue struct{ mock.Mock }

func (m *MockQueue) EnqueueAnalysis(ctx domain.Context, payload domain.AnalysisTaskPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

// MockAIClient mocks domain.AIClient.
type MockAIClient struct{ mock.Mock }

func (m *MockAIClient) GenerateJSON(ctx domain.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockAIClient) Embed(ctx domain.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMailer mocks domain.Mailer.
type MockMailer struct{ mock.Mock }

func (m *MockMailer) Send(ctx domain.Context, to, subject, htmlBody, textBody string) (string, error) {
	args := m.Called(ctx, to, subject, htmlBody, textBody)
	return args.String(0), args.Error(1)
}
