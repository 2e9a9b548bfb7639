package domain

// Repositories (ports)

// ConsultantRepository persists consultants and their latest risk snapshot.
type ConsultantRepository interface {
	Get(ctx Context, id string) (Consultant, error)
	// FindByNomeCliente locates a consultant by the `Nome | Cliente` pair a
	// report segment header carries.
	FindByNomeCliente(ctx Context, nome, cliente string) (Consultant, error)
	// ApplyRiskSnapshot overwrites the consultant's latest risk fields.
	ApplyRiskSnapshot(ctx Context, consultantID string, a RiskAssessment) error
	CountByRiskScore(ctx Context) (map[int]int64, error)
}

// AnalysisJobRepository persists report analysis jobs.
type AnalysisJobRepository interface {
	Create(ctx Context, j AnalysisJob) (string, error)
	UpdateStatus(ctx Context, id string, status AnalysisJobStatus, errMsg *string) error
	Get(ctx Context, id string) (AnalysisJob, error)
}

// AnalysisResultRepository stores the assessments produced by one job so the
// API can return them; the authoritative snapshot lives on the consultant.
type AnalysisResultRepository interface {
	Upsert(ctx Context, jobID string, items []RiskAssessment) error
	GetByJobID(ctx Context, jobID string) ([]RiskAssessment, error)
}

// VagaRepository persists job requisitions and their priority scores.
type VagaRepository interface {
	Get(ctx Context, id string) (Vaga, error)
	ReplacePriority(ctx Context, p JobPriorityScore) error
	GetPriority(ctx Context, vagaID string) (JobPriorityScore, error)
	CountOpen(ctx Context) (int64, error)
}

// PessoaRepository persists candidates, CV profiles and embeddings.
type PessoaRepository interface {
	Create(ctx Context, p Pessoa) (string, error)
	Get(ctx Context, id string) (Pessoa, error)
	// ApplyCVProfile stores the extracted CV text, the validated profile and
	// its embedding in one write.
	ApplyCVProfile(ctx Context, id, cvText string, profile CVProfile, embedding []float32) error
	SearchByEmbedding(ctx Context, embedding []float32, limit int) ([]Pessoa, error)
}

// MatchRepository persists candidate matches. Matches are append-and-update
// only; discarding is a status, not a delete.
type MatchRepository interface {
	Create(ctx Context, m CandidateMatch) (string, error)
	Get(ctx Context, id string) (CandidateMatch, error)
	UpdateStatus(ctx Context, id string, status MatchStatus, motivo string) error
	ListByVaga(ctx Context, vagaID string, selectableOnly bool) ([]CandidateMatch, error)
	CountByStatus(ctx Context) (map[MatchStatus]int64, error)
}

// SendRepository records candidature presentation emails.
type SendRepository interface {
	Create(ctx Context, s CandidatureSend) (string, error)
	SetMensagemID(ctx Context, id, mensagemID string) error
	ListRecent(ctx Context, limit int) ([]CandidatureSend, error)
}

// EmailQueueRepository stores inbound emails awaiting classification.
type EmailQueueRepository interface {
	Enqueue(ctx Context, item EmailQueueItem) (string, error)
}

// Queue enqueues report analysis tasks for the worker.
type Queue interface {
	EnqueueAnalysis(ctx Context, payload AnalysisTaskPayload) (string, error)
}

// AIClient is the gateway to the generative model provider.
type AIClient interface {
	// GenerateJSON sends a prompt and returns the model's raw textual
	// response. Fails with ErrConfiguration when no credential is present at
	// call time, ErrProvider on upstream failure. Never retried.
	GenerateJSON(ctx Context, prompt string) (string, error)
	// Embed returns the embedding vector for a text.
	Embed(ctx Context, text string) ([]float32, error)
}

// Mailer sends transactional email and returns the provider message id.
type Mailer interface {
	Send(ctx Context, to, subject, htmlBody, textBody string) (string, error)
}

// TextExtractor extracts plain text from an uploaded document at path.
type TextExtractor interface {
	ExtractPath(ctx Context, fileName, path string) (string, error)
}
