// Package domain holds the core entities, error taxonomy and ports of the
// RAISA HR operations backend.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels). Adapters wrap these with op= context; the HTTP
// boundary maps them to status codes exactly once.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	// ErrConfiguration signals a missing credential detected lazily at first
	// use, never at process start.
	ErrConfiguration = errors.New("configuration error")
	// ErrProvider signals a non-2xx or malformed envelope from an external
	// provider (Gemini, mail). Never retried by the pipeline.
	ErrProvider = errors.New("provider error")
	// ErrExtraction signals that no parseable JSON span was found in a model
	// response.
	ErrExtraction = errors.New("extraction error")
	// ErrValidation signals a required decision field missing or mistyped
	// after parse.
	ErrValidation = errors.New("validation error")
	ErrPersistence = errors.New("persistence error")
	ErrInternal    = errors.New("internal error")
)

// Risk score scale. Canonical direction: 1 = excellent / lowest attrition
// risk, 5 = critical / imminent departure.
const (
	RiskScoreMin = 1
	RiskScoreMax = 5
)

// Consultant is a staffing-company employee placed at a client site. The
// risk_* columns are a snapshot of the latest report analysis; each new
// report overwrites them, history is not versioned here.
type Consultant struct {
	ID                    string
	Nome                  string
	Cliente               string
	Gestor                string
	RiskScore             int
	RiskMes               int
	RiskResumo            string
	RiskPadroesNegativos  string
	RiskAlertasPreditivos string
	RiskRecomendacoes     string
	RiskDetalhe           string
	RiskAtualizadoEm      time.Time
	CreatedAt             time.Time
}

// RiskAssessment is the validated output of one report segment analysis for
// one consultant. Only ever constructed after the extractor produced valid
// JSON and the validator confirmed the score field.
type RiskAssessment struct {
	ConsultantNome    string `json:"consultant_nome"`
	ClienteNome       string `json:"cliente_nome"`
	GestorNome        string `json:"gestor_nome"`
	Mes               int    `json:"mes"`
	Score             int    `json:"score"`
	Resumo            string `json:"resumo"`
	PadroesNegativos  string `json:"padroes_negativos"`
	AlertasPreditivos string `json:"alertas_preditivos"`
	Recomendacoes     string `json:"recomendacoes"`
	Detalhe           string `json:"detalhe"`
}

// AnalysisJobStatus enumerates report analysis job states.
type AnalysisJobStatus string

// Analysis job states.
const (
	AnalysisQueued     AnalysisJobStatus = "queued"
	AnalysisProcessing AnalysisJobStatus = "processing"
	AnalysisCompleted  AnalysisJobStatus = "completed"
	AnalysisFailed     AnalysisJobStatus = "failed"
)

// AnalysisJob tracks one activity-report analysis request. The report text
// itself travels only in the queue payload; it is never persisted verbatim.
type AnalysisJob struct {
	ID         string
	Status     AnalysisJobStatus
	Error      string
	GestorNome string
	Mes        int
	Segments   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Vaga is a job requisition at a client.
type Vaga struct {
	ID                  string
	Titulo              string
	Cliente             string
	ClienteVIP          bool
	StackRequerida      []string
	Senioridade         string
	FaturamentoEstimado float64
	DataLimite          *time.Time
	AbertaEm            time.Time
	Status              string
}

// Pessoa is a recruitment candidate. CVTexto and the profile fields are
// filled by the CV parsing pipeline; Embedding is used for similarity search.
type Pessoa struct {
	ID           string
	Nome         string
	Email        string
	CVTexto      string
	Skills       []string
	Experiencias []string
	Formacao     []string
	Idiomas      []string
	Senioridade  string
	Resumo       string
	CreatedAt    time.Time
}

// CVProfile is the validated, fully defaulted result of parsing a CV text.
type CVProfile struct {
	Skills       []string
	Experiencias []string
	Formacao     []string
	Idiomas      []string
	Senioridade  string
	Resumo       string
}

// MatchStatus is the analyst-driven workflow state of a candidate match.
type MatchStatus string

// Match workflow states. Descartado and CandidaturaCriada are terminal.
const (
	MatchNovo              MatchStatus = "novo"
	MatchVisualizado       MatchStatus = "visualizado"
	MatchSelecionado       MatchStatus = "selecionado"
	MatchDescartado        MatchStatus = "descartado"
	MatchCandidaturaCriada MatchStatus = "candidatura_criada"
)

// Terminal reports whether no further transitions are allowed from s.
func (s MatchStatus) Terminal() bool {
	return s == MatchDescartado || s == MatchCandidaturaCriada
}

// Valid reports whether s is a known workflow state.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchNovo, MatchVisualizado, MatchSelecionado, MatchDescartado, MatchCandidaturaCriada:
		return true
	}
	return false
}

// CanTransitionTo reports whether an analyst may move a match from s to next.
// All transitions are analyst-triggered; there are no automatic ones.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	if !next.Valid() || s.Terminal() || next == MatchNovo || next == s {
		return false
	}
	return true
}

// CandidateMatch links a pessoa to a vaga with an AI compatibility score.
// Matches are never deleted, only marked descartado.
type CandidateMatch struct {
	ID                string
	PessoaID          string
	VagaID            string
	Score             int
	SkillsCompativeis []string
	SkillsFaltantes   []string
	Status            MatchStatus
	MotivoDescarte    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PriorityFactors is the contributing factor breakdown of a vaga priority
// score. Each factor is on a 0-100 scale before weighting.
type PriorityFactors struct {
	Urgencia    float64 `json:"urgencia"`
	Faturamento float64 `json:"faturamento"`
	TempoAberto float64 `json:"tempo_aberto"`
	Completude  float64 `json:"completude"`
	BonusVIP    float64 `json:"bonus_vip"`
}

// Origin of a vaga priority score.
const (
	PriorityFonteIA         = "ia"
	PriorityFonteHeuristica = "heuristica"
)

// JobPriorityScore is the computed priority of a vaga. Recomputed on demand;
// each computation fully replaces the previous row.
type JobPriorityScore struct {
	VagaID     string
	Score      float64
	Tier       string
	SLADias    int
	Fatores    PriorityFactors
	Fonte      string // "ia" or "heuristica"
	ComputedAt time.Time
}

// CandidatureSend records one candidate presentation email to a client.
type CandidatureSend struct {
	ID           string
	MatchID      string
	PessoaID     string
	VagaID       string
	Destinatario string
	Assunto      string
	MensagemID   string
	CreatedAt    time.Time
}

// EmailQueueItem is an inbound email enqueued for classification via the
// signed webhook.
type EmailQueueItem struct {
	ID         string
	Remetente  string
	Assunto    string
	Corpo      string
	RecebidoEm time.Time
	CreatedAt  time.Time
}

// AnalysisTaskPayload is the queue message for one report analysis.
type AnalysisTaskPayload struct {
	JobID      string `json:"job_id"`
	ReportText string `json:"report_text"`
	GestorNome string `json:"gestor_nome"`
	Mes        int    `json:"mes"`
}

// Context aliases context.Context so ports read uniformly.
type Context = context.Context
