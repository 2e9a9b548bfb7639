package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/raisa-rms/raisa-backend/internal/config"
	"github.com/raisa-rms/raisa-backend/internal/domain"
	"github.com/raisa-rms/raisa-backend/internal/usecase"
	"github.com/raisa-rms/raisa-backend/pkg/textx"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Analyze    usecase.AnalyzeService
	Results    usecase.ResultService
	Matching   usecase.MatchingService
	Priority   usecase.PriorityService
	Pessoas    usecase.PessoaService
	Sends      usecase.SendService
	Dashboard  usecase.DashboardService
	EmailQueue domain.EmailQueueRepository
	Extractor  domain.TextExtractor

	DBCheck     func(ctx context.Context) error
	RedisCheck  func(ctx context.Context) error
	BrokerCheck func(ctx context.Context) error
	TikaCheck   func(ctx context.Context) error
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidArgument)
	}
	if err := getValidator().Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

// AnalyzeHandler accepts a monthly activity report and enqueues its analysis.
func (s *Server) AnalyzeHandler() http.HandlerFunc {
	type request struct {
		ReportText string `json:"report_text" validate:"required"`
		GestorNome string `json:"gestor_nome"`
		Mes        int    `json:"mes" validate:"min=0,max=12"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		job, err := s.Analyze.Enqueue(r.Context(), req.ReportText, req.GestorNome, req.Mes)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusAccepted, analysisJobView(job))
	}
}

// AnalysisResultHandler returns a job's status and, once completed, its
// per-consultant assessments.
func (s *Server) AnalysisResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := s.Results.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		resp := map[string]any{"job": analysisJobView(view.Job)}
		if view.Job.Status == domain.AnalysisCompleted {
			resp["assessments"] = view.Assessments
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// MatchCreateHandler runs the matching pipeline for a pessoa/vaga pair.
func (s *Server) MatchCreateHandler() http.HandlerFunc {
	type request struct {
		PessoaID string `json:"pessoa_id" validate:"required"`
		VagaID   string `json:"vaga_id" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		match, err := s.Matching.Create(r.Context(), req.PessoaID, req.VagaID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, matchView(match))
	}
}

// MatchStatusHandler moves a match through the analyst workflow.
func (s *Server) MatchStatusHandler() http.HandlerFunc {
	type request struct {
		Status string `json:"status" validate:"required"`
		Motivo string `json:"motivo"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		match, err := s.Matching.Transition(r.Context(), chi.URLParam(r, "id"), domain.MatchStatus(req.Status), req.Motivo)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, matchView(match))
	}
}

// VagaMatchesHandler lists a vaga's matches; ?selectable=true hides terminal
// states.
func (s *Server) VagaMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		selectable := r.URL.Query().Get("selectable") == "true"
		matches, err := s.Matching.ListByVaga(r.Context(), chi.URLParam(r, "id"), selectable)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]map[string]any, 0, len(matches))
		for _, m := range matches {
			out = append(out, matchView(m))
		}
		writeJSON(w, http.StatusOK, map[string]any{"matches": out})
	}
}

// MatchSendHandler emails the candidate presentation for a selected match and
// advances the match to candidatura_criada.
func (s *Server) MatchSendHandler() http.HandlerFunc {
	type request struct {
		Destinatario string `json:"destinatario" validate:"required,email"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		matchID := chi.URLParam(r, "id")
		send, err := s.Sends.Send(r.Context(), matchID, req.Destinatario)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if _, err := s.Matching.Transition(r.Context(), matchID, domain.MatchCandidaturaCriada, ""); err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":          send.ID,
			"match_id":    send.MatchID,
			"mensagem_id": send.MensagemID,
			"assunto":     send.Assunto,
		})
	}
}

// VagaPriorityHandler recomputes and stores the vaga's priority score.
func (s *Server) VagaPriorityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		score, err := s.Priority.Compute(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, priorityView(score))
	}
}

// PessoaCreateHandler registers a candidate.
func (s *Server) PessoaCreateHandler() http.HandlerFunc {
	type request struct {
		Nome  string `json:"nome" validate:"required"`
		Email string `json:"email" validate:"omitempty,email"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		pessoa, err := s.Pessoas.Create(r.Context(), req.Nome, req.Email)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, pessoaView(pessoa))
	}
}

// PessoaGetHandler returns a candidate with their parsed profile.
func (s *Server) PessoaGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pessoa, err := s.Pessoas.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, pessoaView(pessoa))
	}
}

// UploadCVHandler accepts a multipart CV upload (.txt, .pdf or .docx), runs
// the parsing pipeline and stores the profile and embedding.
func (s *Server) UploadCVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code: "INVALID_ARGUMENT", Message: "payload too large",
					Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		file, header, err := r.FormFile("cv")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: cv file required", domain.ErrInvalidArgument), map[string]string{"field": "cv"})
			return
		}
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: cv read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}

		if !allowedExt(header.Filename) {
			writeError(w, r, fmt.Errorf("%w: only .txt, .pdf and .docx uploads are accepted", domain.ErrInvalidArgument), nil)
			return
		}
		if m := mimetype.Detect(data); !allowedMIMEFor(m.String(), header.Filename) {
			writeError(w, r, fmt.Errorf("%w: unsupported content type %s", domain.ErrInvalidArgument, m.String()), nil)
			return
		}

		cvText, err := extractUploadedText(r.Context(), s.Extractor, header, data)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		profile, err := s.Pessoas.IngestCV(r.Context(), chi.URLParam(r, "id"), cvText)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"skills":                profile.Skills,
			"experiencias":          profile.Experiencias,
			"formacao":              profile.Formacao,
			"idiomas":               profile.Idiomas,
			"senioridade_detectada": profile.Senioridade,
			"resumo":                profile.Resumo,
		})
	}
}

// PessoaSearchHandler finds candidates by semantic similarity to a free text
// or to a vaga's requirements.
func (s *Server) PessoaSearchHandler() http.HandlerFunc {
	type request struct {
		Texto  string `json:"texto"`
		VagaID string `json:"vaga_id"`
		Limit  int    `json:"limit" validate:"min=0,max=50"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		found, err := s.Pessoas.Search(r.Context(), req.Texto, req.VagaID, req.Limit)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]map[string]any, 0, len(found))
		for _, p := range found {
			out = append(out, pessoaView(p))
		}
		writeJSON(w, http.StatusOK, map[string]any{"pessoas": out})
	}
}

// DashboardHandler returns the aggregate operations dashboard.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("recent"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}
		dash, err := s.Dashboard.Build(r.Context(), limit)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, dash)
	}
}

// HealthzHandler reports process liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler reports dependency readiness. Failing checks list their
// component so operators see what is down.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		name string
		fn   func(ctx context.Context) error
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		checks := []check{
			{"db", s.DBCheck},
			{"redis", s.RedisCheck},
			{"broker", s.BrokerCheck},
			{"tika", s.TikaCheck},
		}
		var failing []string
		for _, c := range checks {
			if c.fn == nil {
				continue
			}
			if err := c.fn(ctx); err != nil {
				failing = append(failing, c.name)
			}
		}
		if len(failing) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "failing": failing})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// allowedExt enforces the upload allowlist: .txt, .pdf, .docx.
func allowedExt(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".txt") || strings.HasSuffix(n, ".pdf") || strings.HasSuffix(n, ".docx")
}

func allowedMIMEFor(m, filename string) bool {
	m = strings.ToLower(m)
	if strings.HasSuffix(strings.ToLower(filename), ".txt") && strings.HasPrefix(m, "text/") {
		return true
	}
	if strings.HasPrefix(m, "text/plain") {
		return true
	}
	return m == "application/pdf" ||
		m == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" ||
		strings.HasPrefix(m, "application/zip") // docx detected as zip by some sniffers
}

// extractUploadedText turns the uploaded bytes into plain text. Binary
// formats go through the external extractor via a temp file; plain text is
// sanitized in place.
func extractUploadedText(ctx context.Context, extractor domain.TextExtractor, h *multipart.FileHeader, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(h.Filename))
	if ext == ".pdf" || ext == ".docx" {
		if extractor == nil {
			return "", fmt.Errorf("%w: %s uploads require the text extractor", domain.ErrInvalidArgument, ext)
		}
		tmp, err := os.CreateTemp("", "cv-*"+ext)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInternal, err)
		}
		defer func() { _ = os.Remove(tmp.Name()); _ = tmp.Close() }()
		if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInternal, err)
		}
		return extractor.ExtractPath(ctx, h.Filename, tmp.Name())
	}
	return textx.SanitizeText(string(data)), nil
}

func analysisJobView(j domain.AnalysisJob) map[string]any {
	v := map[string]any{
		"id":         j.ID,
		"status":     j.Status,
		"segments":   j.Segments,
		"created_at": j.CreatedAt,
		"updated_at": j.UpdatedAt,
	}
	if j.GestorNome != "" {
		v["gestor_nome"] = j.GestorNome
	}
	if j.Mes != 0 {
		v["mes"] = j.Mes
	}
	if j.Error != "" {
		v["error"] = j.Error
	}
	return v
}

func matchView(m domain.CandidateMatch) map[string]any {
	v := map[string]any{
		"id":                 m.ID,
		"pessoa_id":          m.PessoaID,
		"vaga_id":            m.VagaID,
		"score":              m.Score,
		"skills_compativeis": m.SkillsCompativeis,
		"skills_faltantes":   m.SkillsFaltantes,
		"status":             m.Status,
		"created_at":         m.CreatedAt,
		"updated_at":         m.UpdatedAt,
	}
	if m.MotivoDescarte != "" {
		v["motivo_descarte"] = m.MotivoDescarte
	}
	return v
}

func pessoaView(p domain.Pessoa) map[string]any {
	return map[string]any{
		"id":           p.ID,
		"nome":         p.Nome,
		"email":        p.Email,
		"skills":       p.Skills,
		"experiencias": p.Experiencias,
		"formacao":     p.Formacao,
		"idiomas":      p.Idiomas,
		"senioridade":  p.Senioridade,
		"resumo":       p.Resumo,
		"tem_cv":       p.CVTexto != "",
		"created_at":   p.CreatedAt,
	}
}

func priorityView(p domain.JobPriorityScore) map[string]any {
	return map[string]any{
		"vaga_id":     p.VagaID,
		"score":       p.Score,
		"tier":        p.Tier,
		"sla_dias":    p.SLADias,
		"fatores":     p.Fatores,
		"fonte":       p.Fonte,
		"computed_at": p.ComputedAt,
	}
}
