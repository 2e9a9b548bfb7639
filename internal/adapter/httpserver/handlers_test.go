package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/raisa-rms/raisa-backend/internal/config"
	"github.com/raisa-rms/raisa-backend/internal/domain"
	"github.com/raisa-rms/raisa-backend/internal/domain/mocks"
	"github.com/raisa-rms/raisa-backend/internal/usecase"
)

func testRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/reports/analyze", s.AnalyzeHandler())
	r.Get("/v1/analyses/{id}", s.AnalysisResultHandler())
	r.Post("/v1/matches", s.MatchCreateHandler())
	r.Post("/v1/matches/{id}/status", s.MatchStatusHandler())
	r.Post("/v1/matches/{id}/send", s.MatchSendHandler())
	r.Get("/v1/vagas/{id}/matches", s.VagaMatchesHandler())
	r.Post("/v1/vagas/{id}/priority", s.VagaPriorityHandler())
	r.Post("/v1/pessoas", s.PessoaCreateHandler())
	r.Get("/v1/pessoas/{id}", s.PessoaGetHandler())
	r.Post("/v1/pessoas/{id}/cv", s.UploadCVHandler())
	r.Post("/v1/pessoas/search", s.PessoaSearchHandler())
	r.Get("/v1/dashboard", s.DashboardHandler())
	r.Post("/v1/webhooks/email", s.EmailWebhookHandler())
	r.Get("/healthz", s.HealthzHandler())
	r.Get("/readyz", s.ReadyzHandler())
	return r
}

func Test_AnalyzeHandler(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		jobs := new(mocks.MockAnalysisJobRepository)
		queue := new(mocks.MockQueue)
		jobs.On("Create", mock.Anything, mock.Anything).Return("job-1", nil)
		queue.On("EnqueueAnalysis", mock.Anything, mock.Anything).Return("job-1", nil)
		s := &Server{Analyze: usecase.NewAnalyzeService(jobs, queue)}

		body := `{"report_text":"◆ Maria Silva | Acme Corp\nEntregou tudo no prazo.","gestor_nome":"Carlos","mes":8}`
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/reports/analyze", strings.NewReader(body)))

		require.Equal(t, http.StatusAccepted, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "job-1", resp["id"])
		assert.Equal(t, "queued", resp["status"])
	})

	t.Run("malformed body", func(t *testing.T) {
		s := &Server{}
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/reports/analyze", strings.NewReader("{not json")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing report text", func(t *testing.T) {
		s := &Server{}
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/reports/analyze", strings.NewReader(`{"mes":8}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_AnalysisResultHandler(t *testing.T) {
	t.Run("completed job includes assessments", func(t *testing.T) {
		jobs := new(mocks.MockAnalysisJobRepository)
		results := new(mocks.MockAnalysisResultRepository)
		jobs.On("Get", mock.Anything, "job-1").Return(domain.AnalysisJob{ID: "job-1", Status: domain.AnalysisCompleted}, nil)
		results.On("GetByJobID", mock.Anything, "job-1").Return([]domain.RiskAssessment{{ConsultantNome: "Maria Silva", Score: 2}}, nil)
		s := &Server{Results: usecase.NewResultService(jobs, results)}

		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyses/job-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Maria Silva")
	})

	t.Run("unknown job is 404", func(t *testing.T) {
		jobs := new(mocks.MockAnalysisJobRepository)
		jobs.On("Get", mock.Anything, "missing").Return(domain.AnalysisJob{}, domain.ErrNotFound)
		s := &Server{Results: usecase.NewResultService(jobs, new(mocks.MockAnalysisResultRepository))}

		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyses/missing", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_MatchStatusHandler(t *testing.T) {
	t.Run("illegal transition is 409", func(t *testing.T) {
		matches := new(mocks.MockMatchRepository)
		matches.On("Get", mock.Anything, "m-1").Return(domain.CandidateMatch{ID: "m-1", Status: domain.MatchDescartado}, nil)
		s := &Server{Matching: usecase.NewMatchingService(matches, nil, nil, nil)}

		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/matches/m-1/status", strings.NewReader(`{"status":"selecionado"}`)))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "CONFLICT")
	})

	t.Run("discard without reason is 400", func(t *testing.T) {
		s := &Server{Matching: usecase.NewMatchingService(new(mocks.MockMatchRepository), nil, nil, nil)}
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/matches/m-1/status", strings.NewReader(`{"status":"descartado"}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_MatchSendHandler(t *testing.T) {
	match := domain.CandidateMatch{ID: "m-1", PessoaID: "p-1", VagaID: "v-1", Score: 85, Status: domain.MatchSelecionado}

	t.Run("send advances the match", func(t *testing.T) {
		sends := new(mocks.MockSendRepository)
		matches := new(mocks.MockMatchRepository)
		pessoas := new(mocks.MockPessoaRepository)
		vagas := new(mocks.MockVagaRepository)
		mailer := new(mocks.MockMailer)
		matches.On("Get", mock.Anything, "m-1").Return(match, nil)
		pessoas.On("Get", mock.Anything, "p-1").Return(domain.Pessoa{ID: "p-1", Nome: "Ana"}, nil)
		vagas.On("Get", mock.Anything, "v-1").Return(domain.Vaga{ID: "v-1", Titulo: "Dev Go"}, nil)
		sends.On("Create", mock.Anything, mock.Anything).Return("s-1", nil)
		mailer.On("Send", mock.Anything, "rh@cliente.com", mock.Anything, mock.Anything, mock.Anything).Return("msg-1", nil)
		sends.On("SetMensagemID", mock.Anything, "s-1", "msg-1").Return(nil)
		matches.On("UpdateStatus", mock.Anything, "m-1", domain.MatchCandidaturaCriada, "").Return(nil)

		s := &Server{
			Sends:    usecase.NewSendService(sends, matches, pessoas, vagas, mailer),
			Matching: usecase.NewMatchingService(matches, pessoas, vagas, nil),
		}
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/matches/m-1/send", strings.NewReader(`{"destinatario":"rh@cliente.com"}`)))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "msg-1")
		matches.AssertCalled(t, "UpdateStatus", mock.Anything, "m-1", domain.MatchCandidaturaCriada, "")
	})

	t.Run("invalid email is 400", func(t *testing.T) {
		s := &Server{}
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/matches/m-1/send", strings.NewReader(`{"destinatario":"not-an-email"}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("provider failure is 502", func(t *testing.T) {
		sends := new(mocks.MockSendRepository)
		matches := new(mocks.MockMatchRepository)
		pessoas := new(mocks.MockPessoaRepository)
		vagas := new(mocks.MockVagaRepository)
		mailer := new(mocks.MockMailer)
		matches.On("Get", mock.Anything, "m-1").Return(match, nil)
		pessoas.On("Get", mock.Anything, "p-1").Return(domain.Pessoa{ID: "p-1"}, nil)
		vagas.On("Get", mock.Anything, "v-1").Return(domain.Vaga{ID: "v-1"}, nil)
		sends.On("Create", mock.Anything, mock.Anything).Return("s-1", nil)
		mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", domain.ErrProvider)

		s := &Server{Sends: usecase.NewSendService(sends, matches, pessoas, vagas, mailer)}
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/matches/m-1/send", strings.NewReader(`{"destinatario":"rh@cliente.com"}`)))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func Test_UploadCVHandler(t *testing.T) {
	cfg := config.Config{MaxUploadMB: 10}

	multipartBody := func(t *testing.T, filename, content string) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("cv", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		return &buf, mw.FormDataContentType()
	}

	t.Run("txt upload runs the pipeline", func(t *testing.T) {
		pessoas := new(mocks.MockPessoaRepository)
		aicl := new(mocks.MockAIClient)
		pessoas.On("Get", mock.Anything, "p-1").Return(domain.Pessoa{ID: "p-1"}, nil)
		aicl.On("GenerateJSON", mock.Anything, mock.Anything).
			Return(`{"skills":["Go"],"senioridade_detectada":"senior","resumo":"Dev."}`, nil)
		aicl.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.1}, nil)
		pessoas.On("ApplyCVProfile", mock.Anything, "p-1", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		s := &Server{Cfg: cfg, Pessoas: usecase.NewPessoaService(pessoas, nil, aicl)}
		body, ctype := multipartBody(t, "cv.txt", "Dev backend com Go e Postgres.")
		req := httptest.NewRequest(http.MethodPost, "/v1/pessoas/p-1/cv", body)
		req.Header.Set("Content-Type", ctype)
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "senioridade_detectada")
		pessoas.AssertExpectations(t)
	})

	t.Run("disallowed extension is 400", func(t *testing.T) {
		s := &Server{Cfg: cfg}
		body, ctype := multipartBody(t, "cv.exe", "MZ...")
		req := httptest.NewRequest(http.MethodPost, "/v1/pessoas/p-1/cv", body)
		req.Header.Set("Content-Type", ctype)
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing file field is 400", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("other", "x"))
		require.NoError(t, mw.Close())

		s := &Server{Cfg: cfg}
		req := httptest.NewRequest(http.MethodPost, "/v1/pessoas/p-1/cv", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("oversized body is 413", func(t *testing.T) {
		s := &Server{Cfg: config.Config{MaxUploadMB: 1}}
		body, ctype := multipartBody(t, "cv.txt", strings.Repeat("a", 2*1024*1024))
		req := httptest.NewRequest(http.MethodPost, "/v1/pessoas/p-1/cv", body)
		req.Header.Set("Content-Type", ctype)
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func Test_EmailWebhookHandler(t *testing.T) {
	cfg := config.Config{WebhookSecret: "segredo"}
	payload := []byte(`{"remetente":"gestor@cliente.com","assunto":"Feedback","corpo":"Consultor aprovado."}`)

	t.Run("valid signature enqueues", func(t *testing.T) {
		emails := new(mocks.MockEmailQueueRepository)
		emails.On("Enqueue", mock.Anything, mock.MatchedBy(func(i domain.EmailQueueItem) bool {
			return i.Remetente == "gestor@cliente.com" && !i.RecebidoEm.IsZero()
		})).Return("e-1", nil)

		s := &Server{Cfg: cfg, EmailQueue: emails}
		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/email", bytes.NewReader(payload))
		req.Header.Set(SignatureHeader, Sign("segredo", payload))
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)
		emails.AssertExpectations(t)
	})

	t.Run("wrong signature is 401", func(t *testing.T) {
		s := &Server{Cfg: cfg, EmailQueue: new(mocks.MockEmailQueueRepository)}
		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/email", bytes.NewReader(payload))
		req.Header.Set(SignatureHeader, Sign("outro-segredo", payload))
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing signature is 401", func(t *testing.T) {
		s := &Server{Cfg: cfg, EmailQueue: new(mocks.MockEmailQueueRepository)}
		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/email", bytes.NewReader(payload))
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unconfigured secret is 500", func(t *testing.T) {
		s := &Server{Cfg: config.Config{}, EmailQueue: new(mocks.MockEmailQueueRepository)}
		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/email", bytes.NewReader(payload))
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func Test_ReadyzHandler(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		ok := func(context.Context) error { return nil }
		s := &Server{DBCheck: ok, RedisCheck: ok, BrokerCheck: ok}
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failing dependency is 503 and named", func(t *testing.T) {
		ok := func(context.Context) error { return nil }
		s := &Server{
			DBCheck:     func(context.Context) error { return errors.New("down") },
			RedisCheck:  ok,
			BrokerCheck: ok,
		}
		rec := httptest.NewRecorder()
		testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "db")
	})
}

func Test_writeError_StatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidArgument, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrConflict, http.StatusConflict, "CONFLICT"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{domain.ErrProvider, http.StatusBadGateway, "PROVIDER_ERROR"},
		{domain.ErrExtraction, http.StatusBadGateway, "EXTRACTION_ERROR"},
		{domain.ErrValidation, http.StatusBadGateway, "VALIDATION_ERROR"},
		{domain.ErrConfiguration, http.StatusInternalServerError, "CONFIGURATION"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, nil, tt.err, nil)
		assert.Equal(t, tt.status, rec.Code, tt.code)
		assert.Contains(t, rec.Body.String(), tt.code)
	}
}
