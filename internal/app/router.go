// Package app wires the HTTP router and the readiness checks of the server
// process.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raisa-rms/raisa-backend/internal/adapter/httpserver"
	"github.com/raisa-rms/raisa-backend/internal/adapter/observability"
	"github.com/raisa-rms/raisa-backend/internal/config"
)

// ParseOrigins splits a comma-separated origin list, trimming spaces. Empty
// input means all origins.
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middleware and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(120 * time.Second))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Mutating endpoints are rate limited per client IP.
	r.Group(func(wr chi.Router) {
		wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))
		wr.Post("/v1/reports/analyze", srv.AnalyzeHandler())
		wr.Post("/v1/matches", srv.MatchCreateHandler())
		wr.Post("/v1/matches/{id}/status", srv.MatchStatusHandler())
		wr.Post("/v1/matches/{id}/send", srv.MatchSendHandler())
		wr.Post("/v1/vagas/{id}/priority", srv.VagaPriorityHandler())
		wr.Post("/v1/pessoas", srv.PessoaCreateHandler())
		wr.Post("/v1/pessoas/{id}/cv", srv.UploadCVHandler())
		wr.Post("/v1/pessoas/search", srv.PessoaSearchHandler())
		wr.Post("/v1/webhooks/email", srv.EmailWebhookHandler())
	})

	// Read-only endpoints.
	r.Get("/v1/analyses/{id}", srv.AnalysisResultHandler())
	r.Get("/v1/vagas/{id}/matches", srv.VagaMatchesHandler())
	r.Get("/v1/pessoas/{id}", srv.PessoaGetHandler())
	r.Get("/v1/dashboard", srv.DashboardHandler())

	// Health and metrics.
	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })

	return httpserver.SecurityHeaders(r)
}
