package usecase

import (
	"log/slog"

	"github.com/raisa-rms/raisa-backend/internal/adapter/observability"
	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// Dashboard aggregates the numbers the operations screen shows.
type Dashboard struct {
	ConsultantsByRisk map[int]int64                `json:"consultants_by_risk"`
	VagasAbertas      int64                        `json:"vagas_abertas"`
	MatchesByStatus   map[domain.MatchStatus]int64 `json:"matches_by_status"`
	RecentSends       []DashboardSend              `json:"recent_sends"`
}

// DashboardSend is a recent candidature send enriched with display names.
type DashboardSend struct {
	Send       domain.CandidatureSend `json:"send"`
	PessoaNome string                 `json:"pessoa_nome"`
	VagaTitulo string                 `json:"vaga_titulo"`
}

// DashboardService builds the operations dashboard.
type DashboardService struct {
	Consultants domain.ConsultantRepository
	Vagas       domain.VagaRepository
	Matches     domain.MatchRepository
	Sends       domain.SendRepository
	Pessoas     domain.PessoaRepository
}

// NewDashboardService constructs a DashboardService with its dependencies.
func NewDashboardService(c domain.ConsultantRepository, v domain.VagaRepository, m domain.MatchRepository, s domain.SendRepository, p domain.PessoaRepository) DashboardService {
	return DashboardService{Consultants: c, Vagas: v, Matches: m, Sends: s, Pessoas: p}
}

// Build assembles the dashboard. The four aggregate queries must succeed;
// per-send name lookups are best effort and a failed one only drops the name,
// never the response.
func (s DashboardService) Build(ctx domain.Context, recentLimit int) (Dashboard, error) {
	byRisk, err := s.Consultants.CountByRiskScore(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	open, err := s.Vagas.CountOpen(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	byStatus, err := s.Matches.CountByStatus(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	sends, err := s.Sends.ListRecent(ctx, recentLimit)
	if err != nil {
		return Dashboard{}, err
	}

	logger := observability.LoggerFromContext(ctx)
	recent := make([]DashboardSend, 0, len(sends))
	for _, send := range sends {
		item := DashboardSend{Send: send}
		if pessoa, err := s.Pessoas.Get(ctx, send.PessoaID); err != nil {
			logger.Warn("dashboard pessoa lookup failed",
				slog.String("pessoa_id", send.PessoaID), slog.Any("error", err))
		} else {
			item.PessoaNome = pessoa.Nome
		}
		if vaga, err := s.Vagas.Get(ctx, send.VagaID); err != nil {
			logger.Warn("dashboard vaga lookup failed",
				slog.String("vaga_id", send.VagaID), slog.Any("error", err))
		} else {
			item.VagaTitulo = vaga.Titulo
		}
		recent = append(recent, item)
	}

	return Dashboard{
		ConsultantsByRisk: byRisk,
		VagasAbertas:      open,
		MatchesByStatus:   byStatus,
		RecentSends:       recent,
	}, nil
}
