package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// ConsultantRepo persists consultants and their latest risk snapshot.
type ConsultantRepo struct{ Pool PgxPool }

// NewConsultantRepo constructs a ConsultantRepo with the given pool.
func NewConsultantRepo(p PgxPool) *ConsultantRepo { return &ConsultantRepo{Pool: p} }

const consultantColumns = `id, nome, cliente, gestor,
	COALESCE(risk_score, 0), COALESCE(risk_mes, 0), COALESCE(risk_resumo, ''),
	COALESCE(risk_padroes_negativos, ''), COALESCE(risk_alertas_preditivos, ''),
	COALESCE(risk_recomendacoes, ''), COALESCE(risk_detalhe, ''),
	COALESCE(risk_atualizado_em, 'epoch'::timestamptz), created_at`

func scanConsultant(row pgx.Row) (domain.Consultant, error) {
	var c domain.Consultant
	err := row.Scan(&c.ID, &c.Nome, &c.Cliente, &c.Gestor,
		&c.RiskScore, &c.RiskMes, &c.RiskResumo,
		&c.RiskPadroesNegativos, &c.RiskAlertasPreditivos,
		&c.RiskRecomendacoes, &c.RiskDetalhe,
		&c.RiskAtualizadoEm, &c.CreatedAt)
	return c, err
}

// Get loads a consultant by id.
func (r *ConsultantRepo) Get(ctx domain.Context, id string) (domain.Consultant, error) {
	tracer := otel.Tracer("repo.consultants")
	ctx, span := tracer.Start(ctx, "consultants.Get")
	defer span.End()
	q := `SELECT ` + consultantColumns + ` FROM consultants WHERE id=$1`
	c, err := scanConsultant(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Consultant{}, fmt.Errorf("op=consultant.get: %w", domain.ErrNotFound)
		}
		return domain.Consultant{}, fmt.Errorf("op=consultant.get: %w", err)
	}
	return c, nil
}

// FindByNomeCliente locates a consultant by the `Nome | Cliente` pair carried
// in a report segment header. The lookup is case-insensitive on both fields.
func (r *ConsultantRepo) FindByNomeCliente(ctx domain.Context, nome, cliente string) (domain.Consultant, error) {
	tracer := otel.Tracer("repo.consultants")
	ctx, span := tracer.Start(ctx, "consultants.FindByNomeCliente")
	defer span.End()
	q := `SELECT ` + consultantColumns + ` FROM consultants WHERE lower(nome)=lower($1) AND lower(cliente)=lower($2) LIMIT 1`
	c, err := scanConsultant(r.Pool.QueryRow(ctx, q, nome, cliente))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Consultant{}, fmt.Errorf("op=consultant.find: %w", domain.ErrNotFound)
		}
		return domain.Consultant{}, fmt.Errorf("op=consultant.find: %w", err)
	}
	return c, nil
}

// ApplyRiskSnapshot overwrites the consultant's latest risk fields. Each new
// report analysis replaces the previous snapshot; history is not kept here.
func (r *ConsultantRepo) ApplyRiskSnapshot(ctx domain.Context, consultantID string, a domain.RiskAssessment) error {
	tracer := otel.Tracer("repo.consultants")
	ctx, span := tracer.Start(ctx, "consultants.ApplyRiskSnapshot")
	defer span.End()
	q := `UPDATE consultants SET
		risk_score=$2, risk_mes=$3, risk_resumo=$4, risk_padroes_negativos=$5,
		risk_alertas_preditivos=$6, risk_recomendacoes=$7, risk_detalhe=$8,
		risk_atualizado_em=$9
	WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, consultantID,
		a.Score, a.Mes, a.Resumo, a.PadroesNegativos,
		a.AlertasPreditivos, a.Recomendacoes, a.Detalhe, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=consultant.apply_risk: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=consultant.apply_risk: %w", domain.ErrNotFound)
	}
	return nil
}

// CountByRiskScore returns the number of consultants at each risk score,
// used by the dashboard aggregation.
func (r *ConsultantRepo) CountByRiskScore(ctx domain.Context) (map[int]int64, error) {
	tracer := otel.Tracer("repo.consultants")
	ctx, span := tracer.Start(ctx, "consultants.CountByRiskScore")
	defer span.End()
	q := `SELECT risk_score, COUNT(*) FROM consultants WHERE risk_score BETWEEN 1 AND 5 GROUP BY risk_score`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("op=consultant.count_by_risk: %w", err)
	}
	defer rows.Close()
	out := make(map[int]int64)
	for rows.Next() {
		var score int
		var count int64
		if err := rows.Scan(&score, &count); err != nil {
			return nil, fmt.Errorf("op=consultant.count_by_risk: %w", err)
		}
		out[score] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=consultant.count_by_risk: %w", err)
	}
	return out, nil
}
