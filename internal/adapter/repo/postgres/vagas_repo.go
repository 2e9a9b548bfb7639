package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// VagaRepo persists job requisitions and their priority scores.
type VagaRepo struct{ Pool PgxPool }

// NewVagaRepo constructs a VagaRepo with the given pool.
func NewVagaRepo(p PgxPool) *VagaRepo { return &VagaRepo{Pool: p} }

// Get loads a vaga by id.
func (r *VagaRepo) Get(ctx domain.Context, id string) (domain.Vaga, error) {
	tracer := otel.Tracer("repo.vagas")
	ctx, span := tracer.Start(ctx, "vagas.Get")
	defer span.End()
	q := `SELECT id, titulo, cliente, cliente_vip, stack_requerida, COALESCE(senioridade,''), faturamento_estimado, data_limite, aberta_em, status FROM vagas WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var v domain.Vaga
	if err := row.Scan(&v.ID, &v.Titulo, &v.Cliente, &v.ClienteVIP, &v.StackRequerida, &v.Senioridade, &v.FaturamentoEstimado, &v.DataLimite, &v.AbertaEm, &v.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vaga{}, fmt.Errorf("op=vaga.get: %w", domain.ErrNotFound)
		}
		return domain.Vaga{}, fmt.Errorf("op=vaga.get: %w", err)
	}
	return v, nil
}

// ReplacePriority stores a newly computed priority, fully replacing any
// previous row for the vaga.
func (r *VagaRepo) ReplacePriority(ctx domain.Context, p domain.JobPriorityScore) error {
	tracer := otel.Tracer("repo.vagas")
	ctx, span := tracer.Start(ctx, "vagas.ReplacePriority")
	defer span.End()
	fatores, err := json.Marshal(p.Fatores)
	if err != nil {
		return fmt.Errorf("op=vaga.replace_priority: %w", err)
	}
	q := `INSERT INTO vaga_priority_scores (vaga_id, score, tier, sla_dias, fatores, fonte, computed_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7)
	ON CONFLICT (vaga_id)
	DO UPDATE SET score=EXCLUDED.score, tier=EXCLUDED.tier, sla_dias=EXCLUDED.sla_dias, fatores=EXCLUDED.fatores, fonte=EXCLUDED.fonte, computed_at=EXCLUDED.computed_at`
	if _, err := r.Pool.Exec(ctx, q, p.VagaID, p.Score, p.Tier, p.SLADias, fatores, p.Fonte, p.ComputedAt); err != nil {
		return fmt.Errorf("op=vaga.replace_priority: %w", err)
	}
	return nil
}

// GetPriority loads the current priority of a vaga.
func (r *VagaRepo) GetPriority(ctx domain.Context, vagaID string) (domain.JobPriorityScore, error) {
	tracer := otel.Tracer("repo.vagas")
	ctx, span := tracer.Start(ctx, "vagas.GetPriority")
	defer span.End()
	q := `SELECT vaga_id, score, tier, sla_dias, fatores, fonte, computed_at FROM vaga_priority_scores WHERE vaga_id=$1`
	row := r.Pool.QueryRow(ctx, q, vagaID)
	var p domain.JobPriorityScore
	var fatores []byte
	if err := row.Scan(&p.VagaID, &p.Score, &p.Tier, &p.SLADias, &fatores, &p.Fonte, &p.ComputedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.JobPriorityScore{}, fmt.Errorf("op=vaga.get_priority: %w", domain.ErrNotFound)
		}
		return domain.JobPriorityScore{}, fmt.Errorf("op=vaga.get_priority: %w", err)
	}
	if err := json.Unmarshal(fatores, &p.Fatores); err != nil {
		return domain.JobPriorityScore{}, fmt.Errorf("op=vaga.get_priority: %w", err)
	}
	return p, nil
}

// CountOpen returns the number of open vagas, used by the dashboard.
func (r *VagaRepo) CountOpen(ctx domain.Context) (int64, error) {
	tracer := otel.Tracer("repo.vagas")
	ctx, span := tracer.Start(ctx, "vagas.CountOpen")
	defer span.End()
	var n int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM vagas WHERE status='aberta'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("op=vaga.count_open: %w", err)
	}
	return n, nil
}
