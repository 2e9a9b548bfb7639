package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// MatchRepo persists candidate matches. Matches are append-and-update only;
// discarding is a status, never a delete.
type MatchRepo struct{ Pool PgxPool }

// NewMatchRepo constructs a MatchRepo with the given pool.
func NewMatchRepo(p PgxPool) *MatchRepo { return &MatchRepo{Pool: p} }

const matchColumns = `id, pessoa_id, vaga_id, score, skills_compativeis, skills_faltantes, status, COALESCE(motivo_descarte,''), created_at, updated_at`

func scanMatch(row pgx.Row) (domain.CandidateMatch, error) {
	var m domain.CandidateMatch
	err := row.Scan(&m.ID, &m.PessoaID, &m.VagaID, &m.Score, &m.SkillsCompativeis, &m.SkillsFaltantes, &m.Status, &m.MotivoDescarte, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Create inserts a new match and returns its id (generates one if empty).
func (r *MatchRepo) Create(ctx domain.Context, m domain.CandidateMatch) (string, error) {
	tracer := otel.Tracer("repo.matches")
	ctx, span := tracer.Start(ctx, "matches.Create")
	defer span.End()
	id := m.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO candidate_matches (id, pessoa_id, vaga_id, score, skills_compativeis, skills_faltantes, status, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.Pool.Exec(ctx, q, id, m.PessoaID, m.VagaID, m.Score, m.SkillsCompativeis, m.SkillsFaltantes, m.Status, time.Now().UTC(), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=match.create: %w", err)
	}
	return id, nil
}

// Get loads a match by id.
func (r *MatchRepo) Get(ctx domain.Context, id string) (domain.CandidateMatch, error) {
	tracer := otel.Tracer("repo.matches")
	ctx, span := tracer.Start(ctx, "matches.Get")
	defer span.End()
	q := `SELECT ` + matchColumns + ` FROM candidate_matches WHERE id=$1`
	m, err := scanMatch(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CandidateMatch{}, fmt.Errorf("op=match.get: %w", domain.ErrNotFound)
		}
		return domain.CandidateMatch{}, fmt.Errorf("op=match.get: %w", err)
	}
	return m, nil
}

// UpdateStatus moves a match to a new workflow state. Transition legality is
// the usecase's responsibility; this writes unconditionally.
func (r *MatchRepo) UpdateStatus(ctx domain.Context, id string, status domain.MatchStatus, motivo string) error {
	tracer := otel.Tracer("repo.matches")
	ctx, span := tracer.Start(ctx, "matches.UpdateStatus")
	defer span.End()
	q := `UPDATE candidate_matches SET status=$2, motivo_descarte=$3, updated_at=$4 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, status, motivo, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=match.update_status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=match.update_status: %w", domain.ErrNotFound)
	}
	return nil
}

// ListByVaga returns the matches of a vaga, newest first. With selectableOnly
// the terminal states (descartado, candidatura_criada) are excluded.
func (r *MatchRepo) ListByVaga(ctx domain.Context, vagaID string, selectableOnly bool) ([]domain.CandidateMatch, error) {
	tracer := otel.Tracer("repo.matches")
	ctx, span := tracer.Start(ctx, "matches.ListByVaga")
	defer span.End()
	q := `SELECT ` + matchColumns + ` FROM candidate_matches WHERE vaga_id=$1`
	if selectableOnly {
		q += ` AND status NOT IN ('descartado','candidatura_criada')`
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q, vagaID)
	if err != nil {
		return nil, fmt.Errorf("op=match.list: %w", err)
	}
	defer rows.Close()
	var out []domain.CandidateMatch
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("op=match.list: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=match.list: %w", err)
	}
	return out, nil
}

// CountByStatus returns the number of matches in each workflow state, used
// by the dashboard aggregation.
func (r *MatchRepo) CountByStatus(ctx domain.Context) (map[domain.MatchStatus]int64, error) {
	tracer := otel.Tracer("repo.matches")
	ctx, span := tracer.Start(ctx, "matches.CountByStatus")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT status, COUNT(*) FROM candidate_matches GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("op=match.count_by_status: %w", err)
	}
	defer rows.Close()
	out := make(map[domain.MatchStatus]int64)
	for rows.Next() {
		var status domain.MatchStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("op=match.count_by_status: %w", err)
		}
		out[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=match.count_by_status: %w", err)
	}
	return out, nil
}
