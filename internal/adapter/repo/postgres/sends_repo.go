package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// SendRepo records candidature presentation emails.
type SendRepo struct{ Pool PgxPool }

// NewSendRepo constructs a SendRepo with the given pool.
func NewSendRepo(p PgxPool) *SendRepo { return &SendRepo{Pool: p} }

// Create inserts a send record and returns its id (generates one if empty).
// The record is written before the email leaves; a mail failure afterwards
// leaves the row without a mensagem_id.
func (r *SendRepo) Create(ctx domain.Context, s domain.CandidatureSend) (string, error) {
	tracer := otel.Tracer("repo.sends")
	ctx, span := tracer.Start(ctx, "sends.Create")
	defer span.End()
	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO candidature_sends (id, match_id, pessoa_id, vaga_id, destinatario, assunto, mensagem_id, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.Pool.Exec(ctx, q, id, s.MatchID, s.PessoaID, s.VagaID, s.Destinatario, s.Assunto, s.MensagemID, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=send.create: %w", err)
	}
	return id, nil
}

// SetMensagemID records the provider message id after a successful send.
func (r *SendRepo) SetMensagemID(ctx domain.Context, id, mensagemID string) error {
	tracer := otel.Tracer("repo.sends")
	ctx, span := tracer.Start(ctx, "sends.SetMensagemID")
	defer span.End()
	q := `UPDATE candidature_sends SET mensagem_id=$2 WHERE id=$1`
	if _, err := r.Pool.Exec(ctx, q, id, mensagemID); err != nil {
		return fmt.Errorf("op=send.set_mensagem_id: %w", err)
	}
	return nil
}

// ListRecent returns the most recent send records, newest first.
func (r *SendRepo) ListRecent(ctx domain.Context, limit int) ([]domain.CandidatureSend, error) {
	tracer := otel.Tracer("repo.sends")
	ctx, span := tracer.Start(ctx, "sends.ListRecent")
	defer span.End()
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT id, match_id, pessoa_id, vaga_id, destinatario, assunto, COALESCE(mensagem_id,''), created_at
	FROM candidature_sends ORDER BY created_at DESC LIMIT $1`
	rows, err := r.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("op=send.list_recent: %w", err)
	}
	defer rows.Close()
	var out []domain.CandidatureSend
	for rows.Next() {
		var s domain.CandidatureSend
		if err := rows.Scan(&s.ID, &s.MatchID, &s.PessoaID, &s.VagaID, &s.Destinatario, &s.Assunto, &s.MensagemID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=send.list_recent: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=send.list_recent: %w", err)
	}
	return out, nil
}
