package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// EmailQueueRepo stores inbound emails awaiting classification.
type EmailQueueRepo struct{ Pool PgxPool }

// NewEmailQueueRepo constructs an EmailQueueRepo with the given pool.
func NewEmailQueueRepo(p PgxPool) *EmailQueueRepo { return &EmailQueueRepo{Pool: p} }

// Enqueue inserts an inbound email delivered by the signed webhook.
func (r *EmailQueueRepo) Enqueue(ctx domain.Context, item domain.EmailQueueItem) (string, error) {
	tracer := otel.Tracer("repo.email_queue")
	ctx, span := tracer.Start(ctx, "email_queue.Enqueue")
	defer span.End()
	id := item.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO email_classification_queue (id, remetente, assunto, corpo, recebido_em, created_at) VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.Pool.Exec(ctx, q, id, item.Remetente, item.Assunto, item.Corpo, item.RecebidoEm, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=email_queue.enqueue: %w", err)
	}
	return id, nil
}
