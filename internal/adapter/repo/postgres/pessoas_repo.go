package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// PessoaRepo persists candidates, their CV profiles and embeddings.
type PessoaRepo struct{ Pool PgxPool }

// NewPessoaRepo constructs a PessoaRepo with the given pool.
func NewPessoaRepo(p PgxPool) *PessoaRepo { return &PessoaRepo{Pool: p} }

const pessoaColumns = `id, nome, COALESCE(email,''), COALESCE(cv_texto,''),
	COALESCE(skills,'{}'), COALESCE(experiencias,'{}'), COALESCE(formacao,'{}'),
	COALESCE(idiomas,'{}'), COALESCE(senioridade,''), COALESCE(resumo,''), created_at`

func scanPessoa(row pgx.Row) (domain.Pessoa, error) {
	var p domain.Pessoa
	err := row.Scan(&p.ID, &p.Nome, &p.Email, &p.CVTexto,
		&p.Skills, &p.Experiencias, &p.Formacao,
		&p.Idiomas, &p.Senioridade, &p.Resumo, &p.CreatedAt)
	return p, err
}

// Create inserts a new pessoa and returns its id (generates one if empty).
func (r *PessoaRepo) Create(ctx domain.Context, p domain.Pessoa) (string, error) {
	tracer := otel.Tracer("repo.pessoas")
	ctx, span := tracer.Start(ctx, "pessoas.Create")
	defer span.End()
	id := p.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO pessoas (id, nome, email, created_at) VALUES ($1,$2,$3,$4)`
	if _, err := r.Pool.Exec(ctx, q, id, p.Nome, p.Email, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("op=pessoa.create: %w", err)
	}
	return id, nil
}

// Get loads a pessoa by id.
func (r *PessoaRepo) Get(ctx domain.Context, id string) (domain.Pessoa, error) {
	tracer := otel.Tracer("repo.pessoas")
	ctx, span := tracer.Start(ctx, "pessoas.Get")
	defer span.End()
	q := `SELECT ` + pessoaColumns + ` FROM pessoas WHERE id=$1`
	p, err := scanPessoa(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Pessoa{}, fmt.Errorf("op=pessoa.get: %w", domain.ErrNotFound)
		}
		return domain.Pessoa{}, fmt.Errorf("op=pessoa.get: %w", err)
	}
	return p, nil
}

// ApplyCVProfile stores the extracted CV text, the validated profile and its
// embedding in one write.
func (r *PessoaRepo) ApplyCVProfile(ctx domain.Context, id, cvText string, profile domain.CVProfile, embedding []float32) error {
	tracer := otel.Tracer("repo.pessoas")
	ctx, span := tracer.Start(ctx, "pessoas.ApplyCVProfile")
	defer span.End()
	q := `UPDATE pessoas SET
		cv_texto=$2, skills=$3, experiencias=$4, formacao=$5, idiomas=$6,
		senioridade=$7, resumo=$8, cv_embedding=$9, updated_at=$10
	WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, cvText,
		profile.Skills, profile.Experiencias, profile.Formacao, profile.Idiomas,
		profile.Senioridade, profile.Resumo, pgvector.NewVector(embedding), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=pessoa.apply_cv: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=pessoa.apply_cv: %w", domain.ErrNotFound)
	}
	return nil
}

// SearchByEmbedding returns the pessoas whose CV embedding is closest to the
// query embedding by cosine distance.
func (r *PessoaRepo) SearchByEmbedding(ctx domain.Context, embedding []float32, limit int) ([]domain.Pessoa, error) {
	tracer := otel.Tracer("repo.pessoas")
	ctx, span := tracer.Start(ctx, "pessoas.SearchByEmbedding")
	defer span.End()
	if limit <= 0 {
		limit = 10
	}
	q := `SELECT ` + pessoaColumns + ` FROM pessoas WHERE cv_embedding IS NOT NULL ORDER BY cv_embedding <=> $1 LIMIT $2`
	rows, err := r.Pool.Query(ctx, q, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("op=pessoa.search: %w", err)
	}
	defer rows.Close()
	var out []domain.Pessoa
	for rows.Next() {
		p, err := scanPessoa(rows)
		if err != nil {
			return nil, fmt.Errorf("op=pessoa.search: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=pessoa.search: %w", err)
	}
	return out, nil
}
