package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"gita-guru/internal/domain"
)

// ErrNotFound indica que no existe perfil para el id pedido.
var ErrNotFound = errors.New("profile not found")

// ProfileRepository define el contrato de persistencia para perfiles de usuario.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	// CreateIfNotExists es idempotente: si el perfil ya existe lo devuelve sin tocarlo.
	CreateIfNotExists(ctx context.Context, id, name, email string) (domain.Profile, error)
}

// pgQuerier es el subconjunto de *pgxpool.Pool que usa el repositorio.
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgProfileRepository implementa ProfileRepository usando pgxpool.
type PgProfileRepository struct {
	pool  pgQuerier
	table string
}

func NewPgProfileRepository(pool *pgxpool.Pool, table string) *PgProfileRepository {
	return newPgProfileRepository(pool, table)
}

func newPgProfileRepository(q pgQuerier, table string) *PgProfileRepository {
	if table == "" {
		table = "users"
	}
	return &PgProfileRepository{pool: q, table: pgx.Identifier{table}.Sanitize()}
}

func (r *PgProfileRepository) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	query := `
		SELECT id, name, email, created_at
		FROM ` + r.table + `
		WHERE id = $1
	`
	var (
		p         domain.Profile
		name      pgtype.Text
		email     pgtype.Text
		createdAt pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &name, &email, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	// filas cargadas a mano pueden traer NULL en estas columnas
	p.Name = name.String
	p.Email = email.String
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time.UTC()
	}
	return p, nil
}

func (r *PgProfileRepository) CreateIfNotExists(ctx context.Context, id, name, email string) (domain.Profile, error) {
	query := `
		INSERT INTO ` + r.table + ` (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query, id, name, email, time.Now().UTC()); err != nil {
		return domain.Profile{}, err
	}
	return r.GetByID(ctx, id)
}
