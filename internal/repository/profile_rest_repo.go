package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gita-guru/internal/domain"
	"gita-guru/internal/supabase"
)

// restClient es el subconjunto de supabase.Client que usa el repositorio.
type restClient interface {
	Select(ctx context.Context, table string, query url.Values, out any) error
	Insert(ctx context.Context, table string, rows any, prefer string, out any) error
}

// RestProfileRepository guarda perfiles via PostgREST con el cliente service role.
type RestProfileRepository struct {
	client restClient
	table  string
}

func NewRestProfileRepository(client restClient, table string) *RestProfileRepository {
	if table == "" {
		table = "users"
	}
	return &RestProfileRepository{client: client, table: table}
}

type profileRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (row profileRow) profile() domain.Profile {
	p := domain.Profile{ID: row.ID, Name: row.Name, Email: row.Email}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, row.CreatedAt); err == nil {
			p.CreatedAt = t.UTC()
			break
		}
	}
	return p
}

func (r *RestProfileRepository) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Profile{}, ErrNotFound
	}
	var rows []profileRow
	query := url.Values{
		"select": []string{"*"},
		"id":     []string{supabase.Eq(id)},
		"limit":  []string{"1"},
	}
	if err := r.client.Select(ctx, r.table, query, &rows); err != nil {
		return domain.Profile{}, fmt.Errorf("select profile: %w", err)
	}
	if len(rows) == 0 {
		return domain.Profile{}, ErrNotFound
	}
	return rows[0].profile(), nil
}

func (r *RestProfileRepository) CreateIfNotExists(ctx context.Context, id, name, email string) (domain.Profile, error) {
	row := profileRow{ID: id, Name: name, Email: email}
	if err := r.client.Insert(ctx, r.table, []profileRow{row}, "resolution=ignore-duplicates,return=minimal", nil); err != nil {
		return domain.Profile{}, fmt.Errorf("insert profile: %w", err)
	}
	return r.GetByID(ctx, id)
}
