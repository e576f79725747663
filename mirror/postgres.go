package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres mirrors documents into one jsonb table per collection.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres builds a Postgres-backed mirror over an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the mirror tables if they are missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	for _, collection := range []Collection{CollectionLeads, CollectionTasks, CollectionUsers, CollectionChannels} {
		ddl := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS mirror_%s (
				id TEXT PRIMARY KEY,
				doc JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, collection)
		if _, err := p.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("mirror: ensure schema for %s: %w", collection, err)
		}
	}
	return nil
}

func (p *Postgres) Insert(ctx context.Context, collection Collection, id string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("mirror: marshal %s/%s: %w", collection, id, err)
	}
	query := fmt.Sprintf(`INSERT INTO mirror_%s (id, doc) VALUES ($1, $2::jsonb) ON CONFLICT (id) DO NOTHING`, collection)
	if _, err := p.pool.Exec(ctx, query, id, string(payload)); err != nil {
		return fmt.Errorf("mirror: insert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, collection Collection, id string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("mirror: marshal %s/%s: %w", collection, id, err)
	}
	query := fmt.Sprintf(`UPDATE mirror_%s SET doc = $2::jsonb, updated_at = now() WHERE id = $1`, collection)
	if _, err := p.pool.Exec(ctx, query, id, string(payload)); err != nil {
		return fmt.Errorf("mirror: update %s/%s: %w", collection, id, err)
	}
	return nil
}
