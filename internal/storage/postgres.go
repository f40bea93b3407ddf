package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores items in the client_storage table, one row per
// (namespace, key). The namespace isolates consoles sharing a database.
type Postgres struct {
	pool      *pgxpool.Pool
	namespace string
}

func NewPostgres(pool *pgxpool.Pool, namespace string) *Postgres {
	if namespace == "" {
		namespace = "default"
	}
	return &Postgres{pool: pool, namespace: namespace}
}

func (p *Postgres) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM client_storage WHERE namespace = $1 AND key = $2`,
		p.namespace, key).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get storage item: %w", err)
	}
	return value, true, nil
}

func (p *Postgres) SetItem(ctx context.Context, key string, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	_, err := p.pool.Exec(ctx,
		`INSERT INTO client_storage (namespace, key, value, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		p.namespace, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set storage item: %w", err)
	}
	return nil
}

func (p *Postgres) RemoveItem(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM client_storage WHERE namespace = $1 AND key = $2`,
		p.namespace, key)
	if err != nil {
		return fmt.Errorf("remove storage item: %w", err)
	}
	return nil
}
