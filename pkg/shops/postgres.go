// pkg/shops/postgres.go
package shops

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgStore implements Store backed by PostgreSQL.
type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

// NewPostgresStore constructs a PostgreSQL-backed shop store.
func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates the shops table if it does not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS shops (
  id BIGSERIAL PRIMARY KEY,
  shop_domain text UNIQUE NOT NULL,
  access_token text NOT NULL,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
`)
	return err
}

// Put relies on the unique constraint for insert-if-absent: ON CONFLICT
// DO NOTHING closes the race between concurrent installs, then a read
// returns whichever token won. Values are always bound parameters.
func (p *pgStore) Put(ctx context.Context, shop, accessToken string) (string, error) {
	tag, err := p.dbPool.Exec(ctx,
		`INSERT INTO shops(shop_domain, access_token) VALUES ($1, $2) ON CONFLICT (shop_domain) DO NOTHING`,
		shop, accessToken)
	if err != nil {
		return "", err
	}
	if tag.RowsAffected() == 1 {
		return accessToken, nil
	}
	p.log.Debugw("duplicate install ignored", "shop", shop)
	return p.Get(ctx, shop)
}

func (p *pgStore) Get(ctx context.Context, shop string) (string, error) {
	var tok string
	err := p.dbPool.QueryRow(ctx,
		`SELECT access_token FROM shops WHERE shop_domain=$1`, shop).Scan(&tok)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return tok, nil
}
