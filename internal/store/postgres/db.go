// Package postgres is the configured-mode Remote: projects, tasks and user
// profiles in PostgreSQL, reached through pgx's database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/dmitrijs2005/agentdeck/internal/store/postgres/migrations"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// migrate is a seam for tests.
var migrate = func(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	p, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

// connectTimeout bounds the first connection so an unreachable store host
// does not stall startup.
var connectTimeout = 5 * time.Second

// Open connects to the store at url, authenticating with key, and applies
// the embedded migrations.
func Open(ctx context.Context, url, key string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	cfg.Password = key
	cfg.ConnectTimeout = connectTimeout

	db := stdlib.OpenDB(*cfg)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to store: %w", err)
	}

	if err := migrate(ctx, db, migrations.Migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return db, nil
}
