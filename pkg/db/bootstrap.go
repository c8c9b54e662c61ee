package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const adminDatabase = "postgres"

// EnsureDatabase creates cfg.Name on the Postgres server when it does not exist yet.
// It reports whether the database was created by this call.
func EnsureDatabase(ctx context.Context, cfg Config) (bool, error) {
	if cfg.Type != TypePostgres {
		return false, nil
	}
	if cfg.Name == "" {
		return false, fmt.Errorf("database name is required")
	}

	conn, err := pgx.Connect(ctx, PostgresDSN(cfg, adminDatabase))
	if err != nil {
		return false, fmt.Errorf("connect admin database: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`,
		cfg.Name,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("lookup database: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{cfg.Name}.Sanitize()); err != nil {
		// another instance won the race
		if isDuplicateDatabaseErr(err) {
			return false, nil
		}
		return false, fmt.Errorf("create database: %w", err)
	}
	return true, nil
}
