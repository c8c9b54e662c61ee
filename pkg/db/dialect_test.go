package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDialect(t *testing.T) {
	for _, typ := range []string{TypePostgres, TypeMySQL, TypeSQLite} {
		t.Run(typ, func(t *testing.T) {
			d, err := Dialect(Config{Type: typ, Name: "products_db"})
			require.NoError(t, err)
			assert.NotNil(t, d)
		})
	}

	_, err := Dialect(Config{Type: "oracle"})
	require.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{Host: "localhost", Port: "5432", User: "postgres", Password: "root", Name: "products_db"}

	assert.Equal(t,
		"host=localhost user=postgres password=root dbname=postgres port=5432 sslmode=disable TimeZone=UTC",
		PostgresDSN(cfg, "postgres"),
	)

	cfg.SSLMode = "require"
	assert.Contains(t, PostgresDSN(cfg, cfg.Name), "dbname=products_db")
	assert.Contains(t, PostgresDSN(cfg, cfg.Name), "sslmode=require")
}

func TestEnsureDatabaseSkipsOtherDialects(t *testing.T) {
	created, err := EnsureDatabase(context.Background(), Config{Type: TypeSQLite, Name: "catalog"})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureDatabaseRequiresName(t *testing.T) {
	_, err := EnsureDatabase(context.Background(), Config{Type: TypePostgres})
	require.Error(t, err)
}

func TestRetry(t *testing.T) {
	log := zap.NewNop()
	boom := errors.New("boom")

	calls := 0
	err := retry(Config{ConnectRetries: 3}, log, "open", func() error {
		calls++
		if calls < 3 {
			return boom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retry(Config{ConnectRetries: 2}, log, "open", func() error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)

	calls = 0
	err = retry(Config{}, log, "open", func() error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
