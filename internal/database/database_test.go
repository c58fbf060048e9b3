package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jjm-manufacturing/core1-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "core1",
		Password: "pw",
		DBName:   "core1",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5433 user=core1 password=pw dbname=core1 sslmode=disable", BuildDSN(cfg))

	cfg.DatabaseURL = "postgres://u:p@host:5432/other"
	assert.Equal(t, "postgres://u:p@host:5432/other", BuildDSN(cfg))
}

func TestNewPoolConfig_AppliesSizing(t *testing.T) {
	cfg := config.DatabaseConfig{
		DatabaseURL:     "postgres://u:p@localhost:5432/core1",
		MaxOpenConns:    12,
		MaxIdleConns:    3,
		ConnMaxLifetime: "10m",
		ConnMaxIdleTime: "invalid-duration",
	}

	poolConfig, err := NewPoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(12), poolConfig.MaxConns)
	assert.Equal(t, int32(3), poolConfig.MinConns)
	assert.Equal(t, 10*time.Minute, poolConfig.MaxConnLifetime)
}

func TestNewPoolConfig_InvalidURL(t *testing.T) {
	_, err := NewPoolConfig(config.DatabaseConfig{DatabaseURL: "postgres://%zz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database config")
}

func TestPostgresDB_NilPool(t *testing.T) {
	db := &PostgresDB{}
	assert.NotPanics(t, db.Close)
	assert.Error(t, db.HealthCheck(context.Background()))
}

func TestRedisClient_NilClient(t *testing.T) {
	client := &RedisClient{}
	assert.NotPanics(t, client.Close)

	err := client.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis client not initialized")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: ErrNotFound},
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, want: ErrConflict},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, want: ErrInvalidReference},
		{name: "wrapped unique", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), want: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "op:")
		})
	}

	other := errors.New("boom")
	err := classify("op", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, classify("op", nil))
}

func TestRequireAffected(t *testing.T) {
	assert.ErrorIs(t, requireAffected("delete", pgconn.NewCommandTag("DELETE 0")), ErrNotFound)
	assert.NoError(t, requireAffected("delete", pgconn.NewCommandTag("DELETE 1")))
}
