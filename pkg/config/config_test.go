package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.True(t, cfg.Server.SeedDemoData)
	assert.False(t, cfg.Database.UsePostgres(), "no database configured by default")
}

func TestDatabaseSelection(t *testing.T) {
	t.Run("url wins", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://app@db/bachatbox")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Database.UsePostgres())
		assert.Equal(t, "postgres://app@db/bachatbox", cfg.Database.DSN())
	})

	t.Run("discrete settings", func(t *testing.T) {
		t.Setenv("POSTGRES_HOST", "db.internal")
		t.Setenv("POSTGRES_PORT", "5469")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Database.UsePostgres())
		assert.Equal(t,
			"host=db.internal port=5469 user=postgres password=postgres dbname=bachatbox sslmode=disable",
			cfg.Database.DSN())
	})
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("SEED_DEMO_DATA", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.False(t, cfg.Server.SeedDemoData)
}
