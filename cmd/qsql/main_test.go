package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/qsql/source"
)

func parseCommand(t *testing.T, name string, args ...string) *config {
	t.Helper()

	root := newRootCmd()
	cmd, _, err := root.Find([]string{name})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags(args))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := parseCommand(t, "query")

	assert.Equal(t, "auto", cfg.Mode)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 16, cfg.MaxUnits)
	assert.Equal(t, 40, cfg.Limit)
	assert.Equal(t, int64(64<<20), cfg.CacheBytes)
	assert.True(t, cfg.Minio.Secure)
}

func TestLoadConfigPrecedence(t *testing.T) {
	t.Setenv("QSQL_MODE", "sparse")
	t.Setenv("QSQL_WORKERS", "2")
	t.Setenv("QSQL_MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("QSQL_RESOURCES_MEMORY_LIMIT", "1024")
	t.Setenv("QSQL_RESOURCES_CACHE_LIMIT", "2048")

	cfg := parseCommand(t, "query", "--workers", "6")

	assert.Equal(t, "sparse", cfg.Mode)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, "localhost:9000", cfg.Minio.Endpoint)
	assert.Equal(t, int64(1024), cfg.Resources.MemoryLimitBytes)
	assert.Equal(t, int64(2048), cfg.Resources.CacheLimitBytes)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qsql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: deterministic
limit: 5
resources:
  max-queries: 3
minio:
  secure: false
`), 0o600))

	cfg := parseCommand(t, "shell", "--config", path)

	assert.Equal(t, "deterministic", cfg.Mode)
	assert.Equal(t, 5, cfg.Limit)
	assert.Equal(t, int64(3), cfg.Resources.MaxConcurrentQueries)
	assert.False(t, cfg.Minio.Secure)
}

func TestEngineOptions(t *testing.T) {
	cfg := parseCommand(t, "query", "--mode", "statevector", "--log-level", "debug")
	opts, rc, err := cfg.engineOptions(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, opts)
	assert.NotNil(t, rc)

	cfg.Mode = "quantum"
	_, _, err = cfg.engineOptions(nil)
	assert.Error(t, err)

	cfg.Mode = "auto"
	cfg.LogLevel = "loud"
	_, _, err = cfg.engineOptions(nil)
	assert.Error(t, err)
}

func TestResolver(t *testing.T) {
	cfg := parseCommand(t, "query")
	resolve := newResolver(cfg, nil)
	ctx := context.Background()

	store, key, err := resolve(ctx, source.Location{Scheme: source.SchemeFile, Key: "data/p.csv"})
	require.NoError(t, err)
	assert.IsType(t, &source.LocalStore{}, store)
	assert.Equal(t, "data/p.csv", key)

	_, _, err = resolve(ctx, source.Location{Scheme: source.SchemeMinio, Bucket: "b", Key: "k"})
	assert.ErrorContains(t, err, "endpoint not configured")

	_, _, err = resolve(ctx, source.Location{Scheme: "ftp", Bucket: "b", Key: "k"})
	assert.ErrorIs(t, err, source.ErrInvalidURI)
}

func TestRunQueryExport(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "patients.csv")
	require.NoError(t, os.WriteFile(data, []byte("name,bp\nP1,120\nP2,110\nP3,95\nP4,140\n"), 0o600))

	cfg := parseCommand(t, "query", "--mode", "deterministic")
	opts, rc, err := cfg.engineOptions(nil)
	require.NoError(t, err)
	rt := &runtime{cfg: cfg, opts: opts, rc: rc, resolve: newResolver(cfg, rc)}

	out := filepath.Join(dir, "scores.csv.zst")
	require.NoError(t, runQuery(context.Background(), rt, data, "bp > 115", out, ""))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
