package config

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	prev := AppFs
	AppFs = fs
	t.Cleanup(func() { AppFs = prev })
	return fs
}

func TestLoadConfigDefaults(t *testing.T) {
	useMemFs(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/scott")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Provider)
	assert.Equal(t, "postgres://localhost/scott", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Database.MaxConnections)
	assert.Equal(t, 300, cfg.Database.CatalogTTL)
	assert.Equal(t, "saved-queries.json", cfg.SavedQueries.Path)
	assert.Equal(t, "filesystem", cfg.SavedQueries.Storage)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "noop", cfg.Telemetry.Type)
	assert.Equal(t, "querydeck", cfg.Telemetry.Namespace)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.File)
}

func TestLoadConfigFile(t *testing.T) {
	fs := useMemFs(t)
	content := `
database:
  provider: mysql
  url: scott:tiger@tcp(localhost:3306)/scott
  max_connections: 4
  catalog_ttl: 0
saved_queries:
  path: /data/queries.json
  storage: memory
server:
  addr: 127.0.0.1:9000
  rate_limit: 5
telemetry:
  type: prometheus
  namespace: reports
debug: true
log_format: JSON
`
	require.NoError(t, afero.WriteFile(fs, "/etc/querydeck.yaml", []byte(content), 0644))

	cfg, err := LoadConfig("/etc/querydeck.yaml")
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Provider)
	assert.Equal(t, 4, cfg.Database.MaxConnections)
	assert.Equal(t, 0, cfg.Database.CatalogTTL)
	assert.Equal(t, "/data/queries.json", cfg.SavedQueries.Path)
	assert.Equal(t, "memory", cfg.SavedQueries.Storage)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5.0, cfg.Server.RateLimit)
	assert.Equal(t, "prometheus", cfg.Telemetry.Type)
	assert.Equal(t, "reports", cfg.Telemetry.Namespace)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/etc/querydeck.yaml", cfg.File)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	useMemFs(t)
	_, err := LoadConfig("/nope.yaml")
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	useMemFs(t)
	t.Setenv("QUERYDECK_DATABASE_URL", "file:test.db")
	t.Setenv("QUERYDECK_TELEMETRY_TYPE", "prometheus")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "file:test.db", cfg.Database.URL)
	assert.Equal(t, "sqlite", cfg.Database.Provider)
	assert.Equal(t, "prometheus", cfg.Telemetry.Type)
}

func TestDotEnv(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, ".env", []byte("QD_TEST_A=from-env\nQD_TEST_B=from-env\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, ".env.local", []byte("QD_TEST_B=from-local\n"), 0644))
	t.Setenv("QD_TEST_A", "preset")
	t.Setenv("QD_TEST_B", "")
	os.Unsetenv("QD_TEST_B")

	_, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "preset", os.Getenv("QD_TEST_A"))
	assert.Equal(t, "from-local", os.Getenv("QD_TEST_B"))
}

func TestInferProvider(t *testing.T) {
	tests := map[string]string{
		"postgresql://u@h/db":   "postgres",
		"postgres://u@h/db":     "postgres",
		"mysql://u@h/db":        "mysql",
		"u:p@tcp(h:3306)/db":    "mysql",
		"file:scott.db?cache=1": "sqlite",
		"./scott.sqlite":        "sqlite",
		"oracle://h/xe":         "",
	}
	for url, want := range tests {
		assert.Equal(t, want, InferProvider(url), url)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	useMemFs(t)
	cfg := &Config{
		Database:     DatabaseConfig{Provider: "postgres", URL: "postgres://h/db", MaxConnections: 3},
		SavedQueries: SavedQueriesConfig{Path: "q.json", Storage: "filesystem"},
		Server:       ServerConfig{Addr: ":1", RateLimit: 1, Burst: 2},
		Telemetry:    TelemetryConfig{Type: "noop", Namespace: "qd"},
		LogFormat:    "json",
	}
	require.NoError(t, SaveConfig(cfg, "/cfg/.querydeck.yaml"))

	loaded, err := LoadConfig("/cfg/.querydeck.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg.Database, loaded.Database)
	assert.Equal(t, cfg.Server, loaded.Server)
	assert.Equal(t, cfg.Telemetry, loaded.Telemetry)
	assert.Equal(t, "json", loaded.LogFormat)
}
