// Package config loads querydeck settings from file, environment and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem config files are read from and written to.
var AppFs = afero.NewOsFs()

const (
	configName = ".querydeck"
	envPrefix  = "QUERYDECK"
)

// Config holds the application configuration
type Config struct {
	Database     DatabaseConfig
	SavedQueries SavedQueriesConfig
	Server       ServerConfig
	Telemetry    TelemetryConfig
	Debug        bool
	LogFormat    string // text or json

	// File is the config file that was read, empty when none was found.
	File string
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Provider       string
	URL            string
	MaxConnections int
	MaxIdleTime    int // seconds
	ConnectTimeout int // seconds
	CatalogTTL     int // seconds a cached column list stays valid, 0 until a query fails
}

// SavedQueriesConfig locates the saved-query collection.
type SavedQueriesConfig struct {
	Path    string
	Storage string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr      string
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
}

// TelemetryConfig selects the telemetry adapter.
type TelemetryConfig struct {
	Type      string
	Namespace string // metric name prefix
}

// LoadConfig loads configuration from various sources.
// An explicit file must exist; otherwise .querydeck.yaml is searched in
// the working directory, the home directory and ~/.config/querydeck.
func LoadConfig(file string) (*Config, error) {
	v := viper.New()
	v.SetFs(AppFs)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "querydeck"))
		}
	}

	// Set environment variable prefix
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// .env.local takes priority over .env
	loadEnvFile(".env", false)
	loadEnvFile(".env.local", true)

	url := v.GetString("database.url")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}

	savedPath, err := homedir.Expand(v.GetString("saved_queries.path"))
	if err != nil {
		return nil, fmt.Errorf("invalid saved_queries.path: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Provider:       v.GetString("database.provider"),
			URL:            url,
			MaxConnections: v.GetInt("database.max_connections"),
			MaxIdleTime:    v.GetInt("database.max_idle_time"),
			ConnectTimeout: v.GetInt("database.connect_timeout"),
			CatalogTTL:     v.GetInt("database.catalog_ttl"),
		},
		SavedQueries: SavedQueriesConfig{
			Path:    savedPath,
			Storage: v.GetString("saved_queries.storage"),
		},
		Server: ServerConfig{
			Addr:      v.GetString("server.addr"),
			RateLimit: v.GetFloat64("server.rate_limit"),
			Burst:     v.GetInt("server.burst"),
		},
		Telemetry: TelemetryConfig{
			Type:      v.GetString("telemetry.type"),
			Namespace: v.GetString("telemetry.namespace"),
		},
		Debug:     v.GetBool("debug"),
		LogFormat: strings.ToLower(v.GetString("log_format")),
		File:      v.ConfigFileUsed(),
	}

	if cfg.Database.Provider == "" {
		cfg.Database.Provider = InferProvider(cfg.Database.URL)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_time", 300)
	v.SetDefault("database.connect_timeout", 10)
	v.SetDefault("database.catalog_ttl", 300)
	v.SetDefault("saved_queries.path", "saved-queries.json")
	v.SetDefault("saved_queries.storage", "filesystem")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.burst", 40)
	v.SetDefault("telemetry.type", "noop")
	v.SetDefault("telemetry.namespace", "querydeck")
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "text")
}

// loadEnvFile exports the variables of an env file if it exists.
// Existing variables are kept unless override is set.
func loadEnvFile(name string, override bool) {
	f, err := AppFs.Open(name)
	if err != nil {
		return
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		// Don't fail if the file can't be parsed
		return
	}
	for k, val := range vars {
		if _, set := os.LookupEnv(k); set && !override {
			continue
		}
		os.Setenv(k, val)
	}
}

// InferProvider guesses the provider from a connection URL.
func InferProvider(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(lower, "mysql://"), strings.Contains(lower, "@tcp("):
		return "mysql"
	case strings.HasPrefix(lower, "file:"), strings.HasPrefix(lower, "sqlite://"),
		strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"), lower == ":memory:":
		return "sqlite"
	}
	return ""
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".config", "querydeck", configName+".yaml")
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.Set("database.provider", cfg.Database.Provider)
	v.Set("database.url", cfg.Database.URL)
	v.Set("database.max_connections", cfg.Database.MaxConnections)
	v.Set("database.max_idle_time", cfg.Database.MaxIdleTime)
	v.Set("database.connect_timeout", cfg.Database.ConnectTimeout)
	v.Set("database.catalog_ttl", cfg.Database.CatalogTTL)
	v.Set("saved_queries.path", cfg.SavedQueries.Path)
	v.Set("saved_queries.storage", cfg.SavedQueries.Storage)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("server.rate_limit", cfg.Server.RateLimit)
	v.Set("server.burst", cfg.Server.Burst)
	v.Set("telemetry.type", cfg.Telemetry.Type)
	v.Set("telemetry.namespace", cfg.Telemetry.Namespace)
	v.Set("debug", cfg.Debug)
	v.Set("log_format", cfg.LogFormat)

	if err := AppFs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return v.WriteConfigAs(path)
}
