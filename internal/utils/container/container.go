// Package container provides dependency injection.
package container

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/satishbabariya/querydeck/internal/adapters/database"
	"github.com/satishbabariya/querydeck/internal/adapters/database/mysql"
	"github.com/satishbabariya/querydeck/internal/adapters/database/postgres"
	"github.com/satishbabariya/querydeck/internal/adapters/database/sqlite"
	"github.com/satishbabariya/querydeck/internal/adapters/storage"
	"github.com/satishbabariya/querydeck/internal/adapters/telemetry"
	"github.com/satishbabariya/querydeck/internal/config"
	"github.com/satishbabariya/querydeck/internal/core/catalog"
	"github.com/satishbabariya/querydeck/internal/core/savedquery"
	"github.com/satishbabariya/querydeck/internal/service"
)

// Container holds all application dependencies.
// The database is opened lazily so saved-query commands work without one.
type Container struct {
	// Configuration
	config *config.Config

	// Adapters
	store     storage.Storage
	telemetry telemetry.Telemetry

	// Repositories
	savedQueries *savedquery.Repository

	dbOnce       sync.Once
	dbErr        error
	dbAdapter    database.Adapter
	queryService *service.QueryService
}

// NewContainer creates a new dependency injection container.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		config: cfg,
	}

	var err error
	c.telemetry, err = telemetry.New(telemetry.Config{
		Type:      cfg.Telemetry.Type,
		Namespace: cfg.Telemetry.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry: %w", err)
	}

	store, name, err := storage.ForCollection(cfg.SavedQueries.Storage, cfg.SavedQueries.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	c.store = store

	c.savedQueries = savedquery.NewRepository(c.store, name,
		savedquery.WithTelemetry(c.telemetry),
	)
	if err := c.savedQueries.Load(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// Config returns the loaded configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// SavedQueries returns the saved-query repository.
func (c *Container) SavedQueries() *savedquery.Repository {
	return c.savedQueries
}

// SavedQueriesLocation returns where the collection is persisted.
func (c *Container) SavedQueriesLocation() string {
	return c.store.Location(c.savedQueries.Path())
}

// Telemetry returns the telemetry adapter.
func (c *Container) Telemetry() telemetry.Telemetry {
	return c.telemetry
}

// MetricsHandler returns the /metrics handler, nil unless Prometheus telemetry is configured.
func (c *Container) MetricsHandler() http.Handler {
	if p, ok := c.telemetry.(*telemetry.PrometheusTelemetry); ok {
		return p.Handler()
	}
	return nil
}

// QueryService connects to the database on first use and returns the query service.
func (c *Container) QueryService(ctx context.Context) (*service.QueryService, error) {
	c.dbOnce.Do(func() {
		adapter, err := createDatabaseAdapter(c.config.Database)
		if err != nil {
			c.dbErr = fmt.Errorf("failed to create database adapter: %w", err)
			return
		}
		if err := adapter.Connect(ctx); err != nil {
			c.dbErr = err
			return
		}

		introspector, err := catalog.ForDialect(adapter.GetDialect())
		if err != nil {
			c.dbErr = err
			return
		}

		c.dbAdapter = adapter
		ttl := time.Duration(c.config.Database.CatalogTTL) * time.Second
		c.queryService = service.NewQueryService(adapter, catalog.NewCachedCatalog(introspector, catalog.WithTTL(ttl)), c.telemetry)
	})
	return c.queryService, c.dbErr
}

// Close cleans up resources.
func (c *Container) Close(ctx context.Context) error {
	if c.dbAdapter != nil {
		if err := c.dbAdapter.Disconnect(ctx); err != nil {
			return err
		}
	}
	return c.telemetry.Close(ctx)
}

// createDatabaseAdapter creates the appropriate database adapter based on provider.
func createDatabaseAdapter(cfg config.DatabaseConfig) (database.Adapter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("no database URL configured (set database.url or DATABASE_URL)")
	}

	dbConfig := database.Config{
		Provider:       cfg.Provider,
		URL:            cfg.URL,
		MaxConnections: cfg.MaxConnections,
		MaxIdleTime:    cfg.MaxIdleTime,
		ConnectTimeout: cfg.ConnectTimeout,
	}

	switch strings.ToLower(cfg.Provider) {
	case "postgresql", "postgres":
		return postgres.NewPostgresAdapter(dbConfig)
	case "mysql":
		dbConfig.URL = strings.TrimPrefix(dbConfig.URL, "mysql://")
		return mysql.NewMySQLAdapter(dbConfig)
	case "sqlite", "sqlite3":
		dbConfig.URL = strings.TrimPrefix(dbConfig.URL, "sqlite://")
		return sqlite.NewSQLiteAdapter(dbConfig)
	default:
		return nil, fmt.Errorf("unsupported database provider: %q", cfg.Provider)
	}
}
