// Package catalog resolves table columns through schema introspection.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/satishbabariya/querydeck/internal/adapters/database"
	"github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/satishbabariya/querydeck/internal/debug"
	"golang.org/x/sync/singleflight"
)

// Catalog lists the columns of a table.
type Catalog interface {
	// ListColumns returns the columns of table in ordinal order.
	ListColumns(ctx context.Context, conn database.Conn, table string) ([]domain.Column, error)
}

// Invalidator is implemented by catalogs that cache column lists.
type Invalidator interface {
	// Invalidate drops the cached columns of table, or of every table when table is empty.
	Invalidate(table string)
}

// Introspector runs the dialect-specific column lookup.
type Introspector interface {
	// Columns queries the catalog for table.
	Columns(ctx context.Context, conn database.Conn, table string) ([]domain.Column, error)
}

// ForDialect returns the introspector for a dialect.
func ForDialect(dialect database.SQLDialect) (Introspector, error) {
	switch dialect {
	case database.PostgreSQL:
		return &PostgresIntrospector{}, nil
	case database.MySQL:
		return &MySQLIntrospector{}, nil
	case database.SQLite:
		return &SQLiteIntrospector{}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect for introspection: %s", dialect)
	}
}

// caseFolder is implemented by introspectors whose table names are case-insensitive.
type caseFolder interface {
	FoldsCase() bool
}

type cacheEntry struct {
	columns  []domain.Column
	loadedAt time.Time
}

// CachedCatalog caches column lists per table and collapses concurrent
// lookups of the same table into one round trip.
// Table names are cache keys as given, folded to lower case only when the
// introspector reports case-insensitive names.
type CachedCatalog struct {
	introspector Introspector
	group        singleflight.Group
	foldCase     bool
	ttl          time.Duration
	now          func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// CatalogOption configures a CachedCatalog.
type CatalogOption func(*CachedCatalog)

// WithTTL expires cached column lists after ttl; zero keeps them until invalidated.
func WithTTL(ttl time.Duration) CatalogOption {
	return func(c *CachedCatalog) {
		c.ttl = ttl
	}
}

// WithCatalogClock overrides the clock used for expiry.
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(c *CachedCatalog) {
		c.now = now
	}
}

// NewCachedCatalog creates a caching catalog.
func NewCachedCatalog(introspector Introspector, opts ...CatalogOption) *CachedCatalog {
	c := &CachedCatalog{
		introspector: introspector,
		now:          time.Now,
		entries:      make(map[string]cacheEntry),
	}
	if f, ok := introspector.(caseFolder); ok {
		c.foldCase = f.FoldsCase()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedCatalog) key(table string) string {
	if c.foldCase {
		return strings.ToLower(table)
	}
	return table
}

// ListColumns returns cached columns or introspects them.
func (c *CachedCatalog) ListColumns(ctx context.Context, conn database.Conn, table string) ([]domain.Column, error) {
	key := c.key(table)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && (c.ttl <= 0 || c.now().Sub(entry.loadedAt) < c.ttl) {
		return entry.columns, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		cols, err := c.introspector.Columns(ctx, conn, table)
		if err != nil {
			return nil, err
		}
		if len(cols) == 0 {
			return nil, fmt.Errorf("table %q has no visible columns", table)
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{columns: cols, loadedAt: c.now()}
		c.mu.Unlock()
		return cols, nil
	})
	if err != nil {
		return nil, err
	}

	debug.Debug("resolved columns", "table", table, "shared", shared)
	return v.([]domain.Column), nil
}

// Invalidate drops the cached columns of table, or of every table when table is empty.
func (c *CachedCatalog) Invalidate(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if table == "" {
		c.entries = make(map[string]cacheEntry)
		return
	}
	delete(c.entries, c.key(table))
}

// Names returns column names in order.
func Names(columns []domain.Column) []string {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	return names
}

// Ensure CachedCatalog implements Catalog and Invalidator.
var (
	_ Catalog     = (*CachedCatalog)(nil)
	_ Invalidator = (*CachedCatalog)(nil)
)
