// Package savedquery implements the saved-query repository: save, import, export,
// duplicate, delete and sort over one persisted collection.
package savedquery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-version"
	"github.com/satishbabariya/querydeck/internal/adapters/storage"
	"github.com/satishbabariya/querydeck/internal/adapters/telemetry"
	"github.com/satishbabariya/querydeck/internal/core/savedquery/domain"
	"github.com/satishbabariya/querydeck/internal/debug"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPath is the storage path of the collection when none is configured.
const DefaultPath = "saved-queries.json"

// Repository owns the saved-query collection.
// Every operation takes the same lock; reads return copies.
type Repository struct {
	mu      sync.Mutex
	queries []domain.SavedQuery

	store     storage.Storage
	path      string
	telemetry telemetry.Telemetry
	now       func() time.Time
	newID     func() string
	current   *version.Version
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(newID func() string) Option {
	return func(r *Repository) { r.newID = newID }
}

// WithTelemetry records repository operations.
func WithTelemetry(t telemetry.Telemetry) Option {
	return func(r *Repository) { r.telemetry = t }
}

// NewRepository creates an empty repository persisted at path in store.
func NewRepository(store storage.Storage, path string, opts ...Option) *Repository {
	if path == "" {
		path = DefaultPath
	}
	r := &Repository{
		store:     store,
		path:      path,
		telemetry: telemetry.NewNoopTelemetry(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		current:   version.Must(version.NewVersion(domain.FormatVersion)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the storage path of the collection.
func (r *Repository) Path() string {
	return r.path
}

// Load replaces the in-memory collection with the persisted one.
// A missing file yields an empty collection.
func (r *Repository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.store.Exists(ctx, r.path)
	if err != nil {
		return fmt.Errorf("failed to load saved queries: %w", err)
	}
	if !exists {
		r.queries = nil
		debug.Debug("no saved queries yet", "path", r.path)
		return nil
	}

	data, err := r.store.Read(ctx, r.path)
	if err != nil {
		return fmt.Errorf("failed to load saved queries: %w", err)
	}

	raws, err := flatten(data)
	if err != nil {
		return fmt.Errorf("failed to load saved queries from %s: %w", r.path, err)
	}

	loaded := make([]domain.SavedQuery, 0, len(raws))
	for _, raw := range raws {
		q, ok := decodeCandidate(raw)
		if !ok || !domain.Validate(q) {
			continue
		}
		loaded = append(loaded, *q)
	}
	r.queries = loaded

	debug.Debug("saved queries loaded", "path", r.path, "count", len(loaded))
	return nil
}

// List returns a copy of the collection in its current order.
func (r *Repository) List() []domain.SavedQuery {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.SavedQuery, len(r.queries))
	for i, q := range r.queries {
		out[i] = q.Clone()
	}
	return out
}

// Get returns the entry with id.
func (r *Repository) Get(id string) (*domain.SavedQuery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	q := r.queries[i].Clone()
	return &q, nil
}

// Resolve finds an entry by id, falling back to a case-insensitive name match.
func (r *Repository) Resolve(ref string) (*domain.SavedQuery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(ref)
	if i < 0 {
		i = r.indexOfName(ref)
	}
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
	}
	q := r.queries[i].Clone()
	return &q, nil
}

// Save appends a new entry built from config.
func (r *Repository) Save(ctx context.Context, config domain.QueryConfig, name, description string) (*domain.SavedQuery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if config.SelectedColumns == nil {
		config.SelectedColumns = []string{}
	}
	q := domain.SavedQuery{
		ID:          r.newID(),
		Name:        strings.TrimSpace(name),
		Description: description,
		Timestamp:   r.now(),
		Version:     domain.FormatVersion,
		Config:      config,
	}
	if !domain.Validate(&q) {
		r.telemetry.RecordSavedQueryOp(ctx, "save", false)
		return nil, domain.ErrInvalidQuery
	}
	if r.indexOfName(q.Name) >= 0 {
		r.telemetry.RecordSavedQueryOp(ctx, "save", false)
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateName, q.Name)
	}

	err := r.mutate(ctx, "save", func() {
		r.queries = append(r.queries, q)
	})
	if err != nil {
		return nil, err
	}

	debug.Debug("saved query", "id", q.ID, "name", q.Name)
	out := q.Clone()
	return &out, nil
}

// Import merges a JSON or YAML document into the collection.
// Entries already present by id, or by case-insensitive name, are skipped.
// A batch whose every entry is a duplicate succeeds with zero imported.
func (r *Repository) Import(ctx context.Context, payload []byte) (*domain.ImportResult, error) {
	raws, err := flatten(payload)
	if err != nil {
		r.telemetry.RecordSavedQueryOp(ctx, "import", false)
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	candidates := make([]domain.SavedQuery, 0, len(raws))
	for _, raw := range raws {
		q, ok := decodeCandidate(raw)
		if !ok || !domain.Validate(q) {
			continue
		}
		if !r.acceptVersion(q) {
			debug.Debug("skipping saved query with unsupported version", "name", q.Name, "version", q.Version)
			continue
		}
		candidates = append(candidates, *q)
	}
	if len(candidates) == 0 {
		r.telemetry.RecordSavedQueryOp(ctx, "import", false)
		return nil, domain.ErrNoValidEntries
	}

	ids := make(map[string]bool, len(r.queries))
	names := make(map[string]bool, len(r.queries))
	for _, q := range r.queries {
		ids[q.ID] = true
		names[domain.NameKey(q.Name)] = true
	}

	result := &domain.ImportResult{}
	var accepted []domain.SavedQuery
	for _, q := range candidates {
		if q.ID != "" && ids[q.ID] {
			result.Skipped++
			continue
		}
		key := domain.NameKey(q.Name)
		if names[key] {
			result.Skipped++
			continue
		}

		if q.ID == "" {
			q.ID = r.newID()
		}
		if q.Timestamp.IsZero() {
			q.Timestamp = r.now()
		}
		ids[q.ID] = true
		names[key] = true
		accepted = append(accepted, q)
	}
	result.Imported = len(accepted)

	if len(accepted) == 0 {
		r.telemetry.RecordSavedQueryOp(ctx, "import", true)
		return result, nil
	}

	err = r.mutate(ctx, "import", func() {
		r.queries = append(r.queries, accepted...)
		sortByDate(r.queries)
	})
	if err != nil {
		return nil, err
	}

	debug.Debug("imported saved queries", "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// acceptVersion backfills missing or unreadable versions and rejects newer major versions.
func (r *Repository) acceptVersion(q *domain.SavedQuery) bool {
	if strings.TrimSpace(q.Version) == "" {
		q.Version = domain.FormatVersion
		return true
	}
	v, err := version.NewVersion(q.Version)
	if err != nil {
		q.Version = domain.FormatVersion
		return true
	}
	return v.Segments()[0] <= r.current.Segments()[0]
}

// Export renders the whole collection as an interchange document.
func (r *Repository) Export(format Format) ([]byte, error) {
	r.mu.Lock()
	doc := r.document()
	r.mu.Unlock()

	return encode(doc, format)
}

// Duplicate clones the entry with id under a new id, the current time and a "(Copy)" name.
func (r *Repository) Duplicate(ctx context.Context, id string) (*domain.SavedQuery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		r.telemetry.RecordSavedQueryOp(ctx, "duplicate", false)
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	clone := r.queries[i].Clone()
	clone.ID = r.newID()
	clone.Timestamp = r.now()
	clone.Name = r.copyName(clone.Name)

	err := r.mutate(ctx, "duplicate", func() {
		r.queries = append(r.queries, clone)
	})
	if err != nil {
		return nil, err
	}

	out := clone.Clone()
	return &out, nil
}

// copyName suffixes name with " (Copy)", numbering further copies to keep names unique.
func (r *Repository) copyName(name string) string {
	candidate := name + " (Copy)"
	for n := 2; r.indexOfName(candidate) >= 0; n++ {
		candidate = fmt.Sprintf("%s (Copy %d)", name, n)
	}
	return candidate
}

// Delete removes the entry with id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		r.telemetry.RecordSavedQueryOp(ctx, "delete", false)
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	return r.mutate(ctx, "delete", func() {
		r.queries = append(r.queries[:i:i], r.queries[i+1:]...)
	})
}

// SortByName orders the collection by name, case-insensitively and locale-aware.
func (r *Repository) SortByName(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.mutate(ctx, "sort", func() {
		c := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(r.queries, func(i, j int) bool {
			return c.CompareString(r.queries[i].Name, r.queries[j].Name) < 0
		})
	})
}

// SortByDate orders the collection newest first.
func (r *Repository) SortByDate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.mutate(ctx, "sort", func() {
		sortByDate(r.queries)
	})
}

func sortByDate(queries []domain.SavedQuery) {
	sort.SliceStable(queries, func(i, j int) bool {
		return queries[i].Timestamp.After(queries[j].Timestamp)
	})
}

// mutate applies change and persists the result, restoring the previous collection on failure.
// Callers hold r.mu.
func (r *Repository) mutate(ctx context.Context, op string, change func()) error {
	previous := append([]domain.SavedQuery(nil), r.queries...)
	change()

	if err := r.persist(ctx); err != nil {
		r.queries = previous
		r.telemetry.RecordSavedQueryOp(ctx, op, false)
		debug.Error("failed to persist saved queries", "op", op, "error", err)
		return err
	}
	r.telemetry.RecordSavedQueryOp(ctx, op, true)
	return nil
}

func (r *Repository) persist(ctx context.Context) error {
	data, err := encode(r.document(), FormatJSON)
	if err != nil {
		return err
	}
	if err := r.store.Write(ctx, r.path, data); err != nil {
		return fmt.Errorf("failed to persist saved queries: %w", err)
	}
	return nil
}

func (r *Repository) document() exportDocument {
	queries := make([]domain.SavedQuery, len(r.queries))
	for i, q := range r.queries {
		queries[i] = q.Clone()
	}
	return exportDocument{
		Version:    domain.FormatVersion,
		ExportedAt: r.now(),
		Queries:    queries,
	}
}

func (r *Repository) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, q := range r.queries {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) indexOfName(name string) int {
	key := domain.NameKey(name)
	for i, q := range r.queries {
		if domain.NameKey(q.Name) == key {
			return i
		}
	}
	return -1
}

