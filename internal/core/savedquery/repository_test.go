package savedquery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/satishbabariya/querydeck/internal/adapters/storage"
	query "github.com/satishbabariya/querydeck/internal/core/query/domain"
	"github.com/satishbabariya/querydeck/internal/core/savedquery/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRepository(t *testing.T, store storage.Storage) *Repository {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStorage()
	}
	tick := 0
	id := 0
	return NewRepository(store, "saved.json",
		WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		}),
		WithIDGenerator(func() string {
			id++
			return fmt.Sprintf("id-%d", id)
		}),
	)
}

func empConfig() domain.QueryConfig {
	return domain.NewQueryConfig(&query.Descriptor{
		Table:   "EMP",
		Columns: []string{"ENAME", "SAL"},
		Filters: []query.FilterSpec{{Field: "SAL", Operator: query.Gt, Value: "1000"}},
	})
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, nil)

	q, err := repo.Save(ctx, empConfig(), "High earners", "salary above 1000")
	require.NoError(t, err)
	assert.Equal(t, "id-1", q.ID)
	assert.Equal(t, domain.FormatVersion, q.Version)
	assert.False(t, q.Timestamp.IsZero())

	t.Run("duplicate name leaves the collection unchanged", func(t *testing.T) {
		before := repo.List()

		_, err := repo.Save(ctx, empConfig(), "HIGH EARNERS", "")
		assert.ErrorIs(t, err, domain.ErrDuplicateName)
		assert.Equal(t, before, repo.List())
	})

	t.Run("invalid query", func(t *testing.T) {
		_, err := repo.Save(ctx, domain.QueryConfig{}, "no table", "")
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)

		_, err = repo.Save(ctx, empConfig(), "   ", "")
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	})
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("existing id is skipped", func(t *testing.T) {
		repo := newTestRepository(t, nil)
		saved, err := repo.Save(ctx, empConfig(), "Q1", "")
		require.NoError(t, err)

		payload := fmt.Sprintf(`[{"id":%q,"name":"renamed","config":{"selectedTable":"EMP","selectedColumns":[]}}]`, saved.ID)
		res, err := repo.Import(ctx, []byte(payload))
		require.NoError(t, err)
		assert.Equal(t, 0, res.Imported)
		assert.Equal(t, 1, res.Skipped)
		assert.Len(t, repo.List(), 1)
	})

	t.Run("empty or invalid batch", func(t *testing.T) {
		repo := newTestRepository(t, nil)

		_, err := repo.Import(ctx, []byte(`[]`))
		assert.ErrorIs(t, err, domain.ErrNoValidEntries)

		_, err = repo.Import(ctx, []byte(`[{"name":"no config"},{"config":{"selectedTable":"EMP","selectedColumns":[]}}]`))
		assert.ErrorIs(t, err, domain.ErrNoValidEntries)

		_, err = repo.Import(ctx, []byte(`[{"name":"no columns","config":{"selectedTable":"EMP"}}]`))
		assert.ErrorIs(t, err, domain.ErrNoValidEntries)
		assert.Empty(t, repo.List())
	})

	t.Run("unparseable document", func(t *testing.T) {
		repo := newTestRepository(t, nil)
		_, err := repo.Import(ctx, []byte(`{"queries": "nope"}`))
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)

		_, err = repo.Import(ctx, []byte("   "))
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("document shapes", func(t *testing.T) {
		entry := `{"name":"%s","config":{"selectedTable":"EMP","selectedColumns":["ENAME"]}}`
		payloads := map[string]string{
			"list":         "[" + fmt.Sprintf(entry, "a") + "]",
			"single":       fmt.Sprintf(entry, "a"),
			"queries":      `{"queries":[` + fmt.Sprintf(entry, "a") + `]}`,
			"savedQueries": `{"savedQueries":[` + fmt.Sprintf(entry, "a") + `]}`,
			"items":        `{"items":[` + fmt.Sprintf(entry, "a") + `]}`,
			"data":         `{"data":[` + fmt.Sprintf(entry, "a") + `]}`,
		}
		for name, payload := range payloads {
			t.Run(name, func(t *testing.T) {
				repo := newTestRepository(t, nil)
				res, err := repo.Import(ctx, []byte(payload))
				require.NoError(t, err)
				assert.Equal(t, 1, res.Imported)

				list := repo.List()
				require.Len(t, list, 1)
				assert.Equal(t, "id-1", list[0].ID)
				assert.Equal(t, domain.FormatVersion, list[0].Version)
				assert.False(t, list[0].Timestamp.IsZero())
			})
		}
	})

	t.Run("yaml document", func(t *testing.T) {
		repo := newTestRepository(t, nil)
		payload := `
queries:
  - id: abc
    name: From YAML
    timestamp: "2023-01-01T00:00:00Z"
    config:
      selectedTable: EMP
      selectedColumns: [ENAME, SAL]
      sorting:
        - field: SAL
          direction: DESC
`
		res, err := repo.Import(ctx, []byte(payload))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Imported)

		q, err := repo.Get("abc")
		require.NoError(t, err)
		assert.Equal(t, []query.SortSpec{{Field: "SAL", Direction: query.Desc}}, q.Config.Sorting)
		assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), q.Timestamp.UTC())
	})

	t.Run("dedup by name within the batch and against the collection", func(t *testing.T) {
		repo := newTestRepository(t, nil)
		_, err := repo.Save(ctx, empConfig(), "Existing", "")
		require.NoError(t, err)

		payload := `[
			{"id":"x1","name":"existing","config":{"selectedTable":"EMP","selectedColumns":[]}},
			{"id":"x2","name":"New","config":{"selectedTable":"EMP","selectedColumns":[]}},
			{"id":"x3","name":"NEW","config":{"selectedTable":"EMP","selectedColumns":[]}},
			{"id":"x2","name":"Other","config":{"selectedTable":"EMP","selectedColumns":[]}}
		]`
		res, err := repo.Import(ctx, []byte(payload))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Imported)
		assert.Equal(t, 3, res.Skipped)
		assert.Len(t, repo.List(), 2)
	})

	t.Run("version handling", func(t *testing.T) {
		repo := newTestRepository(t, nil)
		payload := `[
			{"name":"future","version":"2.0","config":{"selectedTable":"EMP","selectedColumns":[]}},
			{"name":"minor","version":"1.3","config":{"selectedTable":"EMP","selectedColumns":[]}},
			{"name":"garbled","version":"v-next","config":{"selectedTable":"EMP","selectedColumns":[]}}
		]`
		res, err := repo.Import(ctx, []byte(payload))
		require.NoError(t, err)
		assert.Equal(t, 2, res.Imported)

		versions := map[string]string{}
		for _, q := range repo.List() {
			versions[q.Name] = q.Version
		}
		assert.Equal(t, map[string]string{"minor": "1.3", "garbled": domain.FormatVersion}, versions)
	})

	t.Run("collection is re-sorted newest first", func(t *testing.T) {
		repo := newTestRepository(t, nil)
		_, err := repo.Save(ctx, empConfig(), "saved now", "")
		require.NoError(t, err)

		payload := `[
			{"name":"old","timestamp":"2020-01-01T00:00:00Z","config":{"selectedTable":"EMP","selectedColumns":[]}},
			{"name":"future","timestamp":"2030-01-01T00:00:00Z","config":{"selectedTable":"EMP","selectedColumns":[]}}
		]`
		_, err = repo.Import(ctx, []byte(payload))
		require.NoError(t, err)

		var names []string
		for _, q := range repo.List() {
			names = append(names, q.Name)
		}
		assert.Equal(t, []string{"future", "saved now", "old"}, names)
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			src := newTestRepository(t, nil)
			_, err := src.Save(ctx, empConfig(), "one", "first")
			require.NoError(t, err)
			_, err = src.Save(ctx, domain.NewQueryConfig(&query.Descriptor{
				Table:      "DEPT",
				Aggregates: []query.AggregateSpec{{Type: query.Count, Columns: []string{}}},
				Page:       2,
				PageSize:   25,
			}), "two", "")
			require.NoError(t, err)

			data, err := src.Export(format)
			require.NoError(t, err)

			dst := NewRepository(storage.NewMemoryStorage(), "other.json")
			res, err := dst.Import(ctx, data)
			require.NoError(t, err)
			assert.Equal(t, 2, res.Imported)

			want := map[string]domain.SavedQuery{}
			for _, q := range src.List() {
				want[q.ID] = q
			}
			for _, q := range dst.List() {
				w, ok := want[q.ID]
				require.True(t, ok, "id %s dropped", q.ID)
				assert.Equal(t, w.Name, q.Name)
				assert.Equal(t, w.Description, q.Description)
				assert.True(t, w.Timestamp.Equal(q.Timestamp))
				assert.Equal(t, w.Config.ToDescriptor().Table, q.Config.ToDescriptor().Table)
				assert.Equal(t, w.Config.ToDescriptor().PageSize, q.Config.ToDescriptor().PageSize)
				assert.Equal(t, w.Config.SelectedColumns, q.Config.SelectedColumns)
			}

			res, err = dst.Import(ctx, data)
			require.NoError(t, err)
			assert.Equal(t, 0, res.Imported)
			assert.Equal(t, 2, res.Skipped)
		})
	}
}

func TestDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, nil)

	orig, err := repo.Save(ctx, empConfig(), "Report", "")
	require.NoError(t, err)

	dup, err := repo.Duplicate(ctx, orig.ID)
	require.NoError(t, err)
	assert.NotEqual(t, orig.ID, dup.ID)
	assert.Equal(t, "Report (Copy)", dup.Name)
	assert.True(t, dup.Timestamp.After(orig.Timestamp))
	assert.Equal(t, orig.Config, dup.Config)

	got, err := repo.Get(orig.ID)
	require.NoError(t, err)
	assert.Equal(t, orig, got)

	again, err := repo.Duplicate(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Report (Copy 2)", again.Name)

	_, err = repo.Duplicate(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteAndResolve(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, nil)

	q, err := repo.Save(ctx, empConfig(), "Doomed", "")
	require.NoError(t, err)

	found, err := repo.Resolve("doomed")
	require.NoError(t, err)
	assert.Equal(t, q.ID, found.ID)

	require.NoError(t, repo.Delete(ctx, q.ID))
	assert.Empty(t, repo.List())
	assert.ErrorIs(t, repo.Delete(ctx, q.ID), domain.ErrNotFound)

	_, err = repo.Resolve("doomed")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSorting(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, nil)

	for _, name := range []string{"beta", "Alpha", "émile", "delta"} {
		_, err := repo.Save(ctx, empConfig(), name, "")
		require.NoError(t, err)
	}

	require.NoError(t, repo.SortByName(ctx))
	var names []string
	for _, q := range repo.List() {
		names = append(names, q.Name)
	}
	assert.Equal(t, []string{"Alpha", "beta", "delta", "émile"}, names)

	require.NoError(t, repo.SortByDate(ctx))
	names = names[:0]
	for _, q := range repo.List() {
		names = append(names, q.Name)
	}
	assert.Equal(t, []string{"delta", "émile", "Alpha", "beta"}, names)
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()

	repo := newTestRepository(t, store)
	_, err := repo.Save(ctx, empConfig(), "kept", "")
	require.NoError(t, err)

	reloaded := NewRepository(store, "saved.json")
	require.NoError(t, reloaded.Load(ctx))
	require.Len(t, reloaded.List(), 1)
	assert.Equal(t, "kept", reloaded.List()[0].Name)

	fresh := NewRepository(storage.NewMemoryStorage(), "missing.json")
	require.NoError(t, fresh.Load(ctx))
	assert.Empty(t, fresh.List())
}

type failingStorage struct {
	storage.Storage
}

func (f failingStorage) Write(ctx context.Context, path string, content []byte) error {
	return errors.New("disk full")
}

func TestPersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, failingStorage{storage.NewMemoryStorage()})

	_, err := repo.Save(ctx, empConfig(), "lost", "")
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, repo.List())

	_, err = repo.Import(ctx, []byte(`[{"name":"x","config":{"selectedTable":"EMP","selectedColumns":[]}}]`))
	assert.Error(t, err)
	assert.Empty(t, repo.List())
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	repo := NewRepository(store, "saved.json")

	seed, err := repo.Save(ctx, empConfig(), "Seed", "")
	require.NoError(t, err)

	const (
		savers      = 20
		importers   = 10
		duplicators = 10
		sorters     = 10
	)

	var wg sync.WaitGroup
	errs := make(chan error, savers+importers+duplicators+sorters)
	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				errs <- err
			}
		}()
	}

	for i := 0; i < savers; i++ {
		i := i
		run(func() error {
			_, err := repo.Save(ctx, empConfig(), fmt.Sprintf("Saved %d", i), "")
			return err
		})
	}
	for i := 0; i < importers; i++ {
		payload := fmt.Sprintf(`[
			{"name": "Imported %[1]d a", "config": {"selectedTable": "DEPT", "selectedColumns": []}},
			{"name": "imported %[1]d B", "config": {"selectedTable": "DEPT", "selectedColumns": ["DNAME"]}}
		]`, i)
		run(func() error {
			res, err := repo.Import(ctx, []byte(payload))
			if err != nil {
				return err
			}
			if res.Imported != 2 {
				return fmt.Errorf("imported %d of 2", res.Imported)
			}
			return nil
		})
	}
	for i := 0; i < duplicators; i++ {
		run(func() error {
			_, err := repo.Duplicate(ctx, seed.ID)
			return err
		})
	}
	for i := 0; i < sorters; i++ {
		i := i
		run(func() error {
			_ = repo.List()
			if i%2 == 0 {
				return repo.SortByName(ctx)
			}
			return repo.SortByDate(ctx)
		})
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	all := repo.List()
	require.Len(t, all, 1+savers+2*importers+duplicators)

	ids := make(map[string]bool, len(all))
	names := make(map[string]bool, len(all))
	for _, q := range all {
		assert.False(t, ids[q.ID], "duplicate id %s", q.ID)
		assert.False(t, names[domain.NameKey(q.Name)], "duplicate name %s", q.Name)
		ids[q.ID] = true
		names[domain.NameKey(q.Name)] = true
	}

	assert.True(t, names[domain.NameKey("Seed (Copy)")])
	for n := 2; n <= duplicators; n++ {
		assert.True(t, names[domain.NameKey(fmt.Sprintf("Seed (Copy %d)", n))], "missing copy %d", n)
	}

	reloaded := NewRepository(store, "saved.json")
	require.NoError(t, reloaded.Load(ctx))
	assert.Len(t, reloaded.List(), len(all))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}
