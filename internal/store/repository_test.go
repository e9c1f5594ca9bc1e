package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/producer-intervals/internal/model"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{Year: 2015, Producer: "Matthew Vaughn", Winner: true, Line: 2},
		{Year: 1991, Producer: "Joel Silver", Winner: true, Line: 3},
		{Year: 1995, Producer: "Alice", Winner: false, Line: 4},
		{Year: 1995, Producer: "Bob", Winner: false, Line: 4},
		{Year: 1990, Producer: "Joel Silver", Winner: true, Line: 5},
		{Year: 2002, Producer: "Matthew Vaughn", Winner: true, Line: 6},
		{Year: 1990, Producer: "Carol", Winner: true, Line: 7},
	}
}

func backends(t *testing.T) map[string]Repository {
	t.Helper()

	mem := NewMemory()

	inMemSQL, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { inMemSQL.Close() }) //nolint:errcheck

	fileSQL, err := NewSQLite(filepath.Join(t.TempDir(), "nominations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { fileSQL.Close() }) //nolint:errcheck

	return map[string]Repository{
		"memory":        mem,
		"sqlite-memory": inMemSQL,
		"sqlite-file":   fileSQL,
	}
}

func TestRepository_WinnersOrderedByYearStable(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Load(ctx, sampleRecords()))

			events, err := repo.Winners(ctx)
			require.NoError(t, err)
			assert.Equal(t, []model.WinEvent{
				{Producer: "Joel Silver", Year: 1990},
				{Producer: "Carol", Year: 1990},
				{Producer: "Joel Silver", Year: 1991},
				{Producer: "Matthew Vaughn", Year: 2002},
				{Producer: "Matthew Vaughn", Year: 2015},
			}, events)
		})
	}
}

func TestRepository_Empty(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Load(ctx, nil))

			events, err := repo.Winners(ctx)
			require.NoError(t, err)
			assert.Empty(t, events)
		})
	}
}

func TestRepository_ReloadReplacesContents(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Load(ctx, sampleRecords()))
			require.NoError(t, repo.Load(ctx, []model.Record{
				{Year: 2000, Producer: "Solo", Winner: true, Line: 2},
			}))

			events, err := repo.Winners(ctx)
			require.NoError(t, err)
			assert.Equal(t, []model.WinEvent{{Producer: "Solo", Year: 2000}}, events)
		})
	}
}

func TestRepository_KeepsDuplicates(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Load(ctx, []model.Record{
				{Year: 2000, Producer: "Dup", Winner: true, Line: 2},
				{Year: 2000, Producer: "Dup", Winner: true, Line: 3},
			}))

			events, err := repo.Winners(ctx)
			require.NoError(t, err)
			assert.Len(t, events, 2)
		})
	}
}

func TestMemoryStore_LoadCopiesInput(t *testing.T) {
	ctx := context.Background()
	records := sampleRecords()
	repo := NewMemory()
	require.NoError(t, repo.Load(ctx, records))

	records[0].Producer = "mutated"

	events, err := repo.Winners(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Matthew Vaughn", events[len(events)-1].Producer)
}

func TestWinners_PureFunction(t *testing.T) {
	assert.Empty(t, Winners(nil))
	assert.Empty(t, Winners([]model.Record{{Year: 1990, Producer: "A", Winner: false}}))
}

func TestNew_Drivers(t *testing.T) {
	repo, err := New("", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, repo)

	repo, err = New(DriverMemory, "ignored")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, repo)

	repo, err = New(DriverSQLite, "")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, repo)
	require.NoError(t, repo.Close())

	repo, err = New("postgres", "")
	assert.Nil(t, repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestSQLiteStore_LoadCancelledContext(t *testing.T) {
	st, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = st.Load(ctx, sampleRecords())
	require.Error(t, err)
}
