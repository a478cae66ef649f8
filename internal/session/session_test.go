package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		dbPath  string
		wantErr bool
	}{
		{"creates database successfully", filepath.Join(t.TempDir(), "test.db"), false},
		{"handles in-memory database", ":memory:", false},
		{"creates parent directories if needed", filepath.Join(t.TempDir(), "nested", "dir", "test.db"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.dbPath)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.Ping(context.Background()))
			version, err := store.GetLatestVersion()
			require.NoError(t, err)
			assert.Equal(t, len(migrations), version)
		})
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	store, err := NewStore(path)
	require.NoError(t, err)
	sess, err := store.Create(ctx, stack.Defaults())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, got.State.Equal(stack.Defaults()))
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	s := stack.Defaults()
	s.Set(stack.Frontend, stack.Of("nuxt", "native-nativewind"))

	sess, err := store.Create(ctx, s)
	require.NoError(t, err)
	_, err = uuid.Parse(sess.ID)
	require.NoError(t, err, "session IDs are UUIDs")
	require.Len(t, sess.Events, 1)
	assert.Equal(t, ActionCreate, sess.Events[0].Action)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, got.State.Equal(s))
	assert.Equal(t, sess.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())
	require.Len(t, got.Events, 1)
	assert.Empty(t, got.Events[0].Changes)
}

func TestGetUnknown(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAppendsAuditTrail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, stack.Defaults())
	require.NoError(t, err)

	next := stack.Select(sess.State, stack.Frontend, stack.Nuxt)
	next.Set(stack.API, stack.Of("orpc"))
	change := models.Change{
		Category: "api", Old: []string{"trpc"}, New: []string{"orpc"},
		Reason: "tRPC API requires React-based frontends.", RuleID: "trpc-requires-react",
	}

	event, err := store.Update(ctx, sess.ID, next, Event{
		Action: ActionSelect, Category: "frontend", Value: "nuxt",
		Changes: []models.Change{change},
	})
	require.NoError(t, err)
	assert.NotZero(t, event.ID)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "orpc", got.State.Value(stack.API))
	require.Len(t, got.Events, 2)
	assert.Equal(t, ActionSelect, got.Events[1].Action)
	assert.Equal(t, "frontend", got.Events[1].Category)
	assert.Equal(t, "nuxt", got.Events[1].Value)
	assert.Equal(t, []models.Change{change}, got.Events[1].Changes)

	_, err = store.Update(ctx, "missing", next, Event{Action: ActionReset})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkExported(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, stack.Defaults())
	require.NoError(t, err)
	require.NoError(t, store.MarkExported(ctx, sess.ID, "my-app"))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "my-app", got.ExportedAs)
	assert.Equal(t, ActionExport, got.Events[len(got.Events)-1].Action)

	assert.ErrorIs(t, store.MarkExported(ctx, "missing", "x"), ErrNotFound)
}

func TestPrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	old, err := store.Create(ctx, stack.Defaults())
	require.NoError(t, err)

	clock = clock.Add(40 * 24 * time.Hour)
	fresh, err := store.Create(ctx, stack.Defaults())
	require.NoError(t, err)

	n, err := store.Prune(ctx, clock.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	events, err := store.Events(ctx, old.ID)
	require.NoError(t, err)
	assert.Empty(t, events, "events are deleted with their session")

	_, err = store.Get(ctx, fresh.ID)
	assert.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConcurrentUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, stack.Defaults())
	require.NoError(t, err)

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, sess.ID, stack.Defaults(), Event{Action: ActionReset})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	events, err := store.Events(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, events, writers+1)
}

func TestUpdateAtRejectsStaleRevision(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, stack.Defaults())
	require.NoError(t, err)
	assert.Equal(t, int64(0), sess.Revision)

	next := stack.Select(sess.State, stack.Addons, "biome")
	_, err = store.UpdateAt(ctx, sess.ID, sess.Revision, next, Event{Action: ActionSelect})
	require.NoError(t, err)

	_, err = store.UpdateAt(ctx, sess.ID, sess.Revision, stack.Defaults(), Event{Action: ActionReset})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Revision)
	assert.True(t, got.State.Has(stack.Addons, "biome"), "a conflicting write must not apply")
	assert.Len(t, got.Events, 2)

	require.NoError(t, store.MarkExported(ctx, sess.ID, "my-app"))
	got, err = store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Revision)

	_, err = store.UpdateAt(ctx, "missing", 0, next, Event{Action: ActionReset})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentUpdateAtOneWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, stack.Defaults())
	require.NoError(t, err)

	const writers = 10
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.UpdateAt(ctx, sess.ID, sess.Revision, stack.Defaults(), Event{Action: ActionReset})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	won := 0
	for err := range results {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, won)
}
