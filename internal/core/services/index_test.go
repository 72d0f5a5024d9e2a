package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/normalisers/transcript"
)

func newTestManager(source *mockSource) (*IndexManager, *mockSnapshotStore, *mockCatalog) {
	snapshots := newMockSnapshotStore()
	catalog := &mockCatalog{}
	return NewIndexManager(source, transcript.New(), snapshots, catalog, 4), snapshots, catalog
}

func TestIndexManager_GetBuildsOnce(t *testing.T) {
	source := newMockSource(map[string]string{"a": segmentsDoc("hello")})
	m, _, _ := newTestManager(source)

	var wg sync.WaitGroup
	results := make([]*domain.TranscriptIndex, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx, err := m.Get(context.Background())
			assert.NoError(t, err)
			results[i] = idx
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), source.recordsCalls.Load())
	for _, idx := range results {
		assert.Same(t, results[0], idx)
	}
	assert.Equal(t, []string{"a"}, results[0].IDs)
}

func TestIndexManager_GetFailureIsRetried(t *testing.T) {
	source := newMockSource(map[string]string{"a": segmentsDoc("hello")})
	source.recordsErr = errRead
	m, _, _ := newTestManager(source)

	_, err := m.Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.ErrorIs(t, err, domain.ErrIndexBuild)
	assert.False(t, m.Status(context.Background()).Ready)

	source.mu.Lock()
	source.recordsErr = nil
	source.mu.Unlock()

	idx, err := m.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestIndexManager_NonBlockingRebuildSwapsAtomically(t *testing.T) {
	source := newMockSource(map[string]string{"a": segmentsDoc("old")})
	m, _, _ := newTestManager(source)
	ctx := context.Background()

	before, err := m.Get(ctx)
	require.NoError(t, err)

	gate := make(chan struct{})
	source.setDocs(map[string]string{"a": segmentsDoc("new"), "b": segmentsDoc("more")})
	source.mu.Lock()
	source.gate = gate
	source.mu.Unlock()

	require.NoError(t, m.Rebuild(ctx, false))

	// Readers keep the previous snapshot while the build is held.
	assert.Eventually(t, func() bool { return m.Status(ctx).Building }, time.Second, 5*time.Millisecond)
	during, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, before, during)

	// A second request while building queues one more pass.
	require.NoError(t, m.Rebuild(ctx, false))

	close(gate)
	m.Wait()

	after, err := m.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, before, after)
	assert.Equal(t, []string{"a", "b"}, after.IDs)
	assert.Equal(t, []string{"new", "more"}, after.Text)
	assert.Equal(t, []string{"old"}, before.Text, "old snapshot must be untouched")
	assert.False(t, m.Status(ctx).Building)
}

func TestIndexManager_RebuildRequestedDuringBuildIsNotLost(t *testing.T) {
	source := newMockSource(map[string]string{"a": segmentsDoc("alpha")})
	m, _, _ := newTestManager(source)
	ctx := context.Background()

	_, err := m.Get(ctx)
	require.NoError(t, err)

	gate := make(chan struct{})
	source.mu.Lock()
	source.gate = gate
	source.mu.Unlock()

	require.NoError(t, m.Rebuild(ctx, false))
	// Wait until the running build has listed its records.
	assert.Eventually(t, func() bool { return source.recordsCalls.Load() == 2 }, time.Second, 5*time.Millisecond)

	source.setDocs(map[string]string{"a": segmentsDoc("alpha"), "b": segmentsDoc("beta")})
	require.NoError(t, m.Rebuild(ctx, false))
	require.NoError(t, m.Rebuild(ctx, false))

	close(gate)
	m.Wait()

	idx, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, idx.IDs)
	assert.Equal(t, int32(3), source.recordsCalls.Load(), "queued requests collapse into one extra build")
}

func TestIndexManager_BlockingRebuild(t *testing.T) {
	source := newMockSource(map[string]string{"a": segmentsDoc("one")})
	m, _, _ := newTestManager(source)
	ctx := context.Background()

	require.NoError(t, m.Rebuild(ctx, true))
	source.setDocs(map[string]string{"a": segmentsDoc("two")})
	require.NoError(t, m.Rebuild(ctx, true))

	idx, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"two"}, idx.Text)
	status := m.Status(ctx)
	require.NotNil(t, status.LastBuild)
	assert.Equal(t, domain.OriginBuilt, status.LastBuild.Origin)
	assert.Equal(t, 1, status.Episodes)
}

func TestIndexManager_SaveLoadRoundTrip(t *testing.T) {
	source := newMockSource(map[string]string{
		"a": segmentsDoc("שלום עולם", "מה שלומך"),
		"b": segmentsDoc("עולם אחר"),
	})
	m, _, catalog := newTestManager(source)
	ctx := context.Background()

	built, err := m.Get(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, "/idx.json.gz"))

	other, _, _ := newTestManager(source)
	other.snapshots = m.snapshots
	other.catalog = catalog
	require.NoError(t, other.Load(ctx, "/idx.json.gz"))

	loaded, err := other.Get(ctx)
	require.NoError(t, err)
	assert.True(t, built.Equal(loaded))
	assert.Equal(t, int32(1), source.recordsCalls.Load(), "load must not rebuild")

	require.Len(t, catalog.builds, 2)
	assert.Equal(t, domain.OriginBuilt, catalog.builds[0].Origin)
	assert.Equal(t, domain.OriginLoaded, catalog.builds[1].Origin)
	assert.Equal(t, catalog.builds[0].Fingerprint, catalog.builds[1].Fingerprint)
}

func TestIndexManager_SaveWithoutSnapshot(t *testing.T) {
	m, _, _ := newTestManager(newMockSource(nil))

	err := m.Save(context.Background(), "/idx")

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestIndexManager_LoadFailureKeepsCurrent(t *testing.T) {
	source := newMockSource(map[string]string{"a": segmentsDoc("kept")})
	m, _, _ := newTestManager(source)
	ctx := context.Background()

	before, err := m.Get(ctx)
	require.NoError(t, err)

	err = m.Load(ctx, "/missing")
	assert.ErrorIs(t, err, domain.ErrIndexLoad)

	after, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, before, after)
}

func TestIndexManager_Stale(t *testing.T) {
	source := newMockSource(map[string]string{"a": segmentsDoc("x")})
	m, _, _ := newTestManager(source)
	ctx := context.Background()

	stale, err := m.Stale(ctx, "/idx")
	require.NoError(t, err)
	assert.True(t, stale, "no catalog entry means stale")

	_, err = m.Get(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, "/idx"))

	stale, err = m.Stale(ctx, "/idx")
	require.NoError(t, err)
	assert.False(t, stale)

	source.setDocs(map[string]string{"a": segmentsDoc("x"), "b": segmentsDoc("y")})
	stale, err = m.Stale(ctx, "/idx")
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestIndexManager_StaleWithoutCatalog(t *testing.T) {
	m := NewIndexManager(newMockSource(nil), transcript.New(), nil, nil, 1)

	stale, err := m.Stale(context.Background(), "/idx")

	require.NoError(t, err)
	assert.True(t, stale)
}

func TestIndexManager_Warm(t *testing.T) {
	ctx := context.Background()

	t.Run("builds and saves when nothing is persisted", func(t *testing.T) {
		source := newMockSource(map[string]string{"a": segmentsDoc("x")})
		m, snapshots, _ := newTestManager(source)

		require.NoError(t, m.Warm(ctx, "/idx", false))

		assert.True(t, snapshots.Exists("/idx"))
		assert.Equal(t, domain.OriginBuilt, m.Status(ctx).LastBuild.Origin)
	})

	t.Run("loads a fresh container", func(t *testing.T) {
		source := newMockSource(map[string]string{"a": segmentsDoc("x")})
		m, snapshots, catalog := newTestManager(source)
		require.NoError(t, m.Warm(ctx, "/idx", false))

		fresh := NewIndexManager(source, transcript.New(), snapshots, catalog, 2)
		require.NoError(t, fresh.Warm(ctx, "/idx", false))

		assert.Equal(t, domain.OriginLoaded, fresh.Status(ctx).LastBuild.Origin)
	})

	t.Run("rebuilds a stale container", func(t *testing.T) {
		source := newMockSource(map[string]string{"a": segmentsDoc("x")})
		m, snapshots, catalog := newTestManager(source)
		require.NoError(t, m.Warm(ctx, "/idx", false))
		source.setDocs(map[string]string{"a": segmentsDoc("changed text")})

		fresh := NewIndexManager(source, transcript.New(), snapshots, catalog, 2)
		require.NoError(t, fresh.Warm(ctx, "/idx", false))

		idx, err := fresh.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"changed text"}, idx.Text)
		assert.Equal(t, domain.OriginBuilt, fresh.Status(ctx).LastBuild.Origin)
	})

	t.Run("force ignores a fresh container", func(t *testing.T) {
		source := newMockSource(map[string]string{"a": segmentsDoc("x")})
		m, snapshots, catalog := newTestManager(source)
		require.NoError(t, m.Warm(ctx, "/idx", false))

		fresh := NewIndexManager(source, transcript.New(), snapshots, catalog, 2)
		require.NoError(t, fresh.Warm(ctx, "/idx", true))

		assert.Equal(t, domain.OriginBuilt, fresh.Status(ctx).LastBuild.Origin)
	})
}

func TestIndexManager_AutoSave(t *testing.T) {
	source := newMockSource(map[string]string{"a": segmentsDoc("x")})
	m, snapshots, catalog := newTestManager(source)
	m.SetAutoSave("/auto")

	require.NoError(t, m.Rebuild(context.Background(), false))
	m.Wait()

	assert.True(t, snapshots.Exists("/auto"))
	latest, err := catalog.LatestBuild(context.Background(), "/auto")
	require.NoError(t, err)
	assert.NotEmpty(t, latest.Fingerprint)
}
