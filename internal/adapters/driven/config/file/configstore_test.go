package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Equal(t, tmpDir, store.Dir())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".explore", "config.toml"), store.Path())
	assert.DirExists(t, filepath.Join(home, ".explore"))
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is [not toml"), 0o600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("data.transcripts_dir", "/srv/json"))

	val, ok := store.Get("data.transcripts_dir")
	assert.True(t, ok)
	assert.Equal(t, "/srv/json", val)

	_, ok = store.Get("nonexistent")
	assert.False(t, ok)
}

func TestConfigStore_GetString(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("serve.addr", "0.0.0.0:9000"))
	require.NoError(t, store.Set("search.per_page", 20))

	assert.Equal(t, "0.0.0.0:9000", store.GetString("serve.addr"))
	assert.Equal(t, "", store.GetString("nonexistent"))
	assert.Equal(t, "", store.GetString("search.per_page"), "wrong type")
}

func TestConfigStore_GetInt(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("search.per_page", 20))
	require.NoError(t, store.Set("index.workers", int64(4)))
	require.NoError(t, store.Set("serve.addr", "x"))

	assert.Equal(t, 20, store.GetInt("search.per_page"))
	assert.Equal(t, 4, store.GetInt("index.workers"))
	assert.Equal(t, 0, store.GetInt("serve.addr"), "wrong type")
	assert.Equal(t, 0, store.GetInt("nonexistent"))
}

func TestConfigStore_GetDuration(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    time.Duration
		wantErr bool
	}{
		{"duration string", "90s", 90 * time.Second, false},
		{"minutes", "2m", 2 * time.Minute, false},
		{"seconds as int", int64(45), 45 * time.Second, false},
		{"seconds as plain int", 5, 5 * time.Second, false},
		{"invalid string", "soon", 0, true},
		{"unsupported type", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewConfigStore(t.TempDir())
			require.NoError(t, err)
			store.data["serve.rebuild_interval"] = tt.value

			got, err := store.GetDuration("serve.rebuild_interval")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unset key", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)

		got, err := store.GetDuration("serve.rebuild_interval")

		require.NoError(t, err)
		assert.Zero(t, got)
	})
}

func TestConfigStore_NestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[data]
transcripts_dir = "/srv/json"

[search]
per_page = 25
progressive_sources = 10

[serve]
rebuild_interval = "1m"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0o600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/srv/json", store.GetString("data.transcripts_dir"))
	assert.Equal(t, 25, store.GetInt("search.per_page"))
	assert.Equal(t, 10, store.GetInt("search.progressive_sources"))
	d, err := store.GetDuration("serve.rebuild_interval")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)
}

func TestConfigStore_SaveReload_PreservesData(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("data.transcripts_dir", "/srv/json"))
	require.NoError(t, store.Set("search.per_page", 25))
	require.NoError(t, store.Set("search.trigram_min_episodes", 8))
	require.NoError(t, store.Set("serve.rebuild_interval", "45s"))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/srv/json", reloaded.GetString("data.transcripts_dir"))
	assert.Equal(t, 25, reloaded.GetInt("search.per_page"))
	assert.Equal(t, 8, reloaded.GetInt("search.trigram_min_episodes"))
	assert.Equal(t, "45s", reloaded.GetString("serve.rebuild_interval"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[search]")
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("serve.addr", "127.0.0.1:1"))

	info, err := os.Stat(store.Path())

	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Load())

	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), nil, 0o600))

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NoError(t, store.Set("serve.addr", "x"))
	assert.Equal(t, "x", store.GetString("serve.addr"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("search.per_page", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("search.per_page")
		}()
	}
	wg.Wait()

	_, ok := store.Get("search.per_page")
	assert.True(t, ok)
}

func TestFlattenAndNestMap(t *testing.T) {
	nested := map[string]any{
		"search": map[string]any{"per_page": int64(5)},
		"top":    "x",
	}

	flat := flattenMap(nested, "")

	assert.Equal(t, map[string]any{"search.per_page": int64(5), "top": "x"}, flat)
	assert.Equal(t, nested, nestMap(flat))
}
