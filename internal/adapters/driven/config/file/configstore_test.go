package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestDefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".innersync"), dir)
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[sync]
source = "Timetable.tfx"
watch = ["a.tfx", "b.tfx"]
debounce_ms = 1500

[history]
backend = "sqlite"

[api]
base_url = "https://api.example.com"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "Timetable.tfx", store.GetString("sync.source"))
	assert.Equal(t, []string{"a.tfx", "b.tfx"}, store.GetStringSlice("sync.watch"))
	assert.Equal(t, 1500, store.GetInt("sync.debounce_ms"))
	assert.Equal(t, "sqlite", store.GetString("history.backend"))
	assert.Equal(t, []string{
		"api.base_url",
		"history.backend",
		"sync.debounce_ms",
		"sync.source",
		"sync.watch",
	}, store.Keys())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", int64(42)))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("one", "only.tfx"))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("s"), "hello"},
		{"string of int", store.GetString("i"), ""},
		{"int", store.GetInt("i"), 42},
		{"int of string", store.GetInt("s"), 0},
		{"bool", store.GetBool("b"), true},
		{"bool missing", store.GetBool("missing"), false},
		{"single string slice", store.GetStringSlice("one"), []string{"only.tfx"}},
		{"slice of int", store.GetStringSlice("i"), []string(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_SaveReload_NestsKeys(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("sync.debounce_ms", int64(2500)))
	require.NoError(t, store.Set("auth.email", "staff@school.example"))
	require.NoError(t, store.Set("sync.watch", []string{"x.tfx"}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[sync]")
	assert.Contains(t, string(raw), "[auth]")

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 2500, store2.GetInt("sync.debounce_ms"))
	assert.Equal(t, "staff@school.example", store2.GetString("auth.email"))
	assert.Equal(t, []string{"x.tfx"}, store2.GetStringSlice("sync.watch"))
}

func TestConfigStore_Set_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("sync", "scalar"))
	err = store.Set("sync.source", "x.tfx")
	assert.Error(t, err)

	// Failed Set leaves the store unchanged
	_, ok := store.Get("sync.source")
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("auth.password", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()

	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Replace the file location with a directory to cause write error
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	err = store.Set("another", "value")
	assert.Error(t, err)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("sync.source", "x.tfx")
		}()
		go func() {
			defer wg.Done()
			_ = store.GetString("sync.source")
			_ = store.Keys()
		}()
	}
	wg.Wait()

	assert.Equal(t, "x.tfx", store.GetString("sync.source"))
}

func TestNestMap(t *testing.T) {
	nested, err := nestMap(map[string]any{
		"a.b":   1,
		"a.c.d": "x",
		"e":     true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": 1,
			"c": map[string]any{"d": "x"},
		},
		"e": true,
	}, nested)
	assert.Equal(t, map[string]any{"a.b": 1, "a.c.d": "x", "e": true}, flattenMap(nested, ""))
}
