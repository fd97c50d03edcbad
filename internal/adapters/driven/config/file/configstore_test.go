package file

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".lexmerge", "config.toml"), store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("generation.provider", "openai"))
	require.NoError(t, store.Set("generation.max_retries", 4))
	require.NoError(t, store.Set("generation.requests_per_second", 1.5))
	require.NoError(t, store.Set("debug", true))
	require.NoError(t, store.Set("projects.ignored", []string{"a", "b"}))

	assert.Equal(t, "openai", store.GetString("generation.provider"))
	assert.Equal(t, 4, store.GetInt("generation.max_retries"))
	assert.InDelta(t, 1.5, store.GetFloat("generation.requests_per_second"), 0.0001)
	assert.InDelta(t, 4.0, store.GetFloat("generation.max_retries"), 0.0001)
	assert.True(t, store.GetBool("debug"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("projects.ignored"))

	// Wrong types and missing keys return zero values.
	assert.Empty(t, store.GetString("generation.max_retries"))
	assert.Zero(t, store.GetInt("generation.provider"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("generation.provider"))
	assert.Nil(t, store.GetStringSlice("missing"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("generation.provider", "gemini"))
	require.NoError(t, store.Set("prompts.classify.id", "pmpt_c"))
	require.NoError(t, store.Set("prompts.classify.version", "2"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "[generation]")
	assert.Contains(t, content, "[prompts.classify]")
	assert.NotContains(t, content, `"generation.provider"`)
}

func TestConfigStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("generation.provider", "gemini"))
	require.NoError(t, store.Set("generation.max_output_tokens", 8000))
	require.NoError(t, store.Set("generation.requests_per_second", 0.5))
	require.NoError(t, store.Set("prompts.merge.id", "pmpt_m"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "gemini", reopened.GetString("generation.provider"))
	assert.Equal(t, 8000, reopened.GetInt("generation.max_output_tokens"))
	assert.InDelta(t, 0.5, reopened.GetFloat("generation.requests_per_second"), 0.0001)
	assert.Equal(t, "pmpt_m", reopened.GetString("prompts.merge.id"))
}

func TestConfigStore_Load_HandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[generation]
provider = "openai"
requests_per_second = 2

[projects]
root = "/srv/contracts"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store.GetString("generation.provider"))
	assert.InDelta(t, 2.0, store.GetFloat("generation.requests_per_second"), 0.0001)
	assert.Equal(t, "/srv/contracts", store.GetString("projects.root"))
}

func TestConfigStore_Load_EmptyAndInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, nil, 0600))
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	_, ok := store.Get("anything")
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0600))
	_, err = NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits differ on windows")
	}
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("generation.api_key", "sk-secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Save_WriteError(t *testing.T) {
	store := newTestConfigStore(t)
	store.filePath = filepath.Join(t.TempDir(), "missing", "config.toml")

	assert.Error(t, store.Save())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestConfigStore(t)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("analysis.concurrency", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("analysis.concurrency")
		}()
	}
	wg.Wait()

	_, ok := store.Get("analysis.concurrency")
	assert.True(t, ok)
}

func TestFlattenUnflatten(t *testing.T) {
	flat := map[string]any{
		"generation.provider":  "openai",
		"generation.model":     "gpt-4.1",
		"prompts.classify.id":  "c",
		"projects":             "scalar",
		"projects.root":        "/data",
		"analysis.concurrency": int64(2),
	}

	nested := unflattenMap(flat)
	assert.Equal(t, "scalar", nested["projects"])
	assert.Equal(t, "/data", nested["projects.root"])
	assert.Equal(t, map[string]any{"provider": "openai", "model": "gpt-4.1"}, nested["generation"])

	assert.Equal(t, flat, flattenMap(nested, ""))
}
