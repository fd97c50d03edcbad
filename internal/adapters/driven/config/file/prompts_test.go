package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
)

func TestNewPromptStore_Dirs(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	home := t.TempDir()
	t.Setenv("HOME", home)
	store, err = NewPromptStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".lexmerge", "prompts"), store.Dir())

	// No I/O until the first Load.
	_, err = os.Stat(store.Dir())
	assert.True(t, os.IsNotExist(err))
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompts[driven.PromptClassify], prompt)

	for _, f := range []string{"classify.txt", "merge.txt", "continue.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected %s to exist", f)
	}
}

func TestPromptStore_Load_CustomContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merge.txt"), []byte("  Merge carefully.\n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptMerge)
	require.NoError(t, err)
	assert.Equal(t, "Merge carefully.", prompt)

	// Existing files are not overwritten by the defaults.
	data, err := os.ReadFile(filepath.Join(dir, "merge.txt"))
	require.NoError(t, err)
	assert.Equal(t, "  Merge carefully.\n\n", string(data))
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptContinue)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "continue.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptContinue)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompts[driven.PromptContinue], prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPromptStore_Load_BlankFileUsesDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classify.txt"), []byte(" \n\t\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompts[driven.PromptClassify], prompt)
}

func TestPromptStore_Reload_ClearsCache(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptMerge)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "merge.txt"), []byte("v2"), 0600))
	cached, err := store.Load(driven.PromptMerge)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompts[driven.PromptMerge], cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptMerge)
	require.NoError(t, err)
	assert.Equal(t, "v2", fresh)
}

func TestPromptStore_Load_InitFailureUsesDefaults(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPrompts[driven.PromptClassify], prompt)

	_, err = store.Load("nonexistent")
	assert.Error(t, err)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptClassify)
			assert.NoError(t, err)
			assert.NotEmpty(t, prompt)
		}()
	}
	wg.Wait()
}
