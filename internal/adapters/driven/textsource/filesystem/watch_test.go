package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/normalisers"
)

func TestSource_Watch(t *testing.T) {
	t.Run("emits after a file is added", func(t *testing.T) {
		root := t.TempDir()
		dir := writeProject(t, root, "acme", nil)

		s, err := New(root, normalisers.Default(), WithDebounce(20*time.Millisecond))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := s.Watch(ctx, "acme")
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "Amendment 2.txt"), []byte("x"), 0o644))

		select {
		case _, ok := <-changes:
			assert.True(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for change notification")
		}
	})

	t.Run("coalesces a burst", func(t *testing.T) {
		root := t.TempDir()
		dir := writeProject(t, root, "acme", nil)

		s, err := New(root, normalisers.Default(), WithDebounce(100*time.Millisecond))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := s.Watch(ctx, "acme")
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "MSA.txt"), []byte{byte('a' + i)}, 0o644))
		}

		select {
		case <-changes:
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for change notification")
		}

		select {
		case <-changes:
			t.Fatal("burst should produce a single notification")
		case <-time.After(300 * time.Millisecond):
		}
	})

	t.Run("closes on cancel", func(t *testing.T) {
		root := t.TempDir()
		writeProject(t, root, "acme", nil)

		s, err := New(root, normalisers.Default())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		changes, err := s.Watch(ctx, "acme")
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("channel was not closed")
		}
	})

	t.Run("missing project", func(t *testing.T) {
		s, err := New(t.TempDir(), normalisers.Default())
		require.NoError(t, err)

		_, err = s.Watch(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"create", fsnotify.Event{Name: "/p/MSA.pdf", Op: fsnotify.Create}, true},
		{"write", fsnotify.Event{Name: "/p/MSA.pdf", Op: fsnotify.Write}, true},
		{"remove", fsnotify.Event{Name: "/p/MSA.pdf", Op: fsnotify.Remove}, true},
		{"rename", fsnotify.Event{Name: "/p/MSA.pdf", Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: "/p/MSA.pdf", Op: fsnotify.Chmod}, false},
		{"write and chmod", fsnotify.Event{Name: "/p/MSA.pdf", Op: fsnotify.Write | fsnotify.Chmod}, true},
		{"hidden", fsnotify.Event{Name: "/p/.~lock.MSA.docx#", Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.event))
		})
	}
}
