package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type calls struct {
	mu    sync.Mutex
	notes []string
}

func (c *calls) handle(_ context.Context, note string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append(c.notes, note)
}

func (c *calls) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.notes...)
}

func startWatcher(t *testing.T, root string, c *calls) *Watcher {
	t.Helper()
	w, err := New(Config{
		Root:     root,
		Include:  []string{"**/*.md"},
		Exclude:  []string{".obsidian/**"},
		Debounce: 100 * time.Millisecond,
	}, c.handle, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	select {
	case <-w.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher not ready")
	}
	return w
}

func TestWatcher_DebouncesWritesPerNote(t *testing.T) {
	root := t.TempDir()
	c := &calls{}
	startWatcher(t, root, c)

	note := filepath.Join(root, "daily.md")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(note, []byte{byte('a' + i)}, 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, []string{note}, c.snapshot())
}

func TestWatcher_FiltersByPattern(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".obsidian"), 0o750))
	c := &calls{}
	startWatcher(t, root, c)

	require.NoError(t, os.WriteFile(filepath.Join(root, "image.png"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".obsidian", "workspace.md"), []byte("x"), 0o600))
	note := filepath.Join(root, "kept.md")
	require.NoError(t, os.WriteFile(note, []byte("x"), 0o600))

	require.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, []string{note}, c.snapshot())
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	c := &calls{}
	startWatcher(t, root, c)

	dir := filepath.Join(root, "projects")
	require.NoError(t, os.Mkdir(dir, 0o750))
	// Give the watcher a moment to register the new directory.
	time.Sleep(200 * time.Millisecond)

	note := filepath.Join(dir, "plan.md")
	require.NoError(t, os.WriteFile(note, []byte("x"), 0o600))

	require.Eventually(t, func() bool {
		got := c.snapshot()
		return len(got) == 1 && got[0] == note
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_EnqueueDedupes(t *testing.T) {
	w, err := New(Config{Root: t.TempDir()}, func(context.Context, string) {}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	w.Enqueue("/a.md")
	w.Enqueue("/a.md")
	w.Enqueue("/b.md")
	require.Len(t, w.jobs, 2)
}
