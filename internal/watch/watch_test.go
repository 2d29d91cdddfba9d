package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	decls := filepath.Join(dir, "schema.yaml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(decls, []byte("tables: []\n"), 0o644))

	w, err := New([]string{decls}, 20*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)

	changes := make(chan []string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, files []string) error {
			changes <- files
			return nil
		})
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(decls, []byte("tables: [{target: User}]\n"), 0o644))

	select {
	case files := <-changes:
		assert.Equal(t, []string{decls}, files)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil, 0, nil)
	require.Error(t, err)

	_, err = New([]string{filepath.Join(t.TempDir(), "missing", "schema.yaml")}, 0, nil)
	require.Error(t, err)
}

func TestDebouncer(t *testing.T) {
	var (
		mu    sync.Mutex
		calls [][]string
	)
	d := NewDebouncer(30 * time.Millisecond)
	d.SetCallback(func(files []string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, files)
	})
	d.Add("b.yaml")
	d.Add("a.yaml")
	d.Add("b.yaml")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 1
	}, time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, calls[0])
	mu.Unlock()

	d.Stop()
	d.Add("c.yaml")
	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	assert.Len(t, calls, 1)
	mu.Unlock()
}
