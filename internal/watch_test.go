package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tt "github.com/giact/awaitlint/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type watchResult struct {
	filename string
	issues   []tt.Issue
}

func TestWatcher_RelintsChangedFiles(t *testing.T) {
	tempDir := createTempDir(t, "watch_test")
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "node_modules", "lib"), 0o755))

	engine, err := NewEngine(tempDir, nil)
	require.NoError(t, err)

	results := make(chan watchResult, 8)
	w, err := NewWatcher(engine, zaptest.NewLogger(t), func(filename string, issues []tt.Issue) {
		results <- watchResult{filename: filename, issues: issues}
	})
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)
	require.NoError(t, w.Add(tempDir))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// files we do not lint are ignored
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("loadAsync()"), 0o644))

	path := filepath.Join(tempDir, "app.js")
	require.NoError(t, os.WriteFile(path, []byte("async function f() {\n  loadAsync();\n}\n"), 0o644))

	select {
	case res := <-results:
		assert.Equal(t, path, res.filename)
		require.Len(t, res.issues, 1)
		assert.Equal(t, "missing-await", res.issues[0].Category)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for re-lint")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	engine, err := NewEngine("", nil)
	require.NoError(t, err)

	w, err := NewWatcher(engine, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.isWatching
	}, time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, w.Run(ctx), ErrAlreadyWatching)
}
