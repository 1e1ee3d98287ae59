package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectScanner(t *testing.T) {
	tempDir := t.TempDir()

	files := map[string]string{
		"index.js":                  "loadAsync();",
		"src/app.ts":                "await save();",
		"src/view.tsx":              "export const View = () => null;",
		"README.md":                 "docs",
		"node_modules/dep/index.js": "module.exports = {};",
		".git/hooks/pre-commit.js":  "exit();",
		"src/.cache/compiled.js":    "x();",
		"src/components/button.jsx": "export default Button;",
	}

	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}

	scanner := New(tempDir, ".js", ".jsx", ".ts", ".tsx")
	scannedFiles, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	var paths []string
	for _, file := range scannedFiles {
		paths = append(paths, file.Path)
		assert.Greater(t, file.Size, int64(0), "File size should be greater than 0")
	}

	assert.Equal(t, []string{
		filepath.Join(tempDir, "index.js"),
		filepath.Join(tempDir, "src/app.ts"),
		filepath.Join(tempDir, "src/components/button.jsx"),
		filepath.Join(tempDir, "src/view.tsx"),
	}, paths)
}

func TestScanHiddenRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".project")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.js"), []byte("a();"), 0o644))

	files, err := New(root).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestScanCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(t.TempDir()).Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSkipDir(t *testing.T) {
	assert.True(t, SkipDir("node_modules"))
	assert.True(t, SkipDir(".git"))
	assert.False(t, SkipDir("src"))
	assert.False(t, SkipDir("."))
	assert.False(t, SkipDir(".."))
}
