package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/hermes/internal/pkg/rag/loader"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTextFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "kanonismos.txt", "ΤΙΤΛΟΣ Α\nΓενικές διατάξεις.")

	doc, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ΤΙΤΛΟΣ Α\nΓενικές διατάξεις.", doc.Text)
	assert.Equal(t, "kanonismos.txt", doc.Metadata["source"])
}

func TestLoadMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.MD", "# Σημειώσεις")

	doc, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "# Σημειώσεις", doc.Text)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scan.pdf", "binary")

	_, err := loader.Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := loader.Load(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "δεύτερο")
	writeFile(t, dir, "a.txt", "πρώτο")
	writeFile(t, dir, "ignored.pdf", "binary")

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o750))
	writeFile(t, sub, "c.md", "τρίτο")

	docs, err := loader.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	// Ordered by path, subdirectories included.
	assert.Equal(t, "πρώτο", docs[0].Text)
	assert.Equal(t, "δεύτερο", docs[1].Text)
	assert.Equal(t, "τρίτο", docs[2].Text)
	assert.Equal(t, "c.md", docs[2].Metadata["source"])
}

func TestLoadDirEmpty(t *testing.T) {
	docs, err := loader.LoadDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
