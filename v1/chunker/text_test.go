package chunker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestTextChunkerIDsAreGlobalAndDistinct(t *testing.T) {
	root := filepath.Join(t.TempDir(), "My Docs")
	writeFile(t, filepath.Join(root, "a.txt"), strings.Repeat("alpha beta gamma ", 80))
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "short note")
	writeFile(t, filepath.Join(root, "ignored.md"), "not text")

	c := NewTextChunker(nil, logger.NewNop())
	files, err := c.Chunk(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, files, 2)

	seen := map[string]bool{}
	n := 0
	for _, fc := range files {
		require.NoError(t, fc.Err)
		for _, ch := range fc.Chunks {
			assert.False(t, seen[ch.ID], "duplicate id %s", ch.ID)
			seen[ch.ID] = true
			assert.True(t, strings.HasPrefix(ch.ID, "my_docs_chunk_"))
			assert.Equal(t, n, *ch.Metadata.Page)
			n++
		}
	}
	assert.Greater(t, len(files[0].Chunks), 1)

	last := files[1].Chunks[0]
	assert.Equal(t, "short note", last.Text)
	assert.Equal(t, "b", last.Metadata.FileName)
	assert.Equal(t, filepath.Join(root, "sub", "b.txt"), last.Metadata.Source)
}

func TestTextChunkerEmptyDirectory(t *testing.T) {
	c := NewTextChunker(nil, logger.NewNop())
	files, err := c.Chunk(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestTextChunkerInvalidUTF8IsPerFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad.txt"), "\xff\xfe\xfd")
	writeFile(t, filepath.Join(root, "good.txt"), "fine")

	c := NewTextChunker(nil, logger.NewNop())
	files, err := c.Chunk(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.ErrorIs(t, files[0].Err, ErrSourceRead)
	require.Len(t, files[1].Chunks, 1)
	assert.Equal(t, "fine", files[1].Chunks[0].Text)
}

func TestTextChunkerMissingDirectory(t *testing.T) {
	c := NewTextChunker(nil, logger.NewNop())
	_, err := c.Chunk(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.ErrorIs(t, err, ErrSourceRead)
}
