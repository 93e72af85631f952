package chunker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

// TextChunker splits every *.txt file below a directory with a
// RecursiveSplitter.
type TextChunker struct {
	splitter *RecursiveSplitter
	log      logger.Logger
}

func NewTextChunker(splitter *RecursiveSplitter, log logger.Logger) *TextChunker {
	if splitter == nil {
		splitter = NewRecursiveSplitter(DefaultChunkSize, DefaultChunkOverlap)
	}
	return &TextChunker{splitter: splitter, log: log}
}

// Chunk walks dir recursively. Chunk ids are <dir-stem>_chunk_<n>, where n
// counts chunks across all files of the call, so they are distinct within it.
// Metadata.Page carries the same n.
func (c *TextChunker) Chunk(ctx context.Context, dir string) ([]FileChunks, error) {
	files, err := listRecursive(dir, ".txt")
	if err != nil {
		return nil, err
	}

	prefix := dirStem(dir)
	seq := 0
	out := make([]FileChunks, 0, len(files))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		fc := FileChunks{Path: path}
		pieces, err := c.readAndSplit(path)
		if err != nil {
			fc.Err = err
			out = append(out, fc)
			continue
		}

		fileStem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for _, text := range pieces {
			fc.Chunks = append(fc.Chunks, Chunk{
				ID:   fmt.Sprintf("%s_chunk_%d", prefix, seq),
				Text: text,
				Metadata: vectordb.Metadata{
					Page:     vectordb.PageOf(seq),
					Source:   path,
					FileName: fileStem,
				},
			})
			seq++
		}

		c.log.Debug("text file chunked", nil, map[string]interface{}{"file": path, "chunks": len(pieces)})
		out = append(out, fc)
	}
	return out, nil
}

func (c *TextChunker) readAndSplit(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sourceErr(path, -1, err)
	}
	if !utf8.Valid(data) {
		return nil, sourceErr(path, -1, errors.New("file is not valid UTF-8"))
	}
	return c.splitter.Split(string(data)), nil
}

func dirStem(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return NormalizeStem(dir)
}
