package chunker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/ledongthuc/pdf"
)

// Document gives page-wise access to an opened PDF.
type Document interface {
	NumPages() int
	// PageText returns the text of the zero-based page i.
	PageText(i int) (string, error)
	Close() error
}

// PageOpener opens PDF files.
type PageOpener interface {
	Open(path string) (Document, error)
}

// PDFChunker produces one chunk per non-empty PDF page.
type PDFChunker struct {
	opener PageOpener
	mode   PageErrorMode
	log    logger.Logger
}

func NewPDFChunker(opener PageOpener, mode PageErrorMode, log logger.Logger) *PDFChunker {
	if opener == nil {
		opener = LedongthucOpener{}
	}
	if mode == "" {
		mode = SkipPage
	}
	return &PDFChunker{opener: opener, mode: mode, log: log}
}

// Chunk processes every *.pdf directly inside dir in name order. Per-file
// failures are reported in FileChunks.Err; the returned error is set only
// when dir cannot be listed or ctx is done.
func (c *PDFChunker) Chunk(ctx context.Context, dir string) ([]FileChunks, error) {
	files, err := listTopLevel(dir, ".pdf")
	if err != nil {
		return nil, err
	}

	stems := uniqueStems(files)
	out := make([]FileChunks, 0, len(files))
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		fc, err := c.chunkFile(ctx, path, stems[i])
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return out, err
		}
		fc.Err = err
		out = append(out, fc)
	}
	return out, nil
}

// ChunkFile splits a single PDF into page chunks with ids <stem>_page_<i>.
func (c *PDFChunker) ChunkFile(ctx context.Context, path string) (FileChunks, error) {
	return c.chunkFile(ctx, path, NormalizeStem(path))
}

func (c *PDFChunker) chunkFile(ctx context.Context, path, stem string) (fc FileChunks, err error) {
	fc.Path = path
	fileName := filepath.Base(path)

	doc, err := c.open(path)
	if err != nil {
		return fc, sourceErr(path, -1, err)
	}
	defer doc.Close()

	for i := 0; i < doc.NumPages(); i++ {
		if err := ctx.Err(); err != nil {
			return FileChunks{Path: path}, err
		}

		text, err := pageText(doc, i)
		if err != nil {
			if c.mode == FailFile {
				return FileChunks{Path: path}, sourceErr(path, i, err)
			}
			c.log.Warn("skipping unreadable pdf page", err, map[string]interface{}{"file": path, "page": i})
			fc.SkippedPages = append(fc.SkippedPages, i)
			continue
		}

		if strings.TrimSpace(text) == "" {
			fc.EmptyPages++
			continue
		}

		fc.Chunks = append(fc.Chunks, Chunk{
			ID:   fmt.Sprintf("%s_page_%d", stem, i),
			Text: text,
			Metadata: vectordb.Metadata{
				Page:     vectordb.PageOf(i),
				Source:   path,
				FileName: fileName,
			},
		})
	}

	c.log.Debug("pdf chunked", nil, map[string]interface{}{
		"file":          path,
		"pages":         doc.NumPages(),
		"chunks":        len(fc.Chunks),
		"empty_pages":   fc.EmptyPages,
		"skipped_pages": len(fc.SkippedPages),
	})
	return fc, nil
}

// uniqueStems assigns every file an id stem. Files whose names normalize to
// the same stem keep it in name order for the first one; later ones get _2,
// _3 and so on, skipping suffixes another file already owns.
func uniqueStems(files []string) []string {
	taken := make(map[string]bool, len(files))
	for _, path := range files {
		taken[NormalizeStem(path)] = false
	}

	out := make([]string, len(files))
	for i, path := range files {
		stem := NormalizeStem(path)
		if taken[stem] {
			for n := 2; ; n++ {
				candidate := fmt.Sprintf("%s_%d", stem, n)
				if _, exists := taken[candidate]; !exists {
					stem = candidate
					break
				}
			}
		}
		taken[stem] = true
		out[i] = stem
	}
	return out
}

func (c *PDFChunker) open(path string) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdf parser panic: %v", r)
		}
	}()
	return c.opener.Open(path)
}

func pageText(doc Document, i int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parser panic: %v", r)
		}
	}()
	return doc.PageText(i)
}

// LedongthucOpener reads PDFs with github.com/ledongthuc/pdf.
type LedongthucOpener struct{}

func (LedongthucOpener) Open(path string) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	return &ledongthucDocument{closer: f.Close, reader: r}, nil
}

type ledongthucDocument struct {
	closer func() error
	reader *pdf.Reader
}

func (d *ledongthucDocument) NumPages() int { return d.reader.NumPage() }

func (d *ledongthucDocument) PageText(i int) (string, error) {
	p := d.reader.Page(i + 1)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func (d *ledongthucDocument) Close() error { return d.closer() }
