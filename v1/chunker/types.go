package chunker

import (
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

// Chunk is one unit of text ready to be embedded.
type Chunk struct {
	ID       string
	Text     string
	Metadata vectordb.Metadata
}

// FileChunks is the outcome of chunking one source file. Err is set when the
// file could not be processed; Chunks is then empty.
type FileChunks struct {
	Path   string
	Chunks []Chunk

	// EmptyPages counts PDF pages without extractable text.
	EmptyPages int

	// SkippedPages lists zero-based PDF pages whose extraction failed.
	SkippedPages []int

	Err error
}

// ErrSourceRead matches every *SourceError.
var ErrSourceRead = errors.New("source read failure")

// SourceError reports an unreadable directory, file or page. Page is -1 when
// the error is not tied to a single page.
type SourceError struct {
	Path string
	Page int
	Err  error
}

func (e *SourceError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("chunker: read %s page %d: %v", e.Path, e.Page, e.Err)
	}
	return fmt.Sprintf("chunker: read %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func (e *SourceError) Is(target error) bool { return target == ErrSourceRead }

func sourceErr(path string, page int, err error) *SourceError {
	return &SourceError{Path: path, Page: page, Err: err}
}
