package rag

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"unicode"

	"github.com/Aleph-Alpha/ragcore/v1/boltdb"
	"github.com/Aleph-Alpha/ragcore/v1/chunker"
	"github.com/Aleph-Alpha/ragcore/v1/embedding"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/stretchr/testify/require"
)

const testDim = 256

// hashEmbedder is a deterministic bag-of-words embedder: identical texts map
// to identical vectors and texts sharing words are close.
type hashEmbedder struct {
	calls atomic.Int64
	fail  func(text string) bool
}

func (e *hashEmbedder) Model() string { return "hash-test" }

func (e *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.fail != nil && e.fail(text) {
		return nil, &embedding.Error{StatusCode: 500, Msg: "forced failure"}
	}

	vec := make([]float32, testDim)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%testDim]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / math.Sqrt(norm))
	}
	return vec, nil
}

type fakeDoc struct{ pages []string }

func (d fakeDoc) NumPages() int                  { return len(d.pages) }
func (d fakeDoc) PageText(i int) (string, error) { return d.pages[i], nil }
func (d fakeDoc) Close() error                   { return nil }

// pdfOpener serves page texts by file name; unknown files fail to open.
type pdfOpener struct {
	mu    sync.Mutex
	files map[string][]string
}

func (o *pdfOpener) Open(path string) (chunker.Document, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	pages, ok := o.files[filepath.Base(path)]
	if !ok {
		return nil, errors.New("corrupt pdf")
	}
	return fakeDoc{pages: pages}, nil
}

type harness struct {
	mgr      *Manager
	store    *vectordb.Store
	embedder *hashEmbedder
	opener   *pdfOpener
}

func newHarness(t *testing.T, cfg *Config) *harness {
	t.Helper()
	log := logger.NewNop()

	backend, err := boltdb.NewBackend(boltdb.Config{Path: t.TempDir(), DatabaseName: "rag_test"}, log)
	require.NoError(t, err)
	store := vectordb.NewStore(backend, log)
	t.Cleanup(func() { _ = store.Close() })

	emb := &hashEmbedder{}
	opener := &pdfOpener{files: map[string][]string{}}

	mgr, err := NewManager(Params{
		Store:    store,
		Embedder: emb,
		PDFs:     chunker.NewPDFChunker(opener, chunker.SkipPage, log),
		Texts:    chunker.NewTextChunker(nil, log),
		Logger:   log,
		Config:   cfg,
	})
	require.NoError(t, err)

	return &harness{mgr: mgr, store: store, embedder: emb, opener: opener}
}

// addPDF creates a placeholder file in dir and registers its page texts.
func (h *harness) addPDF(t *testing.T, dir, name string, pages ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o600))
	h.opener.mu.Lock()
	h.opener.files[name] = pages
	h.opener.mu.Unlock()
}

func writeText(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
