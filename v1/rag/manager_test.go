package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Aleph-Alpha/ragcore/v1/embedding"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestTextsThenBuildContext(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	dir := t.TempDir()
	writeText(t, dir, "resume.txt", "Ilyan is an AI engineer with 5 years experience.")

	report, err := h.mgr.IngestTexts(ctx, dir, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Chunks)
	assert.Equal(t, 1, report.Ingested())

	out, err := h.mgr.BuildContext(ctx, "What is Ilyan's job?", "test")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, ContextPreamble))
	assert.Contains(t, out, "AI engineer")
	assert.Contains(t, out, "Page number: 0")
	assert.True(t, HasMatches(out))
}

func TestIngestPDFsIDsAndEmptyPages(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	dir := t.TempDir()
	h.addPDF(t, dir, "Ilyan CV.pdf", "Experience at Acme", "", "Education in Berlin", "  ")

	report, err := h.mgr.IngestPDFs(ctx, dir, "resume")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Chunks)
	require.Len(t, report.Files, 1)
	assert.Equal(t, 2, report.Files[0].EmptyPages)

	items, err := h.mgr.ListCollectionItems(ctx, "resume")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "ilyan_cv_page_0", items[0].ID)
	assert.Equal(t, "ilyan_cv_page_2", items[1].ID)
	assert.Equal(t, "Ilyan CV.pdf", items[1].Metadata.FileName)
	assert.Nil(t, items[0].Vector)
}

func TestIngestPDFsDistinctIDsForCollidingNames(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	dir := t.TempDir()
	h.addPDF(t, dir, "My CV.pdf", "Experience at Acme")
	h.addPDF(t, dir, "my_cv.pdf", "Education in Berlin")

	report, err := h.mgr.IngestPDFs(ctx, dir, "resume")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Chunks)

	items, err := h.mgr.ListCollectionItems(ctx, "resume")
	require.NoError(t, err)
	require.Len(t, items, 2)

	ids := map[string]string{}
	for _, it := range items {
		_, dup := ids[it.ID]
		assert.False(t, dup, "id %s stored twice", it.ID)
		ids[it.ID] = it.Metadata.FileName
	}
	assert.Equal(t, "My CV.pdf", ids["my_cv_page_0"])
	assert.Equal(t, "my_cv.pdf", ids["my_cv_2_page_0"])
}

func TestRetrieveTopKBoundsAndOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, &Config{TopK: 2})

	dir := t.TempDir()
	h.addPDF(t, dir, "doc.pdf",
		"golang services kubernetes",
		"python machine learning",
		"cooking pasta recipes",
		"golang concurrency channels",
	)
	_, err := h.mgr.IngestPDFs(ctx, dir, "c")
	require.NoError(t, err)

	ret, err := h.mgr.Retrieve(ctx, "golang", "c", 0)
	require.NoError(t, err)
	require.Len(t, ret.Hits, 2)
	for i := 1; i < len(ret.Hits); i++ {
		assert.LessOrEqual(t, ret.Hits[i-1].Distance, ret.Hits[i].Distance)
	}
	for _, doc := range ret.Documents() {
		assert.Contains(t, doc, "golang")
	}
	assert.Len(t, ret.Pages(), 2)

	ret, err = h.mgr.Retrieve(ctx, "golang", "c", 100)
	require.NoError(t, err)
	assert.Len(t, ret.Hits, 4)
}

func TestRetrieveExactTextRanksFirst(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	dir := t.TempDir()
	pages := []string{
		"Led the data platform team",
		"Built retrieval systems with vector search",
		"Speaks English and German",
	}
	h.addPDF(t, dir, "cv.pdf", pages...)
	_, err := h.mgr.IngestPDFs(ctx, dir, "c")
	require.NoError(t, err)

	for i, p := range pages {
		ret, err := h.mgr.Retrieve(ctx, p, "c", 1)
		require.NoError(t, err)
		require.Len(t, ret.Hits, 1)
		assert.Equal(t, fmt.Sprintf("cv_page_%d", i), ret.Hits[0].ID)
	}
}

func TestDeleteThenRetrieveFails(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	dir := t.TempDir()
	writeText(t, dir, "a.txt", "some text")
	_, err := h.mgr.IngestTexts(ctx, dir, "gone")
	require.NoError(t, err)

	require.NoError(t, h.mgr.DeleteCollection(ctx, "gone"))

	_, err = h.mgr.Retrieve(ctx, "text", "gone", 1)
	assert.ErrorIs(t, err, vectordb.ErrCollectionNotFound)

	err = h.mgr.DeleteCollection(ctx, "gone")
	assert.ErrorIs(t, err, vectordb.ErrCollectionNotFound)

	set, err := h.mgr.ListCollections(ctx)
	require.NoError(t, err)
	assert.NotContains(t, set, "gone")
}

func TestReingestAppendsDuplicates(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	dir := t.TempDir()
	h.addPDF(t, dir, "cv.pdf", "page one")

	_, err := h.mgr.IngestPDFs(ctx, dir, "c")
	require.NoError(t, err)
	_, err = h.mgr.IngestPDFs(ctx, dir, "c")
	require.NoError(t, err)

	items, err := h.mgr.ListCollectionItems(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSkipExistingLeavesCollectionUntouched(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	dir := t.TempDir()
	h.addPDF(t, dir, "cv.pdf", "page one")

	_, err := h.mgr.IngestPDFs(ctx, dir, "c")
	require.NoError(t, err)

	report, err := h.mgr.IngestPDFs(ctx, dir, "c", WithOnExisting(SkipExisting))
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Zero(t, report.Chunks)

	items, err := h.mgr.ListCollectionItems(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestErrorModes(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*harness, string) {
		h := newHarness(t, nil)
		dir := t.TempDir()
		h.addPDF(t, dir, "a.pdf", "first file")
		writeText(t, dir, "b.pdf", "not registered, fails to open")
		h.addPDF(t, dir, "c.pdf", "third file")
		return h, dir
	}

	t.Run("fail fast", func(t *testing.T) {
		h, dir := setup(t)
		report, err := h.mgr.IngestPDFs(ctx, dir, "c", WithErrorMode(FailFast))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "b.pdf")
		assert.Equal(t, 1, report.Chunks)
		assert.Len(t, report.Files, 2)
	})

	t.Run("best effort", func(t *testing.T) {
		h, dir := setup(t)
		report, err := h.mgr.IngestPDFs(ctx, dir, "c", WithErrorMode(BestEffort))
		require.NoError(t, err)
		assert.Equal(t, 2, report.Chunks)
		assert.Equal(t, 2, report.Ingested())
		assert.Error(t, report.Err())
	})
}

func TestEmbeddingFailureAbortsOnlyThatFile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	h.embedder.fail = func(text string) bool { return strings.Contains(text, "poison") }

	dir := t.TempDir()
	h.addPDF(t, dir, "a.pdf", "clean page", "poison page")
	h.addPDF(t, dir, "b.pdf", "another clean page")

	report, err := h.mgr.IngestPDFs(ctx, dir, "c", WithErrorMode(BestEffort))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Chunks)
	assert.ErrorIs(t, report.Files[0].Err, embedding.ErrEmbeddingFailure)

	n, err := h.mgr.ListCollectionItems(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, n, 1, "the failing file must not be partially stored")
}

func TestConcurrentEmbeddingKeepsOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, &Config{EmbedConcurrency: 4})

	dir := t.TempDir()
	words := strings.Fields("apple banana cherry dragon eagle falcon garnet harbor island jungle " +
		"kettle lemon marble needle orchid pepper quartz raven saddle tulip")
	pages := make([]string, len(words))
	for i, w := range words {
		pages[i] = "page about " + w
	}
	h.addPDF(t, dir, "big.pdf", pages...)

	_, err := h.mgr.IngestPDFs(ctx, dir, "c")
	require.NoError(t, err)

	for _, i := range []int{0, 7, 19} {
		ret, err := h.mgr.Retrieve(ctx, pages[i], "c", 1)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("big_page_%d", i), ret.Hits[0].ID)
	}
}

func TestCancelledIngestKeepsNothingNew(t *testing.T) {
	h := newHarness(t, nil)
	dir := t.TempDir()
	h.addPDF(t, dir, "a.pdf", "text")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.mgr.IngestPDFs(ctx, dir, "c")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIngestDirectoryUploadFlow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	dir := t.TempDir()
	h.addPDF(t, dir, "cv.pdf", "Work history", "Skills")
	writeText(t, dir, "notes.txt", "Ilyan likes distributed systems.")

	result := h.mgr.IngestDirectory(ctx, dir, "upload")
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.PDFCount)
	assert.Equal(t, 1, result.TextCount)
	assert.Equal(t, 3, result.Chunks)
	assert.Empty(t, result.Errors)

	writeText(t, dir, "broken.pdf", "garbage")
	result = h.mgr.IngestDirectory(ctx, dir, "upload")
	assert.False(t, result.Success)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.PDFCount)
}

func TestConcurrentIngestionsIntoSameCollection(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	dir := t.TempDir()
	h.addPDF(t, dir, "cv.pdf", "alpha", "beta")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.mgr.IngestPDFs(ctx, dir, "shared")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := h.mgr.ListCollectionItems(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, items, 10)
}

func TestBuildContextWithoutMatches(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)

	dir := t.TempDir()
	_, err := h.mgr.IngestTexts(ctx, dir, "empty")
	require.NoError(t, err)

	out, err := h.mgr.BuildContext(ctx, "anything", "empty")
	require.NoError(t, err)
	assert.Equal(t, ContextPreamble+NoMatchesMarker, out)
	assert.False(t, HasMatches(out))
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	_, err := NewManager(Params{Config: &Config{OnExisting: "overwrite"}})
	assert.Error(t, err)
}
