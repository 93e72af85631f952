package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEmbeddings(t *testing.T) *httptest.Server {
	t.Helper()
	keywords := []string{"go", "berlin", "python", "paris"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		text := strings.ToLower(body.Input[0])
		vec := make([]float32, len(keywords)+1)
		vec[len(keywords)] = 0.01
		for i, kw := range keywords {
			if strings.Contains(text, kw) {
				vec[i] = 1
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"index": 0, "embedding": vec}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// run executes the command tree like main does, with flag state reset.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	flagJSON = false
	flagCollection, flagContextCollection = "", ""
	flagTopK = 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsAgainstBolt(t *testing.T) {
	srv := fakeEmbeddings(t)
	dir := t.TempDir()
	t.Chdir(dir)

	cfgPath := filepath.Join(dir, "ragcore.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
embedding: {endpoint: %q, model: keyword}
boltdb: {path: ./index}
logger: {level: error}
`, srv.URL+"/v1")), 0o600))

	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.Mkdir(docs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "alice.txt"), []byte("Alice writes Go in Berlin."), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "bob.txt"), []byte("Bob writes Python in Paris."), 0o600))

	out, err := run(t, "--config", cfgPath, "ingest", "text", docs, "--collection", "people")
	require.NoError(t, err, out)
	assert.Contains(t, out, `2 of 2 text file(s) ingested into "people"`)

	out, err = run(t, "--config", cfgPath, "collections", "list", "--json")
	require.NoError(t, err, out)
	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Equal(t, []string{"people"}, names)

	out, err = run(t, "--config", cfgPath, "context", "who", "codes", "go", "in", "berlin", "--collection", "people", "-k", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Alice")
	assert.NotContains(t, out, "Bob")

	out, err = run(t, "--config", cfgPath, "collections", "items", "people")
	require.NoError(t, err, out)
	assert.Contains(t, out, "alice")

	_, err = run(t, "--config", cfgPath, "collections", "delete", "people")
	require.NoError(t, err)

	_, err = run(t, "--config", cfgPath, "collections", "delete", "people")
	assert.ErrorIs(t, err, vectordb.ErrCollectionNotFound)
}

func TestIngestOptionsOnlyUsesChangedFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&flagOnExisting, "on-existing", string(rag.AppendToExisting), "")
	cmd.Flags().StringVar(&flagErrorMode, "error-mode", string(rag.FailFast), "")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 1, "")

	opts, err := ingestOptions(cmd)
	require.NoError(t, err)
	assert.Empty(t, opts)

	require.NoError(t, cmd.Flags().Set("on-existing", "skip"))
	require.NoError(t, cmd.Flags().Set("concurrency", "4"))
	opts, err = ingestOptions(cmd)
	require.NoError(t, err)
	require.Len(t, opts, 2)

	var cfg rag.Config
	for _, o := range opts {
		o(&cfg)
	}
	assert.Equal(t, rag.SkipExisting, cfg.OnExisting)
	assert.Equal(t, 4, cfg.EmbedConcurrency)

	require.NoError(t, cmd.Flags().Set("error-mode", "sometimes"))
	_, err = ingestOptions(cmd)
	assert.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	flagJSON = false
	report := &rag.IngestReport{
		Collection: "cv",
		Kind:       "pdf",
		Chunks:     3,
		Files: []rag.FileReport{
			{Path: "a.pdf", Chunks: 3, SkippedPages: []int{1}},
			{Path: "b.pdf", Err: errors.New("broken xref")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, report))
	out := buf.String()
	assert.Contains(t, out, "skipped pages [1]")
	assert.Contains(t, out, "broken xref")
	assert.Contains(t, out, `1 of 2 pdf file(s) ingested into "cv", 3 chunk(s)`)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview("a\n b\t\tc"))

	long := strings.Repeat("é", 100)
	p := preview(long)
	assert.Len(t, []rune(p), previewRunes)
	assert.True(t, strings.HasSuffix(p, "…"))
}

func TestJobCommandsRequireBroker(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfgPath := filepath.Join(dir, "ragcore.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("embedding: {endpoint: \"http://embed.invalid/v1\"}\n"), 0o600))

	_, err := run(t, "--config", cfgPath, "enqueue", "--prefix", "batch/")
	assert.ErrorIs(t, err, errNoBroker)

	_, err = run(t, "--config", cfgPath, "worker")
	assert.ErrorIs(t, err, errNoBroker)
}
