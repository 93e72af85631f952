package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

const previewRunes = 60

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, r *rag.IngestReport) error {
	if flagJSON {
		return printJSON(w, r)
	}
	if r.Skipped {
		_, err := fmt.Fprintf(w, "collection %q exists, nothing ingested\n", r.Collection)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tCHUNKS\tSTATUS")
	for _, f := range r.Files {
		status := "ok"
		if f.Err != nil {
			status = f.Err.Error()
		} else if len(f.SkippedPages) > 0 {
			status = fmt.Sprintf("ok, skipped pages %v", f.SkippedPages)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", f.Path, f.Chunks, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d %s file(s) ingested into %q, %d chunk(s)\n",
		r.Ingested(), len(r.Files), r.Kind, r.Collection, r.Chunks)
	return err
}

func printUploadResult(w io.Writer, r *rag.UploadResult) error {
	if flagJSON {
		return printJSON(w, r)
	}
	fmt.Fprintf(w, "pdf files:  %d\ntext files: %d\nchunks:     %d\n", r.PDFCount, r.TextCount, r.Chunks)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}
	return nil
}

func printItems(w io.Writer, items []vectordb.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tPAGE\tTEXT")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Metadata.FileName, it.Metadata.PageLabel(), preview(it.Text))
	}
	return tw.Flush()
}

// preview flattens text to one line of at most previewRunes runes.
func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= previewRunes {
		return text
	}
	return string(r[:previewRunes-1]) + "…"
}
