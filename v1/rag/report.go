package rag

import "errors"

// FileReport is the outcome of ingesting one source file.
type FileReport struct {
	Path         string `json:"path"`
	Chunks       int    `json:"chunks"`
	EmptyPages   int    `json:"empty_pages,omitempty"`
	SkippedPages []int  `json:"skipped_pages,omitempty"`
	Err          error  `json:"-"`
}

// IngestReport summarizes one IngestPDFs or IngestTexts call. It is returned
// even when the call fails, so partial progress stays visible.
type IngestReport struct {
	Collection string       `json:"collection"`
	Kind       string       `json:"kind"`
	Files      []FileReport `json:"files"`

	// Chunks counts chunks durably added.
	Chunks int `json:"chunks"`

	// Skipped is set when SkipExisting left an existing collection untouched.
	Skipped bool `json:"skipped,omitempty"`
}

// Ingested returns the number of files whose chunks were stored.
func (r *IngestReport) Ingested() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Err joins all per-file errors, or returns nil.
func (r *IngestReport) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

// UploadResult is the outcome of IngestDirectory, shaped for the upload API.
type UploadResult struct {
	// PDFCount and TextCount count files whose chunks were stored.
	PDFCount  int      `json:"pdf_count"`
	TextCount int      `json:"text_count"`
	Chunks    int      `json:"chunks"`
	Errors    []string `json:"errors"`
	Success   bool     `json:"success"`
}

func (u *UploadResult) addError(err error) {
	if err != nil {
		u.Errors = append(u.Errors, err.Error())
	}
}
