package vectordb

import "strconv"

// Metadata describes where a stored text came from.
type Metadata struct {
	// Page is the zero-based page index for PDF chunks and the global chunk
	// sequence number for text chunks. Nil when unknown.
	Page *int `json:"page,omitempty"`

	// Source is the path of the file the text was read from.
	Source string `json:"source"`

	// FileName is the PDF file name with extension, or the stem of a text file.
	FileName string `json:"file_name"`
}

// PageLabel returns the page as a decimal string, or "n/a" when unknown.
func (m Metadata) PageLabel() string {
	if m.Page == nil {
		return "n/a"
	}
	return strconv.Itoa(*m.Page)
}

// PageOf is a convenience for building a Metadata.Page value.
func PageOf(n int) *int { return &n }

// Record is one stored entry of a collection.
type Record struct {
	// ID is the caller supplied chunk id. Not required to be unique.
	ID string `json:"id"`

	Text string `json:"text"`

	Vector []float32 `json:"vector,omitempty"`

	Metadata Metadata `json:"metadata"`
}

// Hit is a query result.
type Hit struct {
	ID string `json:"id"`

	Text string `json:"text"`

	Metadata Metadata `json:"metadata"`

	// Distance is the cosine distance (1 - cosine similarity) to the query.
	Distance float32 `json:"distance"`
}

// Batch carries parallel arrays of entries to add in one call. All four slices
// must have the same length.
type Batch struct {
	IDs       []string
	Vectors   [][]float32
	Texts     []string
	Metadatas []Metadata
}

// Len returns the number of entries, assuming the batch is well formed.
func (b Batch) Len() int { return len(b.IDs) }

// Records zips the parallel arrays. Call Validate first.
func (b Batch) Records() []Record {
	out := make([]Record, len(b.IDs))
	for i := range b.IDs {
		out[i] = Record{ID: b.IDs[i], Text: b.Texts[i], Vector: b.Vectors[i], Metadata: b.Metadatas[i]}
	}
	return out
}
