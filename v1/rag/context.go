package rag

import (
	"strings"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

const (
	// ContextPreamble opens every assembled context.
	ContextPreamble = "To provide some context, here are some relevant documents:\n\n"

	// NoMatchesMarker follows the preamble when retrieval found nothing.
	NoMatchesMarker = "No related documents were found.\n"
)

// FormatContext renders hits in rank order as one string for the agent.
func FormatContext(hits []vectordb.Hit) string {
	var b strings.Builder
	b.WriteString(ContextPreamble)

	if len(hits) == 0 {
		b.WriteString(NoMatchesMarker)
		return b.String()
	}

	for _, h := range hits {
		b.WriteString("Potentially related Document: ")
		b.WriteString(h.Text)
		b.WriteString("\nPage number: ")
		b.WriteString(h.Metadata.PageLabel())
		b.WriteString("\n\n")
	}
	return b.String()
}

// HasMatches reports whether a context produced by FormatContext carries at
// least one document.
func HasMatches(ctx string) bool {
	return strings.HasPrefix(ctx, ContextPreamble) && !strings.HasSuffix(ctx, NoMatchesMarker)
}
