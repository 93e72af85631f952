// Package chunker turns directories of PDF and text files into chunks.
//
// PDFs (*.pdf directly inside the directory) yield one chunk per non-empty
// page, with id <file-stem>_page_<page>. Text files (*.txt anywhere below the
// directory) are split with a recursive character splitter that prefers
// paragraph, line and word boundaries; ids are <dir-stem>_chunk_<n> with n
// counted across the whole call.
//
// Unreadable files do not stop a run. They come back as FileChunks with Err
// set to a *SourceError, and the caller decides whether that is fatal.
package chunker
