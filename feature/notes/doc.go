// Package notes mirrors a book's highlights, notes and chapter headers into
// the content tree of its book record.
//
// A book is reconciled only when the platform's sort token differs from the
// one stored on the record by the previous note sync. Highlights and notes are
// rendered in the block style chosen in the workspace settings (callout by
// default) and colored by highlight color when enabled. Each created block is
// backed by a record in the highlight, note or chapter collection carrying its
// natural key and block reference, which is how the next run recognizes it.
package notes
