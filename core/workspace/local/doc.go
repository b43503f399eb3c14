// Package local implements workspace.Client on top of gorm.
//
// Records live in workspace_records (properties as JSON, archived instead of deleted)
// and content blocks in workspace_blocks, ordered per parent by Position. Filters are
// evaluated in Go with workspace.Filter.Match; the query cursor is a plain offset.
//
// The same store serves as an offline mirror (MySQL or a SQLite file) and as the
// in-memory workspace of the engine tests:
//
//	ws, err := local.Open(database.Config{Driver: "sqlite", Name: ":memory:"})
package local
