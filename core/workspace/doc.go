// Package workspace defines the target workspace model the sync writes into:
// collections of records with typed properties, and per-record trees of content blocks.
//
// # Client Interface
//
// Client abstracts the concrete store. Two implementations exist:
//
//   - core/workspace/notion: the Notion REST API.
//   - core/workspace/local: a gorm-backed mirror (MySQL or SQLite), also used as the
//     in-memory store in tests.
//
// Wrap any Client with NewRetryingClient to get bounded fixed-delay retries; the
// implementations themselves never retry.
//
// # Properties
//
// Properties are built with the constructors (Title, RichText, Number, Relation, ...)
// and read back with Properties.Text / Number / Int. Text values are capped at
// MaxTextLength runes.
//
// # Queries
//
// QueryCollection is paged; QueryAll follows the cursor to the end. Filters are a small
// tree (All of RelationContains / RichTextNotEmpty / TitleEquals / NumberEquals) that
// stores either translate to their native query language or evaluate with Filter.Match.
package workspace
