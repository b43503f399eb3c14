// Package pipeline runs the sync steps against a prepared workspace and
// exposes them over HTTP.
//
// # Scopes
//
//   - books: library metadata and per-book reading sessions
//   - notes: highlights, notes and chapter headers
//   - readtime: account reading history and the heatmap embed
//   - all: the three steps above, in that order
//
// Every run first prepares the workspace (collections, settings record). An
// expired platform session stops the run at the step it occurred in; the
// steps record per-book failures in their reports and carry on.
//
// # HTTP Endpoints
//
//   - POST /sync/:scope : runs a scope and returns its report (?async=true
//     returns 202 immediately). Concurrent triggers of one scope share a run.
//   - GET /sync/status : the report of the last finished run.
package pipeline
