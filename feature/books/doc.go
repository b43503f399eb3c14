// Package books mirrors the reading platform's library into the book
// collection.
//
// Only books whose state moved since the last run are fetched again: a book
// is skipped when its reading time and shelf folder match the stored record,
// a cover is stored and, once finished, a rating is stored. Fields such as the
// title, authors and categories are written when a record is created and never
// recomputed. After each upsert the book's per-day reading times are mirrored
// into the reading collection.
package books
