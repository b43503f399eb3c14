// Package weread is the client of the WeRead reading platform.
//
// It reads the bookshelf, the notebook list, per-book metadata, reading state,
// highlights (bookmarks), notes (reviews), chapter tables and the reading-time
// history of one account, authenticated by a browser session cookie.
//
// # Errors
//
// Non-2xx answers and 2xx answers carrying an errcode become *APIError. The session
// error codes -2012 and -2010 match ErrAuthExpired:
//
//	if errors.Is(err, weread.ErrAuthExpired) {
//	    // refresh the cookie, nothing else will work
//	}
//
// # Retries
//
// HTTPClient performs each call once. NewRetryingClient adds the fixed-delay retry
// policy and never retries ErrAuthExpired.
//
// # Platform quirks
//
//   - The web homepage is loaded before every API call.
//   - Read info only answers with the mobile app headers.
//   - Whole-book reviews (type 4) carry no chapter; they are placed in the synthetic
//     chapter 1000000 ("点评"), which GetChapters appends to every chapter table.
package weread
