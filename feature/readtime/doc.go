// Package readtime mirrors the account-wide reading history into the day
// collection and points the heatmap embed at the configured image.
//
// Day records are shared with the calendar relations of highlights and books,
// so a day is found by its start timestamp whoever created it. Today is always
// present, with zero seconds until the platform reports otherwise.
package readtime
