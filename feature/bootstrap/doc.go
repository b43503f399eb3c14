// Package bootstrap prepares the target workspace before a run.
//
// Prepare walks the root page for existing collections and the heatmap embed,
// creates every missing collection in dependency order (calendar buckets, then
// lookups, then books, then everything that points at books) and reads the
// settings record. Users toggle highlight colors, bookmark sync and the block
// style from that record; the values found there override configuration. The
// record never stores credentials.
package bootstrap
