// Package reconcile keeps the content tree of a record convergent with the
// current source state across repeated runs.
//
// Every synced highlight, note and chapter header owns one content node. The
// node id (block reference) is stored on the entry's record next to its natural
// key, and is the only join key used on the next run.
//
// # Planning
//
// For each record kind the engine loads an Index of the previous run
// (natural key to block reference, block reference to record id), then:
//
//  1. Partition carries references forward for keys still present at the
//     source and pops them from the index.
//  2. Keys left in the index are stale: their node is deleted first, then their
//     record.
//  3. Highlights and notes are merged and sorted by (chapter uid, range start).
//  4. BuildPlan groups the sorted entries by chapter and puts each chapter's
//     header in front of its group. Headers with no entries left are stale.
//
// # Applying
//
// Apply walks the plan in document order. Entries with a reference are
// anchors; new entries are collected into batches of at most 100 nodes, each
// appended right after the latest anchor (reused or just created), so order
// holds across batch boundaries. A table of contents node is kept in the tree
// and anchors the first batch. Quotes are nested under their note's node.
//
// Records are written only after their node exists, one at a time with a fixed
// delay, so a record never references a node that was not created. A failure
// stops the current parent; the next run sees committed nodes as synced.
//
// # Usage
//
//	engine := reconcile.NewEngine(client, reconcile.Options{WriteDelay: reconcile.DefaultWriteDelay}, logger)
//	res, err := engine.Sync(ctx, reconcile.Request{
//	    ParentID:   bookPageID,
//	    Highlights: reconcile.Stream{Entries: highlights, CollectionID: bookmarksID, Filter: filter, Key: reconcile.TextKey("bookmarkId")},
//	    Notes:      reconcile.Stream{Entries: notes, CollectionID: reviewsID, Filter: filter, Key: reconcile.TextKey("reviewId")},
//	    Chapters:   &reconcile.Stream{Entries: chapters, CollectionID: chaptersID, Filter: bookFilter, Key: reconcile.NumberKey("chapterUid")},
//	    Build:      buildRecord,
//	})
package reconcile
