package reconcile

import (
	"context"
	"strconv"
	"strings"
	"time"

	"weread-sync/core/workspace"
)

// Kind is the record kind an entry belongs to.
type Kind string

const (
	// KindHighlight is a highlight (bookmark) keyed by bookmark id.
	KindHighlight Kind = "highlight"
	// KindNote is a note (review) keyed by review id.
	KindNote Kind = "note"
	// KindChapter is a chapter header keyed by chapter uid.
	KindChapter Kind = "chapter"
)

// Entry is one element of a content plan.
type Entry struct {
	// Kind is the record kind.
	Kind Kind `json:"kind"`

	// Key is the natural key assigned by the source.
	Key string `json:"key"`

	// ChapterUID is the chapter the entry belongs to (its own uid for headers).
	ChapterUID int64 `json:"chapter_uid"`

	// Range is the "start-end" text range, possibly empty or malformed.
	Range string `json:"range,omitempty"`

	// BlockID is the content node of the entry: the reference carried over from
	// a previous run, or the id of the node created by this run.
	BlockID string `json:"block_id,omitempty"`

	// RecordID is the record holding BlockID, set for entries matched by a
	// previous run.
	RecordID string `json:"record_id,omitempty"`

	// Block is the rendered content node, used only when the entry is new.
	Block workspace.Block `json:"-"`

	// Quote is nested under the created node when set.
	Quote string `json:"quote,omitempty"`

	// Source is the payload the entry was built from, handed back to the
	// RecordBuilder when the entry's record is persisted.
	Source any `json:"-"`
}

// RangeStart returns the start offset of Range, or 0 when it is absent or malformed.
func (e Entry) RangeStart() int64 {
	start, _, _ := strings.Cut(e.Range, "-")
	n, err := strconv.ParseInt(strings.TrimSpace(start), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// IsNew reports whether the entry has no content node yet.
func (e Entry) IsNew() bool {
	return e.BlockID == ""
}

// RecordBuilder returns the collection and record that persist a newly created
// entry. e.BlockID is already set to the created node.
type RecordBuilder func(ctx context.Context, e Entry) (collectionID string, rec workspace.Record, err error)

// Options tunes how the engine writes to the store.
type Options struct {
	// BatchSize is the number of nodes appended per call. Values outside 1..100
	// fall back to MaxBatchSize.
	BatchSize int

	// WriteDelay is the pause between two record writes.
	WriteDelay time.Duration

	// SkipEntry excludes new entries from the plan. Reused entries are never skipped.
	SkipEntry func(Entry) bool
}

// MaxBatchSize is the store's ceiling for nodes per append call.
const MaxBatchSize = 100

// DefaultWriteDelay throttles record writes into the store.
const DefaultWriteDelay = 100 * time.Millisecond

func (o Options) batchSize() int {
	if o.BatchSize <= 0 || o.BatchSize > MaxBatchSize {
		return MaxBatchSize
	}
	return o.BatchSize
}

// Diff classifies one kind's current source entries against the index.
type Diff struct {
	// Matched counts entries whose key was already synced.
	Matched int `json:"matched"`

	// New counts entries without a content node.
	New int `json:"new"`

	// Stale lists the previously synced keys missing from the source.
	Stale []Ref `json:"stale"`
}

// Result summarizes one Sync call.
type Result struct {
	// Matched counts entries (of every kind) whose node was carried over.
	Matched int `json:"matched"`

	// Created counts nodes created by this run.
	Created int `json:"created"`

	// Reused counts existing nodes used as anchors.
	Reused int `json:"reused"`

	// Skipped counts new entries excluded by Options.SkipEntry.
	Skipped int `json:"skipped"`

	// Restored counts matched entries whose node was gone and was created again.
	Restored int `json:"restored"`

	// Pruned counts stale keys removed from the store.
	Pruned int `json:"pruned"`

	// Appends counts batch append calls.
	Appends int `json:"appends"`

	// Persisted counts records written for created nodes.
	Persisted int `json:"persisted"`
}
