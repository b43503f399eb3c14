package reconcile

import (
	"context"
	"fmt"

	"weread-sync/core/workspace"
)

// Ref is a synced key with its content node and owning record.
type Ref struct {
	Key      string `json:"key"`
	BlockID  string `json:"block_id"`
	RecordID string `json:"record_id"`
}

// Index maps the natural keys synced by previous runs to their block
// references, and block references to the records holding them. Pop marks a
// key as matched; whatever remains afterwards is stale.
type Index struct {
	refs    map[string]string
	records map[string]string
	order   []string
	// dups holds records that are stale whatever the source holds.
	dups []Ref
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{refs: map[string]string{}, records: map[string]string{}}
}

// Add registers key. A key seen twice keeps its latest reference and the
// earlier one becomes stale, as does a record without a reference.
func (ix *Index) Add(key, blockID, recordID string) {
	if blockID == "" {
		ix.dups = append(ix.dups, Ref{Key: key, RecordID: recordID})
		return
	}
	if old, ok := ix.refs[key]; ok {
		ix.dups = append(ix.dups, Ref{Key: key, BlockID: old, RecordID: ix.records[old]})
		delete(ix.records, old)
	} else {
		ix.order = append(ix.order, key)
	}
	ix.refs[key] = blockID
	ix.records[blockID] = recordID
}

// Pop returns the block reference of key and removes it from the index.
func (ix *Index) Pop(key string) (string, bool) {
	ref, ok := ix.refs[key]
	if ok {
		delete(ix.refs, key)
	}
	return ref, ok
}

// Record returns the record holding a block reference.
func (ix *Index) Record(blockID string) (string, bool) {
	id, ok := ix.records[blockID]
	return id, ok
}

// Len returns the number of keys still in the index.
func (ix *Index) Len() int {
	return len(ix.refs)
}

// Stale returns the keys that were never popped, in load order, followed by
// shadowed duplicates and records without a reference.
func (ix *Index) Stale() []Ref {
	var out []Ref
	for _, key := range ix.order {
		ref, ok := ix.refs[key]
		if !ok {
			continue
		}
		out = append(out, Ref{Key: key, BlockID: ref, RecordID: ix.records[ref]})
	}
	return append(out, ix.dups...)
}

// KeyFunc extracts the natural key of a stored record.
type KeyFunc func(workspace.Record) string

// TextKey reads the key from a text property.
func TextKey(property string) KeyFunc {
	return func(r workspace.Record) string { return r.Properties.Text(property) }
}

// NumberKey reads the key from a number property.
func NumberKey(property string) KeyFunc {
	return func(r workspace.Record) string {
		n, ok := r.Properties.Number(property)
		if !ok {
			return ""
		}
		return workspace.FormatKey(int64(n))
	}
}

// BlockIDProperty holds the block reference on every synced record.
const BlockIDProperty = "blockId"

// LoadIndex builds an index from the records of collectionID matching filter.
// Records without a key are ignored.
func LoadIndex(ctx context.Context, client workspace.Client, collectionID string, filter *workspace.Filter, key KeyFunc) (*Index, error) {
	ix := NewIndex()
	if collectionID == "" {
		return ix, nil
	}
	records, err := workspace.QueryAll(ctx, client, collectionID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		ix.Add(k, r.Properties.Text(BlockIDProperty), r.ID)
	}
	return ix, nil
}
