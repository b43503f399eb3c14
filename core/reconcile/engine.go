package reconcile

import (
	"context"
	"errors"
	"fmt"

	"weread-sync/core/retry"
	"weread-sync/core/workspace"

	"go.uber.org/zap"
)

// Stream is the current source state of one record kind together with where
// its previously synced records live.
type Stream struct {
	// Entries are the current source entries.
	Entries []Entry

	// CollectionID holds the synced records. Empty means nothing was synced.
	CollectionID string

	// Filter selects the records of the parent being synced.
	Filter *workspace.Filter

	// Key extracts the natural key of a stored record.
	Key KeyFunc
}

func (s Stream) index(ctx context.Context, client workspace.Client) (*Index, error) {
	if s.Key == nil {
		return NewIndex(), nil
	}
	return LoadIndex(ctx, client, s.CollectionID, s.Filter, s.Key)
}

// Request is the work for one parent record.
type Request struct {
	// ParentID is the record owning the content tree.
	ParentID string

	Highlights Stream
	Notes      Stream

	// Chapters is the chapter table. Nil or empty means no headers.
	Chapters *Stream

	// Build persists created entries.
	Build RecordBuilder
}

// Engine reconciles a content tree against the current source state.
type Engine struct {
	client workspace.Client
	opts   Options
	logger *zap.Logger
}

// NewEngine creates an engine writing through client.
func NewEngine(client workspace.Client, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{client: client, opts: opts, logger: logger}
}

// Diffs holds the per-kind diff of one request.
type Diffs struct {
	Highlights Diff `json:"highlights"`
	Notes      Diff `json:"notes"`
	Chapters   Diff `json:"chapters"`
}

// Preview diffs the request against the store without writing. The returned
// plan lists every entry in document order; entries with a BlockID are anchors.
func (e *Engine) Preview(ctx context.Context, req Request) ([]Entry, *Diffs, error) {
	diffs := &Diffs{}
	var merged []Entry
	for _, kind := range []struct {
		stream Stream
		diff   *Diff
	}{
		{req.Highlights, &diffs.Highlights},
		{req.Notes, &diffs.Notes},
	} {
		ix, err := kind.stream.index(ctx, e.client)
		if err != nil {
			return nil, nil, err
		}
		entries := append([]Entry(nil), kind.stream.Entries...)
		*kind.diff = Partition(entries, ix)
		merged = append(merged, entries...)
	}
	SortEntries(merged)

	if req.Chapters == nil || len(req.Chapters.Entries) == 0 {
		return merged, diffs, nil
	}
	ix, err := req.Chapters.index(ctx, e.client)
	if err != nil {
		return nil, nil, err
	}
	plan, diff := BuildPlan(merged, req.Chapters.Entries, ix)
	diffs.Chapters = diff
	return plan, diffs, nil
}

// Plan previews the request and prunes every stale key.
func (e *Engine) Plan(ctx context.Context, req Request, res *Result) ([]Entry, error) {
	plan, diffs, err := e.Preview(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, d := range []Diff{diffs.Highlights, diffs.Notes, diffs.Chapters} {
		res.Matched += d.Matched
		if err := e.prune(ctx, d.Stale, res); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// Sync plans the request, appends new nodes after their nearest anchor and
// persists a record for every created node. Each batch's records are written
// right after the batch, so a failure leaves no node without its record and
// the next run picks up where this one stopped.
func (e *Engine) Sync(ctx context.Context, req Request) (*Result, error) {
	if req.Build == nil {
		return nil, errors.New("reconcile: request has no record builder")
	}

	res := &Result{}
	plan, err := e.Plan(ctx, req, res)
	if err != nil {
		return res, err
	}

	if _, err := e.Apply(ctx, req.ParentID, plan, req.Build, res); err != nil {
		return res, err
	}

	e.logger.Debug("Content reconciled",
		zap.String("parent_id", req.ParentID),
		zap.Int("matched", res.Matched),
		zap.Int("created", res.Created),
		zap.Int("restored", res.Restored),
		zap.Int("pruned", res.Pruned),
		zap.Int("appends", res.Appends))
	return res, nil
}

// Apply appends the new entries of plan under parentID and returns them, in
// plan order, with their BlockID set. When build is not nil the records of each
// batch are persisted before the next batch is appended.
func (e *Engine) Apply(ctx context.Context, parentID string, plan []Entry, build RecordBuilder, res *Result) ([]Entry, error) {
	anchor, err := e.ensureTableOfContents(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if err := e.restore(ctx, plan, res); err != nil {
		return nil, err
	}

	var (
		created []Entry
		pending []Entry
		size    = e.opts.batchSize()
	)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		out, err := e.appendBatch(ctx, parentID, pending, anchor)
		if len(out) > 0 {
			res.Appends++
			res.Created += len(out)
			anchor = out[len(out)-1].BlockID
			created = append(created, out...)
			pending = pending[:0]
			if perr := e.persist(ctx, out, build, res); perr != nil {
				return perr
			}
		}
		return err
	}

	for _, entry := range plan {
		if !entry.IsNew() {
			if err := flush(); err != nil {
				return created, err
			}
			anchor = entry.BlockID
			res.Reused++
			continue
		}
		if e.opts.SkipEntry != nil && e.opts.SkipEntry(entry) {
			res.Skipped++
			continue
		}
		pending = append(pending, entry)
		if len(pending) == size {
			if err := flush(); err != nil {
				return created, err
			}
		}
	}
	if err := flush(); err != nil {
		return created, err
	}
	return created, nil
}

// appendBatch appends batch after anchor. The created entries are returned even
// when nesting a quote fails, so their records can still be persisted.
func (e *Engine) appendBatch(ctx context.Context, parentID string, batch []Entry, anchor string) ([]Entry, error) {
	after, err := e.topLevel(ctx, anchor)
	if err != nil {
		return nil, err
	}

	blocks := make([]workspace.Block, len(batch))
	for i, entry := range batch {
		blocks[i] = entry.Block
	}
	nodes, err := e.client.AppendBlocks(ctx, parentID, blocks, after)
	if err != nil {
		return nil, fmt.Errorf("failed to append %d blocks: %w", len(blocks), err)
	}
	if len(nodes) != len(batch) {
		return nil, fmt.Errorf("failed to append blocks: store returned %d of %d", len(nodes), len(batch))
	}

	out := make([]Entry, len(batch))
	for i, entry := range batch {
		entry.BlockID = nodes[i].ID
		out[i] = entry
	}
	for _, entry := range out {
		if entry.Quote == "" {
			continue
		}
		if _, err := e.client.AppendBlocks(ctx, entry.BlockID, []workspace.Block{workspace.Quote(entry.Quote)}, ""); err != nil {
			return out, fmt.Errorf("failed to append quote of %s: %w", entry.Key, err)
		}
	}
	return out, nil
}

// persist writes the record of each created entry, pausing between writes.
func (e *Engine) persist(ctx context.Context, created []Entry, build RecordBuilder, res *Result) error {
	if build == nil {
		return nil
	}
	for _, entry := range created {
		if res.Persisted > 0 {
			if err := retry.Wait(ctx, e.opts.WriteDelay); err != nil {
				return err
			}
		}
		collectionID, rec, err := build(ctx, entry)
		if err != nil {
			return fmt.Errorf("failed to build record for %s %s: %w", entry.Kind, entry.Key, err)
		}
		if _, err := e.client.CreateRecord(ctx, collectionID, rec); err != nil {
			return fmt.Errorf("failed to persist %s %s: %w", entry.Kind, entry.Key, err)
		}
		res.Persisted++
	}
	return nil
}

// restore turns reused entries whose node was removed by hand back into new
// entries and deletes their records. Only entries anchoring a new entry are
// checked; walking backwards lets a restored entry expose its predecessor.
func (e *Engine) restore(ctx context.Context, plan []Entry, res *Result) error {
	for i := len(plan) - 2; i >= 0; i-- {
		entry := &plan[i]
		if entry.IsNew() || !plan[i+1].IsNew() {
			continue
		}
		_, err := e.client.RetrieveBlock(ctx, entry.BlockID)
		if err == nil {
			continue
		}
		if !errors.Is(err, workspace.ErrNotFound) {
			return fmt.Errorf("failed to resolve anchor %s: %w", entry.BlockID, err)
		}
		if entry.RecordID != "" {
			if err := e.client.DeleteRecord(ctx, entry.RecordID); err != nil && !errors.Is(err, workspace.ErrNotFound) {
				return fmt.Errorf("failed to delete record of %s: %w", entry.Key, err)
			}
		}
		e.logger.Warn("Synced node is gone, recreating",
			zap.String("kind", string(entry.Kind)),
			zap.String("key", entry.Key),
			zap.String("block_id", entry.BlockID))
		entry.BlockID = ""
		entry.RecordID = ""
		res.Restored++
	}
	return nil
}

// topLevel climbs from a nested anchor to its ancestor directly under the record.
func (e *Engine) topLevel(ctx context.Context, anchor string) (string, error) {
	for anchor != "" {
		b, err := e.client.RetrieveBlock(ctx, anchor)
		if err != nil {
			return "", fmt.Errorf("failed to resolve anchor %s: %w", anchor, err)
		}
		if !b.ParentIsBlock {
			return anchor, nil
		}
		anchor = b.ParentID
	}
	return anchor, nil
}

// ensureTableOfContents returns the table of contents of parentID, creating it
// when the tree has none.
func (e *Engine) ensureTableOfContents(ctx context.Context, parentID string) (string, error) {
	children, err := e.client.ListChildren(ctx, parentID)
	if err != nil {
		return "", fmt.Errorf("failed to list content of %s: %w", parentID, err)
	}
	for _, child := range children {
		if child.Type == workspace.BlockTableOfContents {
			return child.ID, nil
		}
	}

	nodes, err := e.client.AppendBlocks(ctx, parentID, []workspace.Block{workspace.TableOfContents()}, "")
	if err != nil {
		return "", fmt.Errorf("failed to create table of contents: %w", err)
	}
	if len(nodes) == 0 {
		return "", errors.New("failed to create table of contents: store returned no block")
	}
	return nodes[0].ID, nil
}

// prune deletes the content node of each stale key, then its record. Nodes or
// records already removed by hand are skipped.
func (e *Engine) prune(ctx context.Context, stale []Ref, res *Result) error {
	for _, ref := range stale {
		if ref.BlockID != "" {
			if err := e.client.DeleteBlock(ctx, ref.BlockID); err != nil && !errors.Is(err, workspace.ErrNotFound) {
				return fmt.Errorf("failed to delete block of %s: %w", ref.Key, err)
			}
		}
		if ref.RecordID != "" {
			if err := e.client.DeleteRecord(ctx, ref.RecordID); err != nil && !errors.Is(err, workspace.ErrNotFound) {
				return fmt.Errorf("failed to delete record of %s: %w", ref.Key, err)
			}
		}
		res.Pruned++
	}
	return nil
}
