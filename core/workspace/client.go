package workspace

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record or block does not exist.
var ErrNotFound = errors.New("workspace: not found")

// PageSize is the number of records requested per query page.
const PageSize = 100

// Client defines the operations the sync needs from the target workspace.
type Client interface {
	// QueryCollection returns one page of records matching filter. cursor is empty for the first page.
	QueryCollection(ctx context.Context, collectionID string, filter *Filter, cursor string) (*Page, error)
	// CreateRecord creates a record in a collection and returns it with its id.
	CreateRecord(ctx context.Context, collectionID string, rec Record) (*Record, error)
	// UpdateRecord overwrites the given properties (and icon/cover when set) of rec.ID.
	UpdateRecord(ctx context.Context, rec Record) (*Record, error)
	// DeleteRecord removes (archives) a record.
	DeleteRecord(ctx context.Context, id string) error
	// AppendBlocks appends blocks as children of parentID, after the child `after`
	// when set, and returns the created blocks in order.
	AppendBlocks(ctx context.Context, parentID string, blocks []Block, after string) ([]Block, error)
	// DeleteBlock removes a block.
	DeleteBlock(ctx context.Context, id string) error
	// RetrieveBlock returns a block with its parent reference.
	RetrieveBlock(ctx context.Context, id string) (*Block, error)
	// ListChildren returns the direct children of a record or block in order.
	ListChildren(ctx context.Context, id string) ([]Block, error)
	// UpdateBlock updates the content of an existing block.
	UpdateBlock(ctx context.Context, block Block) error
	// CreateCollection creates a collection below parentID and returns its id.
	CreateCollection(ctx context.Context, parentID string, spec CollectionSpec) (string, error)
}

// QueryAll follows the query cursor until every matching record is collected.
func QueryAll(ctx context.Context, c Client, collectionID string, filter *Filter) ([]Record, error) {
	var (
		all    []Record
		cursor string
	)
	for {
		page, err := c.QueryCollection(ctx, collectionID, filter, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to query collection %s: %w", collectionID, err)
		}
		all = append(all, page.Records...)
		if !page.HasMore || page.NextCursor == "" {
			return all, nil
		}
		cursor = page.NextCursor
	}
}
