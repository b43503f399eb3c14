package workspace

import (
	"context"
	"errors"

	"weread-sync/core/retry"

	"go.uber.org/zap"
)

// RetryingClient wraps a Client and re-issues failed calls under a fixed-delay policy.
// Not-found errors are returned immediately.
type RetryingClient struct {
	inner  Client
	policy retry.Policy
	logger *zap.Logger
}

// NewRetryingClient decorates inner with policy.
func NewRetryingClient(inner Client, policy retry.Policy, logger *zap.Logger) *RetryingClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingClient{inner: inner, policy: policy, logger: logger}
}

func (c *RetryingClient) do(ctx context.Context, op string, fn func() error) error {
	attempt := 0
	return c.policy.Do(ctx, func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotFound) {
			return retry.Permanent(err)
		}
		c.logger.Warn("Workspace call failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return err
	})
}

func (c *RetryingClient) QueryCollection(ctx context.Context, collectionID string, filter *Filter, cursor string) (*Page, error) {
	var page *Page
	err := c.do(ctx, "query_collection", func() error {
		var err error
		page, err = c.inner.QueryCollection(ctx, collectionID, filter, cursor)
		return err
	})
	return page, err
}

func (c *RetryingClient) CreateRecord(ctx context.Context, collectionID string, rec Record) (*Record, error) {
	var out *Record
	err := c.do(ctx, "create_record", func() error {
		var err error
		out, err = c.inner.CreateRecord(ctx, collectionID, rec)
		return err
	})
	return out, err
}

func (c *RetryingClient) UpdateRecord(ctx context.Context, rec Record) (*Record, error) {
	var out *Record
	err := c.do(ctx, "update_record", func() error {
		var err error
		out, err = c.inner.UpdateRecord(ctx, rec)
		return err
	})
	return out, err
}

func (c *RetryingClient) DeleteRecord(ctx context.Context, id string) error {
	return c.do(ctx, "delete_record", func() error {
		return c.inner.DeleteRecord(ctx, id)
	})
}

func (c *RetryingClient) AppendBlocks(ctx context.Context, parentID string, blocks []Block, after string) ([]Block, error) {
	var out []Block
	err := c.do(ctx, "append_blocks", func() error {
		var err error
		out, err = c.inner.AppendBlocks(ctx, parentID, blocks, after)
		return err
	})
	return out, err
}

func (c *RetryingClient) DeleteBlock(ctx context.Context, id string) error {
	return c.do(ctx, "delete_block", func() error {
		return c.inner.DeleteBlock(ctx, id)
	})
}

func (c *RetryingClient) RetrieveBlock(ctx context.Context, id string) (*Block, error) {
	var out *Block
	err := c.do(ctx, "retrieve_block", func() error {
		var err error
		out, err = c.inner.RetrieveBlock(ctx, id)
		return err
	})
	return out, err
}

func (c *RetryingClient) ListChildren(ctx context.Context, id string) ([]Block, error) {
	var out []Block
	err := c.do(ctx, "list_children", func() error {
		var err error
		out, err = c.inner.ListChildren(ctx, id)
		return err
	})
	return out, err
}

func (c *RetryingClient) UpdateBlock(ctx context.Context, block Block) error {
	return c.do(ctx, "update_block", func() error {
		return c.inner.UpdateBlock(ctx, block)
	})
}

func (c *RetryingClient) CreateCollection(ctx context.Context, parentID string, spec CollectionSpec) (string, error) {
	var id string
	err := c.do(ctx, "create_collection", func() error {
		var err error
		id, err = c.inner.CreateCollection(ctx, parentID, spec)
		return err
	})
	return id, err
}
