package weread

import (
	"context"
	"errors"

	"weread-sync/core/retry"

	"go.uber.org/zap"
)

// RetryingClient re-issues failed calls under a fixed-delay policy. Expired
// sessions are never retried.
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

func call[T any](ctx context.Context, c *RetryingClient, op string, fn func() (T, error)) (T, error) {
	var out T
	attempt := 0
	err := c.policy.Do(ctx, func() error {
		attempt++
		v, err := fn()
		if err == nil {
			out = v
			return nil
		}
		if errors.Is(err, ErrAuthExpired) {
			return retry.Permanent(err)
		}
		c.logger.Warn("WeRead call failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return err
	})
	return out, err
}

func (c *RetryingClient) GetBookshelf(ctx context.Context) (*Shelf, error) {
	return call(ctx, c, "get_bookshelf", func() (*Shelf, error) { return c.inner.GetBookshelf(ctx) })
}

func (c *RetryingClient) GetNotebooks(ctx context.Context) ([]Notebook, error) {
	return call(ctx, c, "get_notebooks", func() ([]Notebook, error) { return c.inner.GetNotebooks(ctx) })
}

func (c *RetryingClient) GetBookInfo(ctx context.Context, bookID string) (*BookInfo, error) {
	return call(ctx, c, "get_book_info", func() (*BookInfo, error) { return c.inner.GetBookInfo(ctx, bookID) })
}

func (c *RetryingClient) GetReadInfo(ctx context.Context, bookID string) (*ReadInfo, error) {
	return call(ctx, c, "get_read_info", func() (*ReadInfo, error) { return c.inner.GetReadInfo(ctx, bookID) })
}

func (c *RetryingClient) GetBookmarks(ctx context.Context, bookID string) ([]Bookmark, error) {
	return call(ctx, c, "get_bookmarks", func() ([]Bookmark, error) { return c.inner.GetBookmarks(ctx, bookID) })
}

func (c *RetryingClient) GetReviews(ctx context.Context, bookID string) ([]Review, error) {
	return call(ctx, c, "get_reviews", func() ([]Review, error) { return c.inner.GetReviews(ctx, bookID) })
}

func (c *RetryingClient) GetChapters(ctx context.Context, bookID string) ([]Chapter, error) {
	return call(ctx, c, "get_chapters", func() ([]Chapter, error) { return c.inner.GetChapters(ctx, bookID) })
}

func (c *RetryingClient) GetReadingHistory(ctx context.Context) (map[int64]int64, error) {
	return call(ctx, c, "get_reading_history", func() (map[int64]int64, error) { return c.inner.GetReadingHistory(ctx) })
}
