package mocks

import (
	"context"

	"weread-sync/core/weread"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of weread.Client
type Client struct {
	mock.Mock
}

func (m *Client) GetBookshelf(ctx context.Context) (*weread.Shelf, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*weread.Shelf); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetNotebooks(ctx context.Context) ([]weread.Notebook, error) {
	args := m.Called(ctx)
	if n, ok := args.Get(0).([]weread.Notebook); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetBookInfo(ctx context.Context, bookID string) (*weread.BookInfo, error) {
	args := m.Called(ctx, bookID)
	if b, ok := args.Get(0).(*weread.BookInfo); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetReadInfo(ctx context.Context, bookID string) (*weread.ReadInfo, error) {
	args := m.Called(ctx, bookID)
	if r, ok := args.Get(0).(*weread.ReadInfo); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetBookmarks(ctx context.Context, bookID string) ([]weread.Bookmark, error) {
	args := m.Called(ctx, bookID)
	if b, ok := args.Get(0).([]weread.Bookmark); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetReviews(ctx context.Context, bookID string) ([]weread.Review, error) {
	args := m.Called(ctx, bookID)
	if r, ok := args.Get(0).([]weread.Review); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetChapters(ctx context.Context, bookID string) ([]weread.Chapter, error) {
	args := m.Called(ctx, bookID)
	if c, ok := args.Get(0).([]weread.Chapter); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetReadingHistory(ctx context.Context) (map[int64]int64, error) {
	args := m.Called(ctx)
	if h, ok := args.Get(0).(map[int64]int64); ok {
		return h, args.Error(1)
	}
	return nil, args.Error(1)
}
