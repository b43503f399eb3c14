package mocks

import (
	"context"

	"weread-sync/core/workspace"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of workspace.Client
type Client struct {
	mock.Mock
}

func (m *Client) QueryCollection(ctx context.Context, collectionID string, filter *workspace.Filter, cursor string) (*workspace.Page, error) {
	args := m.Called(ctx, collectionID, filter, cursor)
	if p, ok := args.Get(0).(*workspace.Page); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateRecord(ctx context.Context, collectionID string, rec workspace.Record) (*workspace.Record, error) {
	args := m.Called(ctx, collectionID, rec)
	if r, ok := args.Get(0).(*workspace.Record); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) UpdateRecord(ctx context.Context, rec workspace.Record) (*workspace.Record, error) {
	args := m.Called(ctx, rec)
	if r, ok := args.Get(0).(*workspace.Record); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) DeleteRecord(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Client) AppendBlocks(ctx context.Context, parentID string, blocks []workspace.Block, after string) ([]workspace.Block, error) {
	args := m.Called(ctx, parentID, blocks, after)
	if b, ok := args.Get(0).([]workspace.Block); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) DeleteBlock(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Client) RetrieveBlock(ctx context.Context, id string) (*workspace.Block, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*workspace.Block); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListChildren(ctx context.Context, id string) ([]workspace.Block, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).([]workspace.Block); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) UpdateBlock(ctx context.Context, block workspace.Block) error {
	args := m.Called(ctx, block)
	return args.Error(0)
}

func (m *Client) CreateCollection(ctx context.Context, parentID string, spec workspace.CollectionSpec) (string, error) {
	args := m.Called(ctx, parentID, spec)
	return args.String(0), args.Error(1)
}
