package notion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weread-sync/core/workspace"

	"github.com/segmentio/encoding/json"
)

// Client implements workspace.Client over the Notion REST API. It never retries;
// wrap it with workspace.NewRetryingClient.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// New creates a Notion client.
func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		token:   cfg.Token,
		baseURL: base,
		http:    &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		apiErr.Status = resp.StatusCode
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", workspace.ErrNotFound, apiErr.Error())
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) QueryCollection(ctx context.Context, collectionID string, filter *workspace.Filter, cursor string) (*workspace.Page, error) {
	body := map[string]any{"page_size": workspace.PageSize}
	if filter != nil {
		body["filter"] = encodeFilter(*filter)
	}
	if cursor != "" {
		body["start_cursor"] = cursor
	}

	var resp struct {
		Results    []pageObject `json:"results"`
		NextCursor *string      `json:"next_cursor"`
		HasMore    bool         `json:"has_more"`
	}
	if err := c.do(ctx, http.MethodPost, "/databases/"+collectionID+"/query", body, &resp); err != nil {
		return nil, err
	}

	page := &workspace.Page{HasMore: resp.HasMore}
	if resp.NextCursor != nil {
		page.NextCursor = *resp.NextCursor
	}
	for _, p := range resp.Results {
		page.Records = append(page.Records, p.record())
	}
	return page, nil
}

func (c *Client) CreateRecord(ctx context.Context, collectionID string, rec workspace.Record) (*workspace.Record, error) {
	body := map[string]any{
		"parent":     map[string]any{"database_id": collectionID},
		"properties": encodeProperties(rec.Properties),
	}
	addIconCover(body, rec)

	var resp pageObject
	if err := c.do(ctx, http.MethodPost, "/pages", body, &resp); err != nil {
		return nil, err
	}
	out := resp.record()
	return &out, nil
}

func (c *Client) UpdateRecord(ctx context.Context, rec workspace.Record) (*workspace.Record, error) {
	body := map[string]any{"properties": encodeProperties(rec.Properties)}
	addIconCover(body, rec)

	var resp pageObject
	if err := c.do(ctx, http.MethodPatch, "/pages/"+rec.ID, body, &resp); err != nil {
		return nil, err
	}
	out := resp.record()
	return &out, nil
}

// DeleteRecord archives the page.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/pages/"+id, map[string]any{"archived": true}, nil)
}

func (c *Client) AppendBlocks(ctx context.Context, parentID string, blocks []workspace.Block, after string) ([]workspace.Block, error) {
	children := make([]map[string]any, len(blocks))
	for i, b := range blocks {
		children[i] = encodeBlock(b)
	}
	body := map[string]any{"children": children}
	if after != "" {
		body["after"] = after
	}

	var resp struct {
		Results []blockObject `json:"results"`
	}
	if err := c.do(ctx, http.MethodPatch, "/blocks/"+parentID+"/children", body, &resp); err != nil {
		return nil, err
	}

	out := make([]workspace.Block, 0, len(resp.Results))
	for _, b := range resp.Results {
		out = append(out, b.block())
	}
	return out, nil
}

func (c *Client) DeleteBlock(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/blocks/"+id, nil, nil)
}

func (c *Client) RetrieveBlock(ctx context.Context, id string) (*workspace.Block, error) {
	var resp blockObject
	if err := c.do(ctx, http.MethodGet, "/blocks/"+id, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Archived || resp.InTrash {
		return nil, fmt.Errorf("%w: block %s is archived", workspace.ErrNotFound, id)
	}
	b := resp.block()
	return &b, nil
}

func (c *Client) ListChildren(ctx context.Context, id string) ([]workspace.Block, error) {
	var (
		out    []workspace.Block
		cursor string
	)
	for {
		q := url.Values{}
		q.Set("page_size", "100")
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}

		var resp struct {
			Results    []blockObject `json:"results"`
			NextCursor *string       `json:"next_cursor"`
			HasMore    bool          `json:"has_more"`
		}
		if err := c.do(ctx, http.MethodGet, "/blocks/"+id+"/children?"+q.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		for _, b := range resp.Results {
			out = append(out, b.block())
		}
		if !resp.HasMore || resp.NextCursor == nil {
			return out, nil
		}
		cursor = *resp.NextCursor
	}
}

func (c *Client) UpdateBlock(ctx context.Context, block workspace.Block) error {
	body := encodeBlock(block)
	delete(body, "object")
	delete(body, "type")
	return c.do(ctx, http.MethodPatch, "/blocks/"+block.ID, body, nil)
}

func (c *Client) CreateCollection(ctx context.Context, parentID string, spec workspace.CollectionSpec) (string, error) {
	body := map[string]any{
		"parent":     map[string]any{"type": "page_id", "page_id": parentID},
		"title":      richText(spec.Title),
		"properties": encodeSchema(spec.Properties),
	}
	if spec.Icon != "" {
		body["icon"] = external(spec.Icon)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/databases", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func addIconCover(body map[string]any, rec workspace.Record) {
	if rec.Icon != "" {
		body["icon"] = external(rec.Icon)
	}
	if rec.Cover != "" {
		body["cover"] = external(rec.Cover)
	}
}
