package local

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"weread-sync/core/workspace"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"gorm.io/gorm"
)

const rootCollection = "pages"

// Client is a workspace.Client persisting records and blocks through gorm.
type Client struct {
	db *gorm.DB
}

// New returns a Client over db. Call Migrate once before use on a fresh database.
func New(db *gorm.DB) *Client {
	return &Client{db: db}
}

// Migrate creates or updates the workspace tables.
func (c *Client) Migrate() error {
	if err := c.db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate workspace tables: %w", err)
	}
	return nil
}

func (c *Client) QueryCollection(ctx context.Context, collectionID string, filter *workspace.Filter, cursor string) (*workspace.Page, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q: %w", cursor, err)
		}
		offset = n
	}

	var rows []recordRow
	err := c.db.WithContext(ctx).
		Where("collection = ? AND archived = ?", collectionID, false).
		Order("seq").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	var matched []workspace.Record
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		if filter.Match(rec.Properties) {
			matched = append(matched, rec)
		}
	}

	page := &workspace.Page{}
	if offset >= len(matched) {
		return page, nil
	}
	end := min(offset+workspace.PageSize, len(matched))
	page.Records = matched[offset:end]
	if end < len(matched) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (c *Client) CreateRecord(ctx context.Context, collectionID string, rec workspace.Record) (*workspace.Record, error) {
	props := rec.Properties
	if props == nil {
		props = workspace.Properties{}
	}
	data, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("failed to encode properties: %w", err)
	}

	row := recordRow{
		ID:         uuid.NewString(),
		Collection: collectionID,
		Icon:       rec.Icon,
		Cover:      rec.Cover,
		Properties: string(data),
	}
	if err := c.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	out, err := toRecord(row)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRecord(ctx context.Context, rec workspace.Record) (*workspace.Record, error) {
	row, err := c.findRecord(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	current, err := toRecord(*row)
	if err != nil {
		return nil, err
	}

	current.Properties.Merge(rec.Properties)
	data, err := json.Marshal(current.Properties)
	if err != nil {
		return nil, fmt.Errorf("failed to encode properties: %w", err)
	}
	row.Properties = string(data)
	if rec.Icon != "" {
		row.Icon = rec.Icon
	}
	if rec.Cover != "" {
		row.Cover = rec.Cover
	}

	if err := c.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, fmt.Errorf("failed to update record %s: %w", rec.ID, err)
	}

	out, err := toRecord(*row)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecord archives the record; archived records never match a query.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	res := c.db.WithContext(ctx).Model(&recordRow{}).
		Where("id = ? AND archived = ?", id, false).
		Update("archived", true)
	if res.Error != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("record %s: %w", id, workspace.ErrNotFound)
	}
	return nil
}

func (c *Client) AppendBlocks(ctx context.Context, parentID string, blocks []workspace.Block, after string) ([]workspace.Block, error) {
	var created []workspace.Block

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parentIsBlock, err := parentKind(tx, parentID)
		if err != nil {
			return err
		}

		var siblings []blockRow
		if err := tx.Where("parent_id = ?", parentID).Order("position").Find(&siblings).Error; err != nil {
			return fmt.Errorf("failed to list children of %s: %w", parentID, err)
		}

		at := len(siblings)
		if after != "" {
			at = -1
			for i, s := range siblings {
				if s.ID == after {
					at = i + 1
					break
				}
			}
			if at < 0 {
				return fmt.Errorf("block %s under %s: %w", after, parentID, workspace.ErrNotFound)
			}
		}

		inserted := make([]blockRow, 0, len(blocks))
		for _, b := range blocks {
			payload, err := encodeBlock(b)
			if err != nil {
				return err
			}
			inserted = append(inserted, blockRow{
				ID:            uuid.NewString(),
				ParentID:      parentID,
				ParentIsBlock: parentIsBlock,
				Payload:       payload,
			})
		}

		ordered := make([]blockRow, 0, len(siblings)+len(inserted))
		ordered = append(ordered, siblings[:at]...)
		ordered = append(ordered, inserted...)
		ordered = append(ordered, siblings[at:]...)

		for i := range ordered {
			ordered[i].Position = i
			if ordered[i].Seq == 0 {
				if err := tx.Create(&ordered[i]).Error; err != nil {
					return fmt.Errorf("failed to insert block: %w", err)
				}
				continue
			}
			if err := tx.Model(&blockRow{}).Where("seq = ?", ordered[i].Seq).Update("position", i).Error; err != nil {
				return fmt.Errorf("failed to reorder block %s: %w", ordered[i].ID, err)
			}
		}

		for _, row := range ordered[at : at+len(inserted)] {
			b, err := toBlock(row)
			if err != nil {
				return err
			}
			created = append(created, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteBlock removes a block and its descendants.
func (c *Client) DeleteBlock(ctx context.Context, id string) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&blockRow{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete block %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("block %s: %w", id, workspace.ErrNotFound)
		}
		return deleteDescendants(tx, id)
	})
}

func (c *Client) RetrieveBlock(ctx context.Context, id string) (*workspace.Block, error) {
	var row blockRow
	err := c.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("block %s: %w", id, workspace.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve block %s: %w", id, err)
	}

	b, err := toBlock(row)
	if err != nil {
		return nil, err
	}

	var children int64
	if err := c.db.WithContext(ctx).Model(&blockRow{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
		return nil, fmt.Errorf("failed to count children of %s: %w", id, err)
	}
	b.HasChildren = children > 0
	return &b, nil
}

func (c *Client) ListChildren(ctx context.Context, id string) ([]workspace.Block, error) {
	var rows []blockRow
	if err := c.db.WithContext(ctx).Where("parent_id = ?", id).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list children of %s: %w", id, err)
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	var parents []string
	if len(ids) > 0 {
		if err := c.db.WithContext(ctx).Model(&blockRow{}).Where("parent_id IN ?", ids).Distinct().Pluck("parent_id", &parents).Error; err != nil {
			return nil, fmt.Errorf("failed to list grandchildren of %s: %w", id, err)
		}
	}
	hasChildren := make(map[string]bool, len(parents))
	for _, p := range parents {
		hasChildren[p] = true
	}

	out := make([]workspace.Block, 0, len(rows))
	for _, row := range rows {
		b, err := toBlock(row)
		if err != nil {
			return nil, err
		}
		b.HasChildren = hasChildren[row.ID]
		out = append(out, b)
	}
	return out, nil
}

func (c *Client) UpdateBlock(ctx context.Context, block workspace.Block) error {
	payload, err := encodeBlock(block)
	if err != nil {
		return err
	}
	res := c.db.WithContext(ctx).Model(&blockRow{}).Where("id = ?", block.ID).Update("payload", payload)
	if res.Error != nil {
		return fmt.Errorf("failed to update block %s: %w", block.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("block %s: %w", block.ID, workspace.ErrNotFound)
	}
	return nil
}

// CreateCollection adds a child database block under parentID. Collections are
// implicit in this store, so the block id doubles as the collection id.
func (c *Client) CreateCollection(ctx context.Context, parentID string, spec workspace.CollectionSpec) (string, error) {
	created, err := c.AppendBlocks(ctx, parentID, []workspace.Block{{Type: workspace.BlockChildDatabase, Title: spec.Title}}, "")
	if err != nil {
		return "", err
	}
	return created[0].ID, nil
}

// RootPage returns the id of the root record titled title, creating it when absent.
func (c *Client) RootPage(ctx context.Context, title string) (string, error) {
	recs, err := workspace.QueryAll(ctx, c, rootCollection, workspace.All(workspace.TitleEquals("标题", title)))
	if err != nil {
		return "", err
	}
	if len(recs) > 0 {
		return recs[0].ID, nil
	}
	rec, err := c.CreateRecord(ctx, rootCollection, workspace.Record{
		Properties: workspace.Properties{"标题": workspace.Title(title)},
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (c *Client) findRecord(ctx context.Context, id string) (*recordRow, error) {
	var row recordRow
	err := c.db.WithContext(ctx).Where("id = ? AND archived = ?", id, false).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("record %s: %w", id, workspace.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", id, err)
	}
	return &row, nil
}

// parentKind reports whether parentID is a block (true) or a record (false).
func parentKind(tx *gorm.DB, parentID string) (bool, error) {
	var n int64
	if err := tx.Model(&blockRow{}).Where("id = ?", parentID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to resolve parent %s: %w", parentID, err)
	}
	if n > 0 {
		return true, nil
	}
	if err := tx.Model(&recordRow{}).Where("id = ? AND archived = ?", parentID, false).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to resolve parent %s: %w", parentID, err)
	}
	if n == 0 {
		return false, fmt.Errorf("parent %s: %w", parentID, workspace.ErrNotFound)
	}
	return false, nil
}

func deleteDescendants(tx *gorm.DB, parentID string) error {
	var ids []string
	if err := tx.Model(&blockRow{}).Where("parent_id = ?", parentID).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("failed to list children of %s: %w", parentID, err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("parent_id = ?", parentID).Delete(&blockRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete children of %s: %w", parentID, err)
	}
	for _, id := range ids {
		if err := deleteDescendants(tx, id); err != nil {
			return err
		}
	}
	return nil
}

func toRecord(row recordRow) (workspace.Record, error) {
	props := workspace.Properties{}
	if row.Properties != "" {
		if err := json.Unmarshal([]byte(row.Properties), &props); err != nil {
			return workspace.Record{}, fmt.Errorf("failed to decode record %s: %w", row.ID, err)
		}
	}
	return workspace.Record{
		ID:          row.ID,
		Properties:  props,
		Icon:        row.Icon,
		Cover:       row.Cover,
		CreatedTime: row.CreatedAt,
	}, nil
}

func encodeBlock(b workspace.Block) (string, error) {
	data, err := json.Marshal(blockPayload{
		Type:  string(b.Type),
		Text:  b.Text,
		Color: b.Color,
		Emoji: b.Emoji,
		URL:   b.URL,
		Title: b.Title,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode block: %w", err)
	}
	return string(data), nil
}

func toBlock(row blockRow) (workspace.Block, error) {
	var p blockPayload
	if err := json.Unmarshal([]byte(row.Payload), &p); err != nil {
		return workspace.Block{}, fmt.Errorf("failed to decode block %s: %w", row.ID, err)
	}
	return workspace.Block{
		ID:            row.ID,
		Type:          workspace.BlockType(p.Type),
		Text:          p.Text,
		Color:         p.Color,
		Emoji:         p.Emoji,
		URL:           p.URL,
		Title:         p.Title,
		ParentID:      row.ParentID,
		ParentIsBlock: row.ParentIsBlock,
	}, nil
}
