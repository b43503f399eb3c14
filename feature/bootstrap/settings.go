package bootstrap

import (
	"context"
	"fmt"
	"time"

	"weread-sync/core/workspace"
)

// Properties of the settings record.
const (
	PropShowColor    = "根据划线颜色设置文字颜色"
	PropSyncBookmark = "同步书签"
	PropBlockType    = "样式"
	PropLastSync     = "最后同步时间"
)

// SettingsTitle is the title of the single settings record.
const SettingsTitle = "设置"

// Settings are the rendering switches users may change from the workspace.
type Settings struct {
	// ShowColor colors highlights by their highlight color.
	ShowColor bool `json:"show_color"`
	// SyncBookmarks includes plain bookmarks (type 0) in note sync.
	SyncBookmarks bool `json:"sync_bookmarks"`
	// BlockType is the block style of highlights and notes.
	BlockType string `json:"block_type"`
}

// applySettings reads the settings record over defaults and stamps the sync
// time on it, creating the record from defaults on first run.
func applySettings(ctx context.Context, client workspace.Client, collectionID string, defaults Settings, now time.Time) (Settings, error) {
	records, err := workspace.QueryAll(ctx, client, collectionID,
		workspace.All(workspace.TitleEquals("标题", SettingsTitle)))
	if err != nil {
		return defaults, fmt.Errorf("failed to load settings: %w", err)
	}

	stamp := workspace.Properties{
		"标题":         workspace.Title(SettingsTitle),
		PropLastSync: workspace.Date(now.Format(workspace.DateTimeLayout), "", now.Location().String()),
	}

	if len(records) == 0 {
		stamp[PropShowColor] = workspace.Checkbox(defaults.ShowColor)
		stamp[PropSyncBookmark] = workspace.Checkbox(defaults.SyncBookmarks)
		stamp[PropBlockType] = workspace.Select(defaults.BlockType)
		if _, err := client.CreateRecord(ctx, collectionID, workspace.Record{Properties: stamp}); err != nil {
			return defaults, fmt.Errorf("failed to create settings: %w", err)
		}
		return defaults, nil
	}

	rec := records[0]
	out := defaults
	if _, ok := rec.Properties[PropShowColor]; ok {
		out.ShowColor = rec.Properties.Bool(PropShowColor)
	}
	if _, ok := rec.Properties[PropSyncBookmark]; ok {
		out.SyncBookmarks = rec.Properties.Bool(PropSyncBookmark)
	}
	if bt := rec.Properties.Text(PropBlockType); bt != "" {
		out.BlockType = bt
	}

	if _, err := client.UpdateRecord(ctx, workspace.Record{ID: rec.ID, Properties: stamp}); err != nil {
		return out, fmt.Errorf("failed to stamp settings: %w", err)
	}
	return out, nil
}
