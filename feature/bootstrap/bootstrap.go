package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weread-sync/core/target"
	"weread-sync/core/workspace"

	"go.uber.org/zap"
)

// HeatmapHost prefixes the URL of the reading heatmap embed.
const HeatmapHost = "https://heatmap.malinkang.com/"

// Collections holds the ids of every collection the sync writes to.
type Collections struct {
	Books      string `json:"books"`
	Notes      string `json:"notes"`
	Highlights string `json:"highlights"`
	Chapters   string `json:"chapters"`
	Day        string `json:"day"`
	Week       string `json:"week"`
	Month      string `json:"month"`
	Year       string `json:"year"`
	Categories string `json:"categories"`
	Authors    string `json:"authors"`
	Reading    string `json:"reading"`
	Settings   string `json:"settings"`
}

// Workspace is a prepared target: its collections, the heatmap embed and the
// effective rendering settings.
type Workspace struct {
	Client      workspace.Client
	RootID      string
	Collections Collections
	// Heatmap is the heatmap embed, or nil when the page has none.
	Heatmap  *workspace.Block
	Settings Settings
}

// Prepare discovers the collections below the root page, creates the missing
// ones and applies the settings record on top of defaults.
func Prepare(ctx context.Context, tgt *target.Target, defaults Settings, loc *time.Location, logger *zap.Logger) (*Workspace, error) {
	layout, err := workspace.Discover(ctx, tgt.Client, tgt.RootID)
	if err != nil {
		return nil, fmt.Errorf("failed to discover workspace: %w", err)
	}
	logger.Debug("Workspace discovered",
		zap.Int("collections", len(layout.Collections)),
		zap.Int("embeds", len(layout.Embeds)))

	cols, err := ensureCollections(ctx, tgt, layout, logger)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{Client: tgt.Client, RootID: tgt.RootID, Collections: *cols}
	for i := range layout.Embeds {
		if strings.HasPrefix(layout.Embeds[i].URL, HeatmapHost) {
			ws.Heatmap = &layout.Embeds[i]
			break
		}
	}

	ws.Settings, err = applySettings(ctx, tgt.Client, cols.Settings, defaults, time.Now().In(loc))
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func ensureCollections(ctx context.Context, tgt *target.Target, layout *workspace.Layout, logger *zap.Logger) (*Collections, error) {
	n := tgt.Names
	c := &Collections{}

	steps := []struct {
		id   *string
		spec func() workspace.CollectionSpec
	}{
		{&c.Year, func() workspace.CollectionSpec { return periodSpec(n.Year) }},
		{&c.Month, func() workspace.CollectionSpec { return periodSpec(n.Month) }},
		{&c.Week, func() workspace.CollectionSpec { return periodSpec(n.Week) }},
		{&c.Day, func() workspace.CollectionSpec { return daySpec(n.Day, *c) }},
		{&c.Categories, func() workspace.CollectionSpec { return lookupSpec(n.Categories, workspace.IconTag) }},
		{&c.Authors, func() workspace.CollectionSpec { return lookupSpec(n.Authors, workspace.IconUser) }},
		{&c.Books, func() workspace.CollectionSpec { return bookSpec(n.Books, *c) }},
		{&c.Highlights, func() workspace.CollectionSpec { return highlightSpec(n.Highlights, *c) }},
		{&c.Notes, func() workspace.CollectionSpec { return noteSpec(n.Notes, *c) }},
		{&c.Chapters, func() workspace.CollectionSpec { return chapterSpec(n.Chapters, *c) }},
		{&c.Reading, func() workspace.CollectionSpec { return readingSpec(n.Reading, *c) }},
		{&c.Settings, func() workspace.CollectionSpec { return settingsSpec(n.Settings) }},
	}

	for _, step := range steps {
		spec := step.spec()
		_, existed := layout.Collections[spec.Title]
		id, err := layout.Ensure(ctx, tgt.Client, tgt.RootID, spec)
		if err != nil {
			return nil, err
		}
		if !existed {
			logger.Info("Collection created", zap.String("title", spec.Title), zap.String("id", id))
		}
		*step.id = id
	}
	return c, nil
}
