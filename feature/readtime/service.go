package readtime

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"weread-sync/core/rollup"
	"weread-sync/core/weread"
	"weread-sync/core/workspace"
	"weread-sync/feature/bootstrap"

	"go.uber.org/zap"
)

// HeatmapGuide explains how to add the heatmap placeholder to the page.
const HeatmapGuide = "https://mp.weixin.qq.com/s?__biz=MzI1OTcxOTI4NA==&mid=2247484145&idx=1&sn=81752852420b9153fc292b7873217651"

// Report summarizes one SyncReadTime run.
type Report struct {
	Heatmap bool `json:"heatmap"`
	Days    int  `json:"days"`
	Created int  `json:"created"`
	Updated int  `json:"updated"`
}

// Service mirrors the reading history.
type Service struct {
	source weread.Client
	ws     *bootstrap.Workspace
	rollup *rollup.Cache
	image  string
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a reading history service. image is the public URL of
// the rendered heatmap; empty leaves the embed untouched.
func NewService(source weread.Client, ws *bootstrap.Workspace, cache *rollup.Cache, image string, logger *zap.Logger) *Service {
	return &Service{
		source: source,
		ws:     ws,
		rollup: cache,
		image:  image,
		logger: logger,
		now:    time.Now,
	}
}

// HeatmapURL returns the embed URL showing image.
func HeatmapURL(image string) string {
	return bootstrap.HeatmapHost + "?image=" + url.QueryEscape(image)
}

// SyncReadTime updates the heatmap embed, then writes one day record per day
// of history, rewriting a stored day only when its duration changed.
func (s *Service) SyncReadTime(ctx context.Context) (*Report, error) {
	report := &Report{}
	updated, err := s.updateHeatmap(ctx)
	if err != nil {
		return nil, err
	}
	report.Heatmap = updated

	history, err := s.source.GetReadingHistory(ctx)
	if err != nil {
		return report, err
	}
	if history == nil {
		history = map[int64]int64{}
	}
	today := s.rollup.DayStart(s.now()).Unix()
	if _, ok := history[today]; !ok {
		history[today] = 0
	}

	records, err := workspace.QueryAll(ctx, s.ws.Client, s.ws.Collections.Day, nil)
	if err != nil {
		return report, fmt.Errorf("failed to load day records: %w", err)
	}
	byStamp := make(map[int64]workspace.Record, len(records))
	byTitle := make(map[string]workspace.Record, len(records))
	for _, r := range records {
		if ts, ok := r.Properties.Number("时间戳"); ok {
			byStamp[int64(ts)] = r
		}
		byTitle[r.Properties.Text(rollup.TitleProperty)] = r
	}

	days := make([]int64, 0, len(history))
	for ts := range history {
		days = append(days, ts)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	report.Days = len(days)

	for _, ts := range days {
		secs := history[ts]
		rec, ok := byStamp[ts]
		if !ok {
			rec, ok = byTitle[s.label(ts)]
		}
		if !ok {
			if _, err := s.rollup.DayWith(ctx, time.Unix(ts, 0), workspace.Properties{"时长": workspace.Number(secs)}); err != nil {
				return report, fmt.Errorf("failed to create day %d: %w", ts, err)
			}
			report.Created++
			continue
		}
		if stored, ok := rec.Properties.Number("时长"); ok && int64(stored) == secs && rec.Properties.Has("时间戳") {
			continue
		}
		if _, err := s.ws.Client.UpdateRecord(ctx, workspace.Record{
			ID: rec.ID,
			Properties: workspace.Properties{
				"时长":  workspace.Number(secs),
				"时间戳": workspace.Number(ts),
			},
		}); err != nil {
			return report, fmt.Errorf("failed to update day %d: %w", ts, err)
		}
		report.Updated++
	}

	s.logger.Info("Reading history synced",
		zap.Int("days", report.Days),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated))
	return report, nil
}

func (s *Service) label(ts int64) string {
	return time.Unix(ts, 0).In(s.rollup.Location()).Format("2006年01月02日")
}

func (s *Service) updateHeatmap(ctx context.Context) (bool, error) {
	if s.image == "" {
		s.logger.Info("No heatmap image configured, skipping heatmap", zap.String("guide", HeatmapGuide))
		return false, nil
	}
	if s.ws.Heatmap == nil {
		s.logger.Warn("No heatmap placeholder on the page", zap.String("guide", HeatmapGuide))
		return false, nil
	}

	target := HeatmapURL(s.image)
	if s.ws.Heatmap.URL == target {
		return false, nil
	}
	if err := s.ws.Client.UpdateBlock(ctx, workspace.Block{
		ID:   s.ws.Heatmap.ID,
		Type: workspace.BlockEmbed,
		URL:  target,
	}); err != nil {
		return false, fmt.Errorf("failed to update heatmap: %w", err)
	}
	s.ws.Heatmap.URL = target
	return true, nil
}
