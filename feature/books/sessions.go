package books

import (
	"context"
	"fmt"
	"sort"
	"time"

	"weread-sync/core/workspace"
)

// SessionResult counts the reading session writes of one book.
type SessionResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// SyncSessions mirrors the per-day reading times of a book into the reading
// collection. Sessions are matched by day timestamp among the records related
// to pageID; an existing session is rewritten only when its duration changed.
func SyncSessions(ctx context.Context, client workspace.Client, collectionID, pageID string, days map[int64]int64, loc *time.Location) (*SessionResult, error) {
	res := &SessionResult{}
	if len(days) == 0 {
		return res, nil
	}

	records, err := workspace.QueryAll(ctx, client, collectionID,
		workspace.All(workspace.RelationContains("书架", pageID)))
	if err != nil {
		return nil, fmt.Errorf("failed to load reading sessions: %w", err)
	}

	pending := make(map[int64]int64, len(days))
	for ts, secs := range days {
		pending[ts] = secs
	}

	for _, r := range records {
		ts, ok := r.Properties.Number("时间戳")
		if !ok {
			continue
		}
		secs, ok := pending[int64(ts)]
		if !ok {
			continue
		}
		delete(pending, int64(ts))
		if stored, ok := r.Properties.Number("时长"); ok && int64(stored) == secs {
			continue
		}
		if _, err := client.UpdateRecord(ctx, workspace.Record{
			ID:         r.ID,
			Properties: sessionProperties(int64(ts), secs, pageID, loc),
		}); err != nil {
			return res, fmt.Errorf("failed to update reading session %d: %w", int64(ts), err)
		}
		res.Updated++
	}

	stamps := make([]int64, 0, len(pending))
	for ts := range pending {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	for _, ts := range stamps {
		if _, err := client.CreateRecord(ctx, collectionID, workspace.Record{
			Properties: sessionProperties(ts, pending[ts], pageID, loc),
			Icon:       workspace.IconTarget,
		}); err != nil {
			return res, fmt.Errorf("failed to create reading session %d: %w", ts, err)
		}
		res.Created++
	}
	return res, nil
}

func sessionProperties(ts, secs int64, pageID string, loc *time.Location) workspace.Properties {
	t := time.Unix(ts, 0).In(loc)
	return workspace.Properties{
		"标题":  workspace.Title(t.Format("2006-01-02")),
		"日期":  workspace.Date(t.Format(workspace.DateTimeLayout), "", loc.String()),
		"时长":  workspace.Number(secs),
		"时间戳": workspace.Number(ts),
		"书架":  workspace.Relation(pageID),
	}
}
