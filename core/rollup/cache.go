package rollup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"weread-sync/core/workspace"
)

// TitleProperty is the title property of every lookup collection.
const TitleProperty = "标题"

// DefaultTimezone is the timezone of the reading platform's day boundaries.
const DefaultTimezone = "Asia/Shanghai"

// Collections holds the ids of the calendar collections.
type Collections struct {
	Year  string
	Month string
	Week  string
	Day   string
}

// Cache looks up or creates relation records, remembering every id it resolves.
type Cache struct {
	client workspace.Client
	cols   Collections
	loc    *time.Location

	mu  sync.Mutex
	ids map[string]string
}

// New creates a cache over client. ids seeds the cache and may be nil; loc
// defaults to Asia/Shanghai (UTC+8 when the tz database is unavailable).
func New(client workspace.Client, cols Collections, loc *time.Location, ids map[string]string) *Cache {
	if loc == nil {
		loc = LoadLocation(DefaultTimezone)
	}
	if ids == nil {
		ids = map[string]string{}
	}
	return &Cache{client: client, cols: cols, loc: loc, ids: ids}
}

// LoadLocation loads a timezone, falling back to a fixed UTC+8 zone.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 8*60*60)
	}
	return loc
}

// Location returns the timezone buckets are computed in.
func (c *Cache) Location() *time.Location {
	return c.loc
}

// Len returns the number of cached ids.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

func (c *Cache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.ids[key]
	return id, ok
}

func (c *Cache) put(key, id string) {
	c.mu.Lock()
	c.ids[key] = id
	c.mu.Unlock()
}

// Relation returns the id of the record titled label in collectionID, creating
// it with props and icon when absent. props may be nil.
func (c *Cache) Relation(ctx context.Context, collectionID, label, icon string, props workspace.Properties) (string, error) {
	key := collectionID + label
	if id, ok := c.get(key); ok {
		return id, nil
	}

	page, err := c.client.QueryCollection(ctx, collectionID,
		workspace.All(workspace.TitleEquals(TitleProperty, label)), "")
	if err != nil {
		return "", fmt.Errorf("failed to look up %s: %w", label, err)
	}
	if len(page.Records) > 0 {
		c.put(key, page.Records[0].ID)
		return page.Records[0].ID, nil
	}

	if props == nil {
		props = workspace.Properties{}
	}
	props[TitleProperty] = workspace.Title(label)
	rec, err := c.client.CreateRecord(ctx, collectionID, workspace.Record{Properties: props, Icon: icon})
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", label, err)
	}
	c.put(key, rec.ID)
	return rec.ID, nil
}

// Year resolves the year bucket of t.
func (c *Cache) Year(ctx context.Context, t time.Time) (string, error) {
	t = t.In(c.loc)
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, c.loc)
	end := time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, c.loc)
	return c.Relation(ctx, c.cols.Year, t.Format("2006"), workspace.IconTarget, c.rangeProps(start, end))
}

// Month resolves the month bucket of t.
func (c *Cache) Month(ctx context.Context, t time.Time) (string, error) {
	t = t.In(c.loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc)
	end := start.AddDate(0, 1, -1)
	return c.Relation(ctx, c.cols.Month, t.Format("2006年1月"), workspace.IconTarget, c.rangeProps(start, end))
}

// Week resolves the ISO week bucket of t.
func (c *Cache) Week(ctx context.Context, t time.Time) (string, error) {
	start := WeekStart(t.In(c.loc))
	year, week := start.ISOWeek()
	label := fmt.Sprintf("%d年第%d周", year, week)
	return c.Relation(ctx, c.cols.Week, label, workspace.IconTarget, c.rangeProps(start, start.AddDate(0, 0, 6)))
}

// Day resolves the day bucket of t together with its year, month and week.
func (c *Cache) Day(ctx context.Context, t time.Time) (string, error) {
	return c.DayWith(ctx, t, nil)
}

// DayWith resolves the day bucket of t. extra is written only when the day
// record is created.
func (c *Cache) DayWith(ctx context.Context, t time.Time, extra workspace.Properties) (string, error) {
	start := c.DayStart(t)
	label := start.Format("2006年01月02日")
	if id, ok := c.get(c.cols.Day + label); ok {
		return id, nil
	}

	props, err := c.parentRelations(ctx, start)
	if err != nil {
		return "", err
	}
	props["日期"] = workspace.Date(start.Format(workspace.DateTimeLayout), "", c.loc.String())
	props["时间戳"] = workspace.Number(start.Unix())
	props.Merge(extra)
	return c.Relation(ctx, c.cols.Day, label, workspace.IconTarget, props)
}

// DateRelations returns the 年, 月, 周 and 日 relation properties of t.
func (c *Cache) DateRelations(ctx context.Context, t time.Time) (workspace.Properties, error) {
	props, err := c.parentRelations(ctx, t)
	if err != nil {
		return nil, err
	}
	day, err := c.Day(ctx, t)
	if err != nil {
		return nil, err
	}
	props["日"] = workspace.Relation(day)
	return props, nil
}

func (c *Cache) parentRelations(ctx context.Context, t time.Time) (workspace.Properties, error) {
	year, err := c.Year(ctx, t)
	if err != nil {
		return nil, err
	}
	month, err := c.Month(ctx, t)
	if err != nil {
		return nil, err
	}
	week, err := c.Week(ctx, t)
	if err != nil {
		return nil, err
	}
	return workspace.Properties{
		"年": workspace.Relation(year),
		"月": workspace.Relation(month),
		"周": workspace.Relation(week),
	}, nil
}

// DayStart truncates t to midnight in the cache timezone.
func (c *Cache) DayStart(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// WeekStart returns midnight of the Monday of t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -offset)
}

func (c *Cache) rangeProps(start, end time.Time) workspace.Properties {
	return workspace.Properties{
		"日期": workspace.Date(start.Format(workspace.DateTimeLayout), end.Format(workspace.DateTimeLayout), c.loc.String()),
	}
}
