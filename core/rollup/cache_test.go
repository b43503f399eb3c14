package rollup_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"weread-sync/core/database"
	"weread-sync/core/rollup"
	"weread-sync/core/workspace"
	"weread-sync/core/workspace/local"
	"weread-sync/core/workspace/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ws   *local.Client
	cols rollup.Collections
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	ws, err := local.Open(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	root, err := ws.RootPage(ctx, "WeRead")
	require.NoError(t, err)

	var cols rollup.Collections
	for title, dst := range map[string]*string{"年": &cols.Year, "月": &cols.Month, "周": &cols.Week, "日": &cols.Day} {
		id, err := ws.CreateCollection(ctx, root, workspace.CollectionSpec{Title: title})
		require.NoError(t, err)
		*dst = id
	}
	return &fixture{ws: ws, cols: cols}
}

func (f *fixture) records(t *testing.T, collectionID string) []workspace.Record {
	t.Helper()
	recs, err := workspace.QueryAll(context.Background(), f.ws, collectionID, nil)
	require.NoError(t, err)
	return recs
}

func shanghai() *time.Location {
	return rollup.LoadLocation("Asia/Shanghai")
}

func TestDay_CreatesBucketsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cache := rollup.New(f.ws, f.cols, shanghai(), nil)

	at := time.Date(2024, 3, 1, 21, 30, 0, 0, shanghai())
	id, err := cache.Day(ctx, at)
	require.NoError(t, err)

	again, err := cache.Day(ctx, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, id, again)

	days := f.records(t, f.cols.Day)
	require.Len(t, days, 1)
	day := days[0]
	assert.Equal(t, "2024年03月01日", day.Properties.Text("标题"))
	assert.Equal(t, int64(1709222400), day.Properties.Int("时间戳"))
	assert.Equal(t, "2024-03-01 00:00:00", day.Properties["日期"].Date.Start)
	assert.Equal(t, workspace.IconTarget, day.Icon)

	years := f.records(t, f.cols.Year)
	require.Len(t, years, 1)
	assert.Equal(t, "2024", years[0].Properties.Text("标题"))
	assert.Equal(t, "2024-01-01 00:00:00", years[0].Properties["日期"].Date.Start)
	assert.Equal(t, "2024-12-31 00:00:00", years[0].Properties["日期"].Date.End)
	assert.Equal(t, []string{years[0].ID}, day.Properties["年"].Relation)

	months := f.records(t, f.cols.Month)
	require.Len(t, months, 1)
	assert.Equal(t, "2024年3月", months[0].Properties.Text("标题"))
	assert.Equal(t, "2024-03-31 00:00:00", months[0].Properties["日期"].Date.End)

	weeks := f.records(t, f.cols.Week)
	require.Len(t, weeks, 1)
	assert.Equal(t, "2024年第9周", weeks[0].Properties.Text("标题"))
	assert.Equal(t, "2024-02-26 00:00:00", weeks[0].Properties["日期"].Date.Start)
	assert.Equal(t, "2024-03-03 00:00:00", weeks[0].Properties["日期"].Date.End)
}

func TestDateRelations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cache := rollup.New(f.ws, f.cols, shanghai(), nil)

	props, err := cache.DateRelations(ctx, time.Date(2024, 12, 30, 8, 0, 0, 0, shanghai()))
	require.NoError(t, err)
	for _, name := range []string{"年", "月", "周", "日"} {
		require.Len(t, props[name].Relation, 1, name)
	}

	weeks := f.records(t, f.cols.Week)
	require.Len(t, weeks, 1)
	assert.Equal(t, "2025年第1周", weeks[0].Properties.Text("标题"))
	assert.Equal(t, weeks[0].ID, props["周"].Relation[0])
	assert.Len(t, f.records(t, f.cols.Year), 1)
}

func TestDayWith_ExtraOnlyOnCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cache := rollup.New(f.ws, f.cols, shanghai(), nil)
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, shanghai())

	id, err := cache.DayWith(ctx, at, workspace.Properties{"时长": workspace.Number(600)})
	require.NoError(t, err)
	again, err := cache.DayWith(ctx, at, workspace.Properties{"时长": workspace.Number(900)})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	days := f.records(t, f.cols.Day)
	require.Len(t, days, 1)
	assert.Equal(t, int64(600), days[0].Properties.Int("时长"))
	assert.Equal(t, "2024年03月01日", days[0].Properties.Text("标题"))
}

func TestRelation_FindsExistingRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	existing, err := f.ws.CreateRecord(ctx, f.cols.Year, workspace.Record{
		Properties: workspace.Properties{"标题": workspace.Title("2023")},
	})
	require.NoError(t, err)

	cache := rollup.New(f.ws, f.cols, shanghai(), nil)
	id, err := cache.Year(ctx, time.Date(2023, 6, 1, 0, 0, 0, 0, shanghai()))
	require.NoError(t, err)
	assert.Equal(t, existing.ID, id)
	assert.Len(t, f.records(t, f.cols.Year), 1)
}

func TestRelation_SeededCacheSkipsStore(t *testing.T) {
	m := new(mocks.Client)
	cache := rollup.New(m, rollup.Collections{}, nil, map[string]string{"authors鲁迅": "a-1"})

	id, err := cache.Relation(context.Background(), "authors", "鲁迅", workspace.IconUser, nil)
	require.NoError(t, err)
	assert.Equal(t, "a-1", id)
	m.AssertNotCalled(t, "QueryCollection", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRelation_QueryError(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Client)
	m.On("QueryCollection", ctx, "authors", mock.Anything, "").Return(nil, errors.New("boom"))

	cache := rollup.New(m, rollup.Collections{}, nil, nil)
	_, err := cache.Relation(ctx, "authors", "鲁迅", workspace.IconUser, nil)
	assert.ErrorContains(t, err, "failed to look up 鲁迅")
	assert.Equal(t, 0, cache.Len())
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), "2024-03-04"},
		{time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), "2024-03-04"},
		{time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), "2024-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, rollup.WeekStart(tt.in).Format("2006-01-02"))
		})
	}
}
