package local

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"weread-sync/core/database"
	"weread-sync/core/workspace"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := Open(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	return c
}

func texts(blocks []workspace.Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Text
	}
	return out
}

func TestRecords(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	book, err := c.CreateRecord(ctx, "书架", workspace.Record{
		Properties: workspace.Properties{
			"书名":     workspace.Title("三体"),
			"BookId": workspace.RichText("822995"),
			"Sort":   workspace.Number(10),
		},
		Icon: "https://example.com/cover.jpg",
	})
	require.NoError(t, err)
	require.NotEmpty(t, book.ID)

	_, err = c.CreateRecord(ctx, "书架", workspace.Record{
		Properties: workspace.Properties{"书名": workspace.Title("球状闪电"), "BookId": workspace.RichText("1")},
	})
	require.NoError(t, err)

	t.Run("Query With Filter", func(t *testing.T) {
		recs, err := workspace.QueryAll(ctx, c, "书架", workspace.All(workspace.TitleEquals("书名", "三体")))
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, book.ID, recs[0].ID)
		assert.Equal(t, "822995", recs[0].Properties.Text("BookId"))
	})

	t.Run("Update Merges Properties", func(t *testing.T) {
		updated, err := c.UpdateRecord(ctx, workspace.Record{
			ID:         book.ID,
			Properties: workspace.Properties{"Sort": workspace.Number(11)},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(11), updated.Properties.Int("Sort"))
		assert.Equal(t, "三体", updated.Properties.Text("书名"))
		assert.Equal(t, "https://example.com/cover.jpg", updated.Icon)
	})

	t.Run("Delete Archives", func(t *testing.T) {
		other, err := c.CreateRecord(ctx, "笔记", workspace.Record{})
		require.NoError(t, err)
		require.NoError(t, c.DeleteRecord(ctx, other.ID))

		recs, err := workspace.QueryAll(ctx, c, "笔记", nil)
		require.NoError(t, err)
		assert.Empty(t, recs)

		assert.ErrorIs(t, c.DeleteRecord(ctx, other.ID), workspace.ErrNotFound)
		_, err = c.UpdateRecord(ctx, workspace.Record{ID: other.ID})
		assert.ErrorIs(t, err, workspace.ErrNotFound)
	})
}

func TestQueryCollection_Paging(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	for i := 0; i < workspace.PageSize+5; i++ {
		_, err := c.CreateRecord(ctx, "日", workspace.Record{
			Properties: workspace.Properties{"标题": workspace.Title(fmt.Sprintf("day-%d", i))},
		})
		require.NoError(t, err)
	}

	page, err := c.QueryCollection(ctx, "日", nil, "")
	require.NoError(t, err)
	assert.Len(t, page.Records, workspace.PageSize)
	assert.True(t, page.HasMore)

	page, err = c.QueryCollection(ctx, "日", nil, page.NextCursor)
	require.NoError(t, err)
	assert.Len(t, page.Records, 5)
	assert.False(t, page.HasMore)
	assert.Equal(t, "day-104", page.Records[4].Properties.Text("标题"))

	_, err = c.QueryCollection(ctx, "日", nil, "not-a-number")
	assert.Error(t, err)
}

func TestBlocks(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	page, err := c.CreateRecord(ctx, "书架", workspace.Record{})
	require.NoError(t, err)

	first, err := c.AppendBlocks(ctx, page.ID, []workspace.Block{
		workspace.Quote("a"), workspace.Quote("c"),
	}, "")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, page.ID, first[0].ParentID)
	assert.False(t, first[0].ParentIsBlock)

	t.Run("Append After Keeps Sibling Order", func(t *testing.T) {
		mid, err := c.AppendBlocks(ctx, page.ID, []workspace.Block{workspace.Quote("b")}, first[0].ID)
		require.NoError(t, err)
		require.Len(t, mid, 1)

		children, err := c.ListChildren(ctx, page.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, texts(children))
	})

	t.Run("Nested Children", func(t *testing.T) {
		nested, err := c.AppendBlocks(ctx, first[1].ID, []workspace.Block{workspace.Quote("abstract")}, "")
		require.NoError(t, err)
		assert.True(t, nested[0].ParentIsBlock)

		got, err := c.RetrieveBlock(ctx, first[1].ID)
		require.NoError(t, err)
		assert.True(t, got.HasChildren)

		child, err := c.RetrieveBlock(ctx, nested[0].ID)
		require.NoError(t, err)
		assert.Equal(t, first[1].ID, child.ParentID)
	})

	t.Run("Update Block", func(t *testing.T) {
		b := first[0]
		b.Text = "a2"
		require.NoError(t, c.UpdateBlock(ctx, b))
		got, err := c.RetrieveBlock(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "a2", got.Text)
	})

	t.Run("Delete Removes Descendants", func(t *testing.T) {
		require.NoError(t, c.DeleteBlock(ctx, first[1].ID))
		children, err := c.ListChildren(ctx, page.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"a2", "b"}, texts(children))

		_, err = c.RetrieveBlock(ctx, first[1].ID)
		assert.ErrorIs(t, err, workspace.ErrNotFound)
		assert.ErrorIs(t, c.DeleteBlock(ctx, first[1].ID), workspace.ErrNotFound)
	})

	t.Run("Unknown Anchor Or Parent", func(t *testing.T) {
		_, err := c.AppendBlocks(ctx, page.ID, []workspace.Block{workspace.Quote("x")}, "missing")
		assert.ErrorIs(t, err, workspace.ErrNotFound)

		_, err = c.AppendBlocks(ctx, "missing", []workspace.Block{workspace.Quote("x")}, "")
		assert.ErrorIs(t, err, workspace.ErrNotFound)
	})
}

func TestQueryCollection_DatabaseError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := database.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT \\* FROM `workspace_records`").WillReturnError(errors.New("connection reset"))

	_, err = New(db).QueryCollection(context.Background(), "书架", nil, "")
	assert.ErrorContains(t, err, "failed to query records")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecord_DatabaseError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := database.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `workspace_records`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = New(db).CreateRecord(context.Background(), "书架", workspace.Record{})
	assert.ErrorContains(t, err, "failed to create record")
	assert.NoError(t, mock.ExpectationsWereMet())
}
