package notion

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"weread-sync/core/workspace"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
}

func newServer(t *testing.T, handler func(r recorded) (int, string)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, apiVersion, r.Header.Get("Notion-Version"))

		rec := recorded{method: r.Method, path: r.URL.RequestURI()}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			require.NoError(t, json.Unmarshal(data, &rec.body))
		}
		calls = append(calls, rec)

		status, body := handler(rec)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(Config{Token: "secret", BaseURL: srv.URL}), &calls
}

func TestQueryCollection(t *testing.T) {
	c, calls := newServer(t, func(r recorded) (int, string) {
		return 200, `{
			"results": [{
				"id": "page-1",
				"created_time": "2024-03-01T10:00:00.000Z",
				"icon": {"type": "external", "external": {"url": "https://img/cover.jpg"}},
				"properties": {
					"书名": {"type": "title", "title": [{"plain_text": "三"}, {"plain_text": "体"}]},
					"BookId": {"type": "rich_text", "rich_text": [{"plain_text": "822995"}]},
					"Sort": {"type": "number", "number": 1700000000},
					"阅读状态": {"type": "status", "status": {"name": "在读"}},
					"我的评分": {"type": "select", "select": null},
					"封面": {"type": "files", "files": [{"type": "external", "external": {"url": "https://img/c.jpg"}}]},
					"书架分类": {"type": "select", "select": {"name": "科幻"}},
					"作者": {"type": "relation", "relation": [{"id": "a1"}]},
					"公式": {"type": "formula", "formula": {"number": 3}}
				}
			}],
			"next_cursor": "cur-2",
			"has_more": true
		}`
	})

	page, err := c.QueryCollection(context.Background(), "db-1",
		workspace.All(workspace.RelationContains("书籍", "p1"), workspace.RichTextNotEmpty("blockId")), "cur-1")
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "POST", call.method)
	assert.Equal(t, "/databases/db-1/query", call.path)
	assert.Equal(t, "cur-1", call.body["start_cursor"])
	assert.EqualValues(t, 100, call.body["page_size"])
	filter := call.body["filter"].(map[string]any)["and"].([]any)
	require.Len(t, filter, 2)
	assert.Equal(t, map[string]any{"property": "书籍", "relation": map[string]any{"contains": "p1"}}, filter[0])
	assert.Equal(t, map[string]any{"property": "blockId", "rich_text": map[string]any{"is_not_empty": true}}, filter[1])

	assert.True(t, page.HasMore)
	assert.Equal(t, "cur-2", page.NextCursor)
	require.Len(t, page.Records, 1)
	rec := page.Records[0]
	assert.Equal(t, "page-1", rec.ID)
	assert.Equal(t, "https://img/cover.jpg", rec.Icon)
	assert.Equal(t, "三体", rec.Properties.Text("书名"))
	assert.Equal(t, "822995", rec.Properties.Text("BookId"))
	assert.Equal(t, int64(1700000000), rec.Properties.Int("Sort"))
	assert.Equal(t, "在读", rec.Properties.Text("阅读状态"))
	assert.False(t, rec.Properties.Has("我的评分"))
	assert.Equal(t, "https://img/c.jpg", rec.Properties.Text("封面"))
	assert.Equal(t, "科幻", rec.Properties.Text("书架分类"))
	assert.Equal(t, []string{"a1"}, rec.Properties["作者"].Relation)
	_, hasFormula := rec.Properties["公式"]
	assert.False(t, hasFormula)
}

func TestCreateRecord_EncodesProperties(t *testing.T) {
	c, calls := newServer(t, func(r recorded) (int, string) {
		return 200, `{"id": "new-page", "properties": {}}`
	})

	rec, err := c.CreateRecord(context.Background(), "db-1", workspace.Record{
		Properties: workspace.Properties{
			"书名":   workspace.Title("三体"),
			"Sort": workspace.Number(3),
			"时间":   workspace.Date("2024-01-01 00:00:00", "", "Asia/Shanghai"),
			"作者":   workspace.Relation("a1", "a2"),
			"封面":   workspace.File("https://img/c.jpg"),
			"阅读状态": workspace.Status("已读"),
		},
		Icon: "https://img/c.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-page", rec.ID)

	body := (*calls)[0].body
	assert.Equal(t, map[string]any{"database_id": "db-1"}, body["parent"])
	props := body["properties"].(map[string]any)
	assert.Equal(t, "三体", props["书名"].(map[string]any)["title"].([]any)[0].(map[string]any)["text"].(map[string]any)["content"])
	assert.EqualValues(t, 3, props["Sort"].(map[string]any)["number"])
	assert.Equal(t, "Asia/Shanghai", props["时间"].(map[string]any)["date"].(map[string]any)["time_zone"])
	assert.Len(t, props["作者"].(map[string]any)["relation"], 2)
	assert.Equal(t, "已读", props["阅读状态"].(map[string]any)["status"].(map[string]any)["name"])
	assert.Equal(t, "external", body["icon"].(map[string]any)["type"])
}

func TestAppendBlocks(t *testing.T) {
	c, calls := newServer(t, func(r recorded) (int, string) {
		return 200, `{"results": [
			{"id": "b1", "type": "callout", "parent": {"type": "page_id", "page_id": "p1"},
			 "callout": {"rich_text": [{"plain_text": "hello"}], "color": "red", "icon": {"emoji": "💡"}}}
		]}`
	})

	out, err := c.AppendBlocks(context.Background(), "p1", []workspace.Block{
		workspace.Text(workspace.BlockCallout, "hello", "red", "💡"),
	}, "anchor")
	require.NoError(t, err)

	call := (*calls)[0]
	assert.Equal(t, "PATCH", call.method)
	assert.Equal(t, "/blocks/p1/children", call.path)
	assert.Equal(t, "anchor", call.body["after"])
	child := call.body["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "callout", child["type"])
	assert.Equal(t, map[string]any{"emoji": "💡"}, child["callout"].(map[string]any)["icon"])

	require.Len(t, out, 1)
	assert.Equal(t, workspace.Block{
		ID: "b1", Type: workspace.BlockCallout, Text: "hello", Color: "red", Emoji: "💡", ParentID: "p1",
	}, out[0])
}

func TestRetrieveBlock_NestedParent(t *testing.T) {
	c, _ := newServer(t, func(r recorded) (int, string) {
		return 200, `{"id": "q1", "type": "quote", "has_children": false,
			"parent": {"type": "block_id", "block_id": "b1"}, "quote": {"rich_text": []}}`
	})

	b, err := c.RetrieveBlock(context.Background(), "q1")
	require.NoError(t, err)
	assert.True(t, b.ParentIsBlock)
	assert.Equal(t, "b1", b.ParentID)
}

func TestListChildren_Paginates(t *testing.T) {
	c, calls := newServer(t, func(r recorded) (int, string) {
		if r.path == "/blocks/root/children?page_size=100" {
			return 200, `{"results": [{"id": "db", "type": "child_database", "has_children": false,
				"child_database": {"title": "书架"}}], "next_cursor": "n", "has_more": true}`
		}
		return 200, `{"results": [{"id": "e", "type": "embed", "embed": {"url": "https://heatmap.malinkang.com/x"}}],
			"next_cursor": null, "has_more": false}`
	})

	children, err := c.ListChildren(context.Background(), "root")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "书架", children[0].Title)
	assert.Equal(t, "https://heatmap.malinkang.com/x", children[1].URL)
	assert.Equal(t, "/blocks/root/children?page_size=100&start_cursor=n", (*calls)[1].path)
}

func TestErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		c, _ := newServer(t, func(r recorded) (int, string) {
			return 404, `{"object": "error", "status": 404, "code": "object_not_found", "message": "gone"}`
		})
		_, err := c.RetrieveBlock(context.Background(), "x")
		assert.ErrorIs(t, err, workspace.ErrNotFound)
	})

	t.Run("archived block", func(t *testing.T) {
		c, _ := newServer(t, func(r recorded) (int, string) {
			return 200, `{"id": "x", "type": "callout", "archived": true,
				"parent": {"type": "page_id", "page_id": "p1"}, "callout": {"rich_text": []}}`
		})
		_, err := c.RetrieveBlock(context.Background(), "x")
		assert.ErrorIs(t, err, workspace.ErrNotFound)
	})

	t.Run("rate limited", func(t *testing.T) {
		c, _ := newServer(t, func(r recorded) (int, string) {
			return 429, `{"object": "error", "status": 429, "code": "rate_limited", "message": "slow down"}`
		})
		err := c.DeleteBlock(context.Background(), "x")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 429, apiErr.Status)
		assert.Equal(t, "rate_limited", apiErr.Code)
	})
}

func TestCreateCollection(t *testing.T) {
	c, calls := newServer(t, func(r recorded) (int, string) {
		return 200, `{"id": "db-new"}`
	})

	id, err := c.CreateCollection(context.Background(), "root", workspace.CollectionSpec{
		Title: "阅读记录",
		Icon:  "https://www.notion.so/icons/target_gray.svg",
		Properties: map[string]workspace.SchemaProperty{
			"标题": {Type: workspace.PropertyTitle},
			"书架": {Type: workspace.PropertyRelation, RelationTo: "books"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "db-new", id)

	props := (*calls)[0].body["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"title": map[string]any{}}, props["标题"])
	assert.Equal(t, "books", props["书架"].(map[string]any)["relation"].(map[string]any)["database_id"])
}

func TestExtractPageID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"url with slug", "https://www.notion.so/WeRead-0123456789abcdef0123456789abcdef?pvs=4", "01234567-89ab-cdef-0123-456789abcdef", false},
		{"dashed", "01234567-89ab-cdef-0123-456789abcdef", "01234567-89ab-cdef-0123-456789abcdef", false},
		{"no id", "https://www.notion.so/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPageID(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
