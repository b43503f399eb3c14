package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"weread-sync/core/database"
	"weread-sync/core/reconcile"
	"weread-sync/core/workspace"
	"weread-sync/core/workspace/local"
	"weread-sync/core/workspace/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type appendCall struct {
	parentID string
	after    string
	blocks   []workspace.Block
	created  []workspace.Block
}

// recordingClient records every append made through it. When failAppend is
// set, the matching top-level append fails (1 is the first content batch).
type recordingClient struct {
	workspace.Client
	appends    []appendCall
	failAppend int
	batches    int
}

func (c *recordingClient) AppendBlocks(ctx context.Context, parentID string, blocks []workspace.Block, after string) ([]workspace.Block, error) {
	if len(blocks) > 0 && blocks[0].Type != workspace.BlockTableOfContents && blocks[0].Type != workspace.BlockQuote {
		c.batches++
		if c.batches == c.failAppend {
			return nil, errors.New("rate limited")
		}
	}
	out, err := c.Client.AppendBlocks(ctx, parentID, blocks, after)
	if err == nil {
		c.appends = append(c.appends, appendCall{parentID: parentID, after: after, blocks: blocks, created: out})
	}
	return out, err
}

type bookFixture struct {
	ws         *local.Client
	client     *recordingClient
	bookID     string
	highlights string
	notes      string
	chapters   string
}

func newBookFixture(t *testing.T) *bookFixture {
	t.Helper()
	ctx := context.Background()
	ws, err := local.Open(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	root, err := ws.RootPage(ctx, "WeRead")
	require.NoError(t, err)

	f := &bookFixture{ws: ws, client: &recordingClient{Client: ws}}
	for title, dst := range map[string]*string{"划线": &f.highlights, "笔记": &f.notes, "章节": &f.chapters} {
		id, err := ws.CreateCollection(ctx, root, workspace.CollectionSpec{Title: title})
		require.NoError(t, err)
		*dst = id
	}
	books, err := ws.CreateCollection(ctx, root, workspace.CollectionSpec{Title: "书架"})
	require.NoError(t, err)
	book, err := ws.CreateRecord(ctx, books, workspace.Record{Properties: workspace.Properties{"书名": workspace.Title("三体")}})
	require.NoError(t, err)
	f.bookID = book.ID
	return f
}

func highlight(key string, chapter int64, rng string) reconcile.Entry {
	return reconcile.Entry{
		Kind: reconcile.KindHighlight, Key: key, ChapterUID: chapter, Range: rng,
		Block: workspace.Text(workspace.BlockCallout, key, "", "💡"),
	}
}

func note(key string, chapter int64, rng, quote string) reconcile.Entry {
	return reconcile.Entry{
		Kind: reconcile.KindNote, Key: key, ChapterUID: chapter, Range: rng, Quote: quote,
		Block: workspace.Text(workspace.BlockCallout, key, "", "✍️"),
	}
}

func chapter(uid int64, title string) reconcile.Entry {
	return reconcile.Entry{
		Kind: reconcile.KindChapter, Key: workspace.FormatKey(uid), ChapterUID: uid,
		Block: workspace.Heading(1, title),
	}
}

func (f *bookFixture) request(highlights, notes, chapters []reconcile.Entry) reconcile.Request {
	synced := workspace.All(workspace.RelationContains("书籍", f.bookID), workspace.RichTextNotEmpty(reconcile.BlockIDProperty))
	req := reconcile.Request{
		ParentID:   f.bookID,
		Highlights: reconcile.Stream{Entries: highlights, CollectionID: f.highlights, Filter: synced, Key: reconcile.TextKey("bookmarkId")},
		Notes:      reconcile.Stream{Entries: notes, CollectionID: f.notes, Filter: synced, Key: reconcile.TextKey("reviewId")},
		Build: func(ctx context.Context, e reconcile.Entry) (string, workspace.Record, error) {
			props := workspace.Properties{
				"Name":                    workspace.Title(e.Key),
				reconcile.BlockIDProperty: workspace.RichText(e.BlockID),
				"chapterUid":              workspace.Number(e.ChapterUID),
				"书籍":                      workspace.Relation(f.bookID),
			}
			switch e.Kind {
			case reconcile.KindHighlight:
				props["bookmarkId"] = workspace.RichText(e.Key)
				return f.highlights, workspace.Record{Properties: props}, nil
			case reconcile.KindNote:
				props["reviewId"] = workspace.RichText(e.Key)
				return f.notes, workspace.Record{Properties: props}, nil
			default:
				return f.chapters, workspace.Record{Properties: props}, nil
			}
		},
	}
	if chapters != nil {
		req.Chapters = &reconcile.Stream{
			Entries:      chapters,
			CollectionID: f.chapters,
			Filter:       workspace.All(workspace.RelationContains("书籍", f.bookID)),
			Key:          reconcile.NumberKey("chapterUid"),
		}
	}
	return req
}

func (f *bookFixture) tree(t *testing.T) []string {
	t.Helper()
	children, err := f.ws.ListChildren(context.Background(), f.bookID)
	require.NoError(t, err)
	out := make([]string, len(children))
	for i, c := range children {
		out[i] = c.Text
		if c.Type == workspace.BlockTableOfContents {
			out[i] = "toc"
		}
	}
	return out
}

func (f *bookFixture) count(t *testing.T, collectionID string) int {
	t.Helper()
	recs, err := workspace.QueryAll(context.Background(), f.ws, collectionID, nil)
	require.NoError(t, err)
	return len(recs)
}

func TestSync_OrderAndIdempotence(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	engine := reconcile.NewEngine(f.client, reconcile.Options{}, nil)

	source := func() ([]reconcile.Entry, []reconcile.Entry, []reconcile.Entry) {
		return []reconcile.Entry{
				highlight("h-b", 20, "5-9"),
				highlight("h-a", 10, "30-40"),
				highlight("h-c", 10, "2-8"),
			},
			[]reconcile.Entry{note("n-1", 20, "", "原文")},
			[]reconcile.Entry{chapter(10, "第一章"), chapter(20, "第二章"), chapter(30, "第三章")}
	}

	res, err := engine.Sync(ctx, f.request(source()))
	require.NoError(t, err)
	assert.Equal(t, 6, res.Created)
	assert.Equal(t, 6, res.Persisted)
	assert.Equal(t, 0, res.Matched)
	assert.Equal(t, []string{"toc", "第一章", "h-c", "h-a", "第二章", "n-1", "h-b"}, f.tree(t))
	assert.Equal(t, 3, f.count(t, f.highlights))
	assert.Equal(t, 1, f.count(t, f.notes))
	assert.Equal(t, 2, f.count(t, f.chapters))

	children, err := f.ws.ListChildren(ctx, f.bookID)
	require.NoError(t, err)
	quotes, err := f.ws.ListChildren(ctx, children[5].ID)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, workspace.BlockQuote, quotes[0].Type)
	assert.Equal(t, "原文", quotes[0].Text)

	f.client.appends = nil
	res, err = engine.Sync(ctx, f.request(source()))
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Matched: 6, Reused: 6}, *res)
	assert.Empty(t, f.client.appends)
	assert.Equal(t, []string{"toc", "第一章", "h-c", "h-a", "第二章", "n-1", "h-b"}, f.tree(t))
	assert.Equal(t, 3, f.count(t, f.highlights))
}

func TestSync_InsertsBetweenExistingNodes(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	engine := reconcile.NewEngine(f.client, reconcile.Options{}, nil)
	chapters := func() []reconcile.Entry { return []reconcile.Entry{chapter(1, "序")} }

	_, err := engine.Sync(ctx, f.request([]reconcile.Entry{
		highlight("h1", 1, "10-20"),
		highlight("h3", 1, "50-60"),
	}, nil, chapters()))
	require.NoError(t, err)

	res, err := engine.Sync(ctx, f.request([]reconcile.Entry{
		highlight("h1", 1, "10-20"),
		highlight("h2", 1, "30-40"),
		highlight("h3", 1, "50-60"),
	}, nil, chapters()))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 3, res.Matched)
	assert.Equal(t, []string{"toc", "序", "h1", "h2", "h3"}, f.tree(t))
}

func TestSync_PrunesOrphans(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	engine := reconcile.NewEngine(f.client, reconcile.Options{}, nil)
	chapters := func() []reconcile.Entry { return []reconcile.Entry{chapter(10, "一"), chapter(20, "二")} }

	_, err := engine.Sync(ctx, f.request([]reconcile.Entry{
		highlight("bm-8", 10, "1-2"),
		highlight("bm-7", 20, "1-2"),
	}, nil, chapters()))
	require.NoError(t, err)
	assert.Equal(t, []string{"toc", "一", "bm-8", "二", "bm-7"}, f.tree(t))

	res, err := engine.Sync(ctx, f.request([]reconcile.Entry{highlight("bm-8", 10, "1-2")}, nil, chapters()))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pruned)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, []string{"toc", "一", "bm-8"}, f.tree(t))
	assert.Equal(t, 1, f.count(t, f.highlights))
	assert.Equal(t, 1, f.count(t, f.chapters))
}

func TestPreview_DoesNotWrite(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	engine := reconcile.NewEngine(f.client, reconcile.Options{}, nil)
	chapters := func() []reconcile.Entry { return []reconcile.Entry{chapter(10, "一"), chapter(20, "二")} }

	_, err := engine.Sync(ctx, f.request([]reconcile.Entry{
		highlight("bm-1", 10, "1-2"),
		highlight("bm-2", 20, "1-2"),
	}, nil, chapters()))
	require.NoError(t, err)
	appends := len(f.client.appends)

	plan, diffs, err := engine.Preview(ctx, f.request([]reconcile.Entry{
		highlight("bm-1", 10, "1-2"),
		highlight("bm-3", 10, "5-6"),
	}, []reconcile.Entry{note("rv-1", 10, "3-4", "")}, chapters()))
	require.NoError(t, err)

	assert.Equal(t, 1, diffs.Highlights.Matched)
	assert.Equal(t, 1, diffs.Highlights.New)
	require.Len(t, diffs.Highlights.Stale, 1)
	assert.Equal(t, "bm-2", diffs.Highlights.Stale[0].Key)
	assert.Equal(t, 1, diffs.Notes.New)
	assert.Equal(t, 1, diffs.Chapters.Matched)
	require.Len(t, diffs.Chapters.Stale, 1)
	assert.Equal(t, "20", diffs.Chapters.Stale[0].Key)

	keys := make([]string, len(plan))
	for i, e := range plan {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{"10", "bm-1", "rv-1", "bm-3"}, keys)
	assert.False(t, plan[1].IsNew())
	assert.True(t, plan[2].IsNew())

	assert.Equal(t, appends, len(f.client.appends))
	assert.Equal(t, []string{"toc", "一", "bm-1", "二", "bm-2"}, f.tree(t))
	assert.Equal(t, 2, f.count(t, f.highlights))
}

func TestSync_BatchBoundary(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	engine := reconcile.NewEngine(f.client, reconcile.Options{}, nil)

	var entries []reconcile.Entry
	for i := 0; i < 101; i++ {
		entries = append(entries, highlight(fmt.Sprintf("bm-%03d", i), 1, fmt.Sprintf("%d-%d", i*10, i*10+5)))
	}

	res, err := engine.Sync(ctx, f.request(entries, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Appends)
	assert.Equal(t, 101, res.Created)
	assert.Equal(t, 101, res.Persisted)

	var batches []appendCall
	for _, call := range f.client.appends {
		if call.parentID == f.bookID && call.blocks[0].Type != workspace.BlockTableOfContents {
			batches = append(batches, call)
		}
	}
	require.Len(t, batches, 2)
	assert.Len(t, batches[0].blocks, 100)
	assert.Len(t, batches[1].blocks, 1)
	assert.Equal(t, batches[0].created[99].ID, batches[1].after)

	tree := f.tree(t)
	require.Len(t, tree, 102)
	assert.Equal(t, "bm-000", tree[1])
	assert.Equal(t, "bm-100", tree[101])
}

func TestSync_SkipEntry(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	engine := reconcile.NewEngine(f.client, reconcile.Options{
		SkipEntry: func(e reconcile.Entry) bool { return e.Kind == reconcile.KindHighlight },
	}, nil)

	res, err := engine.Sync(ctx, f.request(
		[]reconcile.Entry{highlight("h1", 1, "1-2")},
		[]reconcile.Entry{note("n1", 1, "3-4", "")},
		nil))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, []string{"toc", "n1"}, f.tree(t))
	assert.Equal(t, 0, f.count(t, f.highlights))
}

func TestApply_NestedAnchorClimbsToTopLevel(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)

	top, err := f.ws.AppendBlocks(ctx, f.bookID, []workspace.Block{
		workspace.TableOfContents(),
		workspace.Text(workspace.BlockParagraph, "outer", "", ""),
		workspace.Text(workspace.BlockParagraph, "tail", "", ""),
	}, "")
	require.NoError(t, err)
	nested, err := f.ws.AppendBlocks(ctx, top[1].ID, []workspace.Block{workspace.Quote("inner")}, "")
	require.NoError(t, err)

	engine := reconcile.NewEngine(f.ws, reconcile.Options{}, nil)
	var res reconcile.Result
	created, err := engine.Apply(ctx, f.bookID, []reconcile.Entry{
		{Key: "anchor", BlockID: nested[0].ID},
		highlight("new", 1, ""),
	}, nil, &res)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, []string{"toc", "outer", "new", "tail"}, f.tree(t))
	assert.Equal(t, 1, res.Reused)
}

func TestSync_AppendFailureStopsBeforePersisting(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Client)
	m.On("ListChildren", ctx, "book").Return([]workspace.Block{{ID: "toc", Type: workspace.BlockTableOfContents}}, nil)
	m.On("RetrieveBlock", ctx, "toc").Return(&workspace.Block{ID: "toc", ParentID: "book"}, nil)
	m.On("AppendBlocks", ctx, "book", mock.Anything, "toc").Return(nil, errors.New("rate limited"))

	engine := reconcile.NewEngine(m, reconcile.Options{}, nil)
	res, err := engine.Sync(ctx, reconcile.Request{
		ParentID:   "book",
		Highlights: reconcile.Stream{Entries: []reconcile.Entry{highlight("h1", 1, "")}},
		Build: func(ctx context.Context, e reconcile.Entry) (string, workspace.Record, error) {
			t.Fatal("no record may be built when the append failed")
			return "", workspace.Record{}, nil
		},
	})
	assert.ErrorContains(t, err, "rate limited")
	assert.Equal(t, 0, res.Persisted)
	m.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_ResumesAfterLaterBatchFails(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	f.client.failAppend = 2
	engine := reconcile.NewEngine(f.client, reconcile.Options{}, nil)

	var entries []reconcile.Entry
	for i := 0; i < 101; i++ {
		entries = append(entries, highlight(fmt.Sprintf("bm-%03d", i), 1, fmt.Sprintf("%d-%d", i*10, i*10+5)))
	}

	res, err := engine.Sync(ctx, f.request(entries, nil, nil))
	assert.ErrorContains(t, err, "rate limited")
	assert.Equal(t, 100, res.Created)
	assert.Equal(t, 100, res.Persisted)
	assert.Len(t, f.tree(t), 101)
	assert.Equal(t, 100, f.count(t, f.highlights))

	f.client.failAppend = 0
	res, err = engine.Sync(ctx, f.request(entries, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 100, res.Matched)
	assert.Equal(t, 1, res.Created)
	tree := f.tree(t)
	require.Len(t, tree, 102)
	assert.Equal(t, "bm-099", tree[100])
	assert.Equal(t, "bm-100", tree[101])
	assert.Equal(t, 101, f.count(t, f.highlights))
}

func TestSync_RestoresNodeRemovedByHand(t *testing.T) {
	ctx := context.Background()
	f := newBookFixture(t)
	engine := reconcile.NewEngine(f.client, reconcile.Options{}, nil)

	_, err := engine.Sync(ctx, f.request([]reconcile.Entry{
		highlight("h1", 1, "10-20"),
		highlight("h2", 1, "30-40"),
	}, nil, nil))
	require.NoError(t, err)

	children, err := f.ws.ListChildren(ctx, f.bookID)
	require.NoError(t, err)
	require.NoError(t, f.ws.DeleteBlock(ctx, children[2].ID))

	res, err := engine.Sync(ctx, f.request([]reconcile.Entry{
		highlight("h1", 1, "10-20"),
		highlight("h2", 1, "30-40"),
		highlight("h3", 1, "50-60"),
	}, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Restored)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, []string{"toc", "h1", "h2", "h3"}, f.tree(t))
	assert.Equal(t, 3, f.count(t, f.highlights))
}

func TestSync_RequiresBuilder(t *testing.T) {
	_, err := reconcile.NewEngine(new(mocks.Client), reconcile.Options{}, nil).Sync(context.Background(), reconcile.Request{})
	assert.Error(t, err)
}
