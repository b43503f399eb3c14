package notes

import (
	"context"
	"fmt"
	"time"

	"weread-sync/core/reconcile"
	"weread-sync/core/rollup"
	"weread-sync/core/weread"
	"weread-sync/core/workspace"
	"weread-sync/feature/bootstrap"
)

// bookRelation is the relation from highlight, note and chapter records to their book.
const bookRelation = "书籍"

// recordBuilder persists created entries into their collections, related to pageID.
func recordBuilder(cols bootstrap.Collections, cache *rollup.Cache, pageID string) reconcile.RecordBuilder {
	return func(ctx context.Context, e reconcile.Entry) (string, workspace.Record, error) {
		switch src := e.Source.(type) {
		case weread.Bookmark:
			props := workspace.Properties{
				"Name":        workspace.Title(src.MarkText),
				"bookId":      workspace.RichText(src.BookID),
				"range":       workspace.RichText(src.Range),
				"bookmarkId":  workspace.RichText(src.BookmarkID),
				"chapterUid":  workspace.Number(e.ChapterUID),
				"bookVersion": workspace.Number(src.BookVersion.Int()),
				"colorStyle":  workspace.Number(src.ColorStyle.Int()),
				"type":        workspace.Number(src.Type.Int()),
				"style":       workspace.Number(src.Style.Int()),
				bookRelation:  workspace.Relation(pageID),
			}
			props[reconcile.BlockIDProperty] = workspace.RichText(e.BlockID)
			if err := addCreateTime(ctx, cache, props, src.CreateTime.Int()); err != nil {
				return "", workspace.Record{}, err
			}
			return cols.Highlights, workspace.Record{Properties: props, Icon: workspace.IconBookmark}, nil

		case weread.Review:
			props := workspace.Properties{
				"Name":        workspace.Title(src.Content),
				"bookId":      workspace.RichText(src.BookID),
				"reviewId":    workspace.RichText(src.ReviewID),
				"chapterUid":  workspace.Number(e.ChapterUID),
				"bookVersion": workspace.Number(src.BookVersion.Int()),
				"type":        workspace.Number(src.Type.Int()),
				bookRelation:  workspace.Relation(pageID),
			}
			props[reconcile.BlockIDProperty] = workspace.RichText(e.BlockID)
			if src.Range != nil {
				props["range"] = workspace.RichText(*src.Range)
			}
			if src.Star != nil {
				props["star"] = workspace.Number(src.Star.Int())
			}
			if src.Abstract != nil {
				props["abstract"] = workspace.RichText(*src.Abstract)
			}
			if err := addCreateTime(ctx, cache, props, src.CreateTime.Int()); err != nil {
				return "", workspace.Record{}, err
			}
			return cols.Notes, workspace.Record{Properties: props, Icon: workspace.IconTag}, nil

		case weread.Chapter:
			props := workspace.Properties{
				"Name":       workspace.Title(src.Title),
				"chapterUid": workspace.Number(src.ChapterUID.Int()),
				"chapterIdx": workspace.Number(src.ChapterIdx.Int()),
				"readAhead":  workspace.Number(src.ReadAhead.Int()),
				"updateTime": workspace.Number(src.UpdateTime.Int()),
				"level":      workspace.Number(src.Level.Int()),
				bookRelation: workspace.Relation(pageID),
			}
			props[reconcile.BlockIDProperty] = workspace.RichText(e.BlockID)
			return cols.Chapters, workspace.Record{Properties: props, Icon: workspace.IconTag}, nil

		default:
			return "", workspace.Record{}, fmt.Errorf("unexpected %s payload %T", e.Kind, e.Source)
		}
	}
}

// addCreateTime stamps the creation date and its calendar relations.
func addCreateTime(ctx context.Context, cache *rollup.Cache, props workspace.Properties, ts int64) error {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).In(cache.Location())
	props["Date"] = workspace.Date(t.Format(workspace.DateTimeLayout), "", cache.Location().String())
	rel, err := cache.DateRelations(ctx, t)
	if err != nil {
		return err
	}
	props.Merge(rel)
	return nil
}
