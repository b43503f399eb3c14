package notes

import (
	"weread-sync/core/reconcile"
	"weread-sync/core/weread"
	"weread-sync/core/workspace"
	"weread-sync/feature/bootstrap"
)

// defaultChapterUID files entries without a chapter under the first chapter.
const defaultChapterUID = 1

func chapterOf(uid *weread.Flex) int64 {
	if uid == nil {
		return defaultChapterUID
	}
	return uid.Int()
}

// HighlightEntries converts bookmarks into plan entries.
func HighlightEntries(bookmarks []weread.Bookmark, s bootstrap.Settings) []reconcile.Entry {
	out := make([]reconcile.Entry, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, reconcile.Entry{
			Kind:       reconcile.KindHighlight,
			Key:        b.BookmarkID,
			ChapterUID: chapterOf(b.ChapterUID),
			Range:      b.Range,
			Block:      Render(b.MarkText, b.Style.Int(), b.ColorStyle.Int(), false, s),
			Source:     b,
		})
	}
	return out
}

// NoteEntries converts reviews into plan entries. The quoted passage is nested
// under the note.
func NoteEntries(reviews []weread.Review, s bootstrap.Settings) []reconcile.Entry {
	out := make([]reconcile.Entry, 0, len(reviews))
	for _, r := range reviews {
		e := reconcile.Entry{
			Kind:       reconcile.KindNote,
			Key:        r.ReviewID,
			ChapterUID: chapterOf(r.ChapterUID),
			Block:      Render(r.Content, r.Style.Int(), r.ColorStyle.Int(), true, s),
			Source:     r,
		}
		if r.Range != nil {
			e.Range = *r.Range
		}
		if r.Abstract != nil {
			e.Quote = *r.Abstract
		}
		out = append(out, e)
	}
	return out
}

// ChapterEntries converts the chapter table into header entries.
func ChapterEntries(chapters []weread.Chapter) []reconcile.Entry {
	out := make([]reconcile.Entry, 0, len(chapters))
	for _, c := range chapters {
		uid := c.ChapterUID.Int()
		out = append(out, reconcile.Entry{
			Kind:       reconcile.KindChapter,
			Key:        workspace.FormatKey(uid),
			ChapterUID: uid,
			Block:      workspace.Heading(int(c.Level.Int()), c.Title),
			Source:     c,
		})
	}
	return out
}

// skipBookmarks excludes plain bookmarks (type 0) from the plan.
func skipBookmarks(e reconcile.Entry) bool {
	b, ok := e.Source.(weread.Bookmark)
	return ok && b.Type.Int() == 0
}
