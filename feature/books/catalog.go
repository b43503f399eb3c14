package books

import (
	"context"
	"fmt"

	"weread-sync/core/weread"
	"weread-sync/core/workspace"
)

// Stored is the state of a book record from the previous runs.
type Stored struct {
	PageID string
	BookID string
	Title  string
	// Sort is the sort token of the last note sync.
	Sort           int64
	HasSort        bool
	ReadingTime    int64
	HasReadingTime bool
	Category       string
	HasCover       bool
	// Cover is the stored cover link, preferring the 封面 property.
	Cover          string
	Status         string
	HasRating      bool
}

func coverOf(r workspace.Record) string {
	if link := r.Properties.Text("封面"); link != "" {
		return link
	}
	return r.Cover
}

// Catalog indexes the stored books by book id.
type Catalog map[string]Stored

// LoadCatalog reads every record of the book collection. Records without a
// BookId are ignored; of duplicates the last one wins.
func LoadCatalog(ctx context.Context, client workspace.Client, collectionID string) (Catalog, error) {
	records, err := workspace.QueryAll(ctx, client, collectionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load book catalog: %w", err)
	}

	out := make(Catalog, len(records))
	for _, r := range records {
		id := r.Properties.Text("BookId")
		if id == "" {
			continue
		}
		sort, hasSort := r.Properties.Number("Sort")
		readingTime, hasTime := r.Properties.Number("阅读时长")
		out[id] = Stored{
			PageID:         r.ID,
			BookID:         id,
			Title:          r.Properties.Text("书名"),
			Sort:           int64(sort),
			HasSort:        hasSort,
			ReadingTime:    int64(readingTime),
			HasReadingTime: hasTime,
			Category:       r.Properties.Text("书架分类"),
			HasCover:       r.Cover != "" || r.Properties.Has("封面"),
			Cover:          coverOf(r),
			Status:         r.Properties.Text("阅读状态"),
			HasRating:      r.Properties.Has("我的评分"),
		}
	}
	return out, nil
}

// NeedsSync reports whether a book's metadata must be fetched again. A book is
// skipped only when its reading time and shelf folder match the stored ones, a
// cover is stored and, for a finished book, a rating is stored. A book without
// shelf progress has no reading time to compare.
func NeedsSync(stored *Stored, progress *weread.BookProgress, category string) bool {
	if stored == nil {
		return true
	}
	if progress != nil && (!stored.HasReadingTime || stored.ReadingTime != progress.ReadingTime.Int()) {
		return true
	}
	if stored.Category != category {
		return true
	}
	if !stored.HasCover {
		return true
	}
	return stored.Status == StatusFinished && !stored.HasRating
}

// Pending returns the ids of the books to sync: every notebook and shelf book,
// in first-seen order, minus the books that need no sync.
func Pending(catalog Catalog, shelf *weread.Shelf, notebooks []weread.Notebook) []string {
	progress := shelf.Progress()
	categories := shelf.Categories()

	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		var stored *Stored
		if s, ok := catalog[id]; ok {
			stored = &s
		}
		var p *weread.BookProgress
		if bp, ok := progress[id]; ok {
			p = &bp
		}
		if NeedsSync(stored, p, categories[id]) {
			ids = append(ids, id)
		}
	}

	for _, nb := range notebooks {
		add(nb.BookID)
	}
	for _, b := range shelf.Books {
		add(b.BookID)
	}
	return ids
}
