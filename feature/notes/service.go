package notes

import (
	"context"
	"errors"
	"fmt"

	"weread-sync/core/reconcile"
	"weread-sync/core/rollup"
	"weread-sync/core/weread"
	"weread-sync/core/workspace"
	"weread-sync/feature/books"
	"weread-sync/feature/bootstrap"

	"go.uber.org/zap"
)

// Report summarizes one SyncNotes run.
type Report struct {
	Notebooks int `json:"notebooks"`
	Synced    int `json:"synced"`
	Unchanged int `json:"unchanged"`
	Unknown   int `json:"unknown"`
	Failed    int `json:"failed"`

	Totals reconcile.Result `json:"totals"`
}

func (r *Report) add(res *reconcile.Result) {
	if res == nil {
		return
	}
	r.Totals.Matched += res.Matched
	r.Totals.Created += res.Created
	r.Totals.Reused += res.Reused
	r.Totals.Skipped += res.Skipped
	r.Totals.Pruned += res.Pruned
	r.Totals.Appends += res.Appends
	r.Totals.Persisted += res.Persisted
}

// Service mirrors highlights, notes and chapter headers into book pages.
type Service struct {
	source weread.Client
	ws     *bootstrap.Workspace
	rollup *rollup.Cache
	engine *reconcile.Engine
	logger *zap.Logger
}

// NewService creates a note sync service. Plain bookmarks are left out when
// the workspace settings disable them.
func NewService(source weread.Client, ws *bootstrap.Workspace, cache *rollup.Cache, opts reconcile.Options, logger *zap.Logger) *Service {
	if !ws.Settings.SyncBookmarks {
		opts.SkipEntry = skipBookmarks
	}
	return &Service{
		source: source,
		ws:     ws,
		rollup: cache,
		engine: reconcile.NewEngine(ws.Client, opts, logger),
		logger: logger,
	}
}

// SyncNotes reconciles every stored book whose sort token moved since its
// last note sync, then stores the new token on the book.
func (s *Service) SyncNotes(ctx context.Context) (*Report, error) {
	notebooks, err := s.source.GetNotebooks(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := books.LoadCatalog(ctx, s.ws.Client, s.ws.Collections.Books)
	if err != nil {
		return nil, err
	}

	report := &Report{Notebooks: len(notebooks)}
	for i, nb := range notebooks {
		stored, ok := catalog[nb.BookID]
		if !ok {
			report.Unknown++
			continue
		}
		if stored.HasSort && stored.Sort == nb.Sort.Int() {
			report.Unchanged++
			continue
		}

		log := s.logger.With(
			zap.String("book_id", nb.BookID),
			zap.String("title", nb.Book.Title),
			zap.Int("index", i+1),
			zap.Int("of", len(notebooks)))

		res, err := s.syncBook(ctx, nb, stored.PageID)
		report.add(res)
		switch {
		case err == nil:
			report.Synced++
			log.Info("Notes synced",
				zap.Int("created", res.Created),
				zap.Int("pruned", res.Pruned),
				zap.Int("matched", res.Matched))
		case errors.Is(err, weread.ErrAuthExpired), ctx.Err() != nil:
			return report, err
		default:
			report.Failed++
			log.Error("Note sync failed", zap.Error(err))
		}
	}
	return report, nil
}

// ErrUnknownBook is returned for a book without a record in the book collection.
var ErrUnknownBook = errors.New("book is not in the book collection")

// Preview is the dry-run outcome of reconciling one book.
type Preview struct {
	BookID string           `json:"book_id"`
	PageID string           `json:"page_id"`
	Diffs  *reconcile.Diffs `json:"diffs"`
	// Plan lists the content entries in document order.
	Plan []reconcile.Entry `json:"plan"`
}

// Preview computes what syncing bookID would create and prune, without writing.
func (s *Service) Preview(ctx context.Context, bookID string) (*Preview, error) {
	pageID, err := s.pageOf(ctx, bookID)
	if err != nil {
		return nil, err
	}
	req, err := s.request(ctx, bookID, pageID)
	if err != nil {
		return nil, err
	}
	plan, diffs, err := s.engine.Preview(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Preview{BookID: bookID, PageID: pageID, Diffs: diffs, Plan: plan}, nil
}

// SyncBook reconciles one book regardless of its sort token.
func (s *Service) SyncBook(ctx context.Context, bookID string) (*reconcile.Result, error) {
	pageID, err := s.pageOf(ctx, bookID)
	if err != nil {
		return nil, err
	}
	notebooks, err := s.source.GetNotebooks(ctx)
	if err != nil {
		return nil, err
	}
	nb := weread.Notebook{BookID: bookID}
	for _, n := range notebooks {
		if n.BookID == bookID {
			nb = n
			break
		}
	}
	return s.syncBook(ctx, nb, pageID)
}

func (s *Service) pageOf(ctx context.Context, bookID string) (string, error) {
	catalog, err := books.LoadCatalog(ctx, s.ws.Client, s.ws.Collections.Books)
	if err != nil {
		return "", err
	}
	stored, ok := catalog[bookID]
	if !ok {
		return "", fmt.Errorf("%s: %w", bookID, ErrUnknownBook)
	}
	return stored.PageID, nil
}

func (s *Service) syncBook(ctx context.Context, nb weread.Notebook, pageID string) (*reconcile.Result, error) {
	req, err := s.request(ctx, nb.BookID, pageID)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Sync(ctx, req)
	if err != nil {
		return res, err
	}

	if _, err := s.ws.Client.UpdateRecord(ctx, workspace.Record{
		ID:         pageID,
		Properties: workspace.Properties{"Sort": workspace.Number(nb.Sort.Int())},
	}); err != nil {
		return res, fmt.Errorf("failed to store sort token: %w", err)
	}
	return res, nil
}

// request fetches the current content of a book and describes where its
// synced records live.
func (s *Service) request(ctx context.Context, bookID, pageID string) (reconcile.Request, error) {
	chapters, err := s.source.GetChapters(ctx, bookID)
	if err != nil {
		return reconcile.Request{}, err
	}
	bookmarks, err := s.source.GetBookmarks(ctx, bookID)
	if err != nil {
		return reconcile.Request{}, err
	}
	reviews, err := s.source.GetReviews(ctx, bookID)
	if err != nil {
		return reconcile.Request{}, err
	}

	settings := s.ws.Settings
	cols := s.ws.Collections
	synced := workspace.All(
		workspace.RelationContains(bookRelation, pageID),
		workspace.RichTextNotEmpty(reconcile.BlockIDProperty))

	return reconcile.Request{
		ParentID: pageID,
		Highlights: reconcile.Stream{
			Entries:      HighlightEntries(bookmarks, settings),
			CollectionID: cols.Highlights,
			Filter:       synced,
			Key:          reconcile.TextKey("bookmarkId"),
		},
		Notes: reconcile.Stream{
			Entries:      NoteEntries(reviews, settings),
			CollectionID: cols.Notes,
			Filter:       synced,
			Key:          reconcile.TextKey("reviewId"),
		},
		Chapters: &reconcile.Stream{
			Entries:      ChapterEntries(chapters),
			CollectionID: cols.Chapters,
			Filter:       workspace.All(workspace.RelationContains(bookRelation, pageID)),
			Key:          reconcile.NumberKey("chapterUid"),
		},
		Build: recordBuilder(cols, s.rollup, pageID),
	}, nil
}
