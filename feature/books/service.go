package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weread-sync/core/bookid"
	"weread-sync/core/rollup"
	"weread-sync/core/weread"
	"weread-sync/core/workspace"
	"weread-sync/feature/bootstrap"

	"go.uber.org/zap"
)

// CoverMirror copies a cover image to storage under our control and returns
// the URL to link instead.
type CoverMirror interface {
	Mirror(ctx context.Context, url string) (string, error)
}

// Report summarizes one SyncBooks run.
type Report struct {
	Stored   int `json:"stored"`
	Pending  int `json:"pending"`
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Missing  int `json:"missing"`
	Failed   int `json:"failed"`
	Sessions int `json:"sessions"`
}

// Service upserts book records from the reading platform.
type Service struct {
	source weread.Client
	ws     *bootstrap.Workspace
	rollup *rollup.Cache
	covers CoverMirror
	logger *zap.Logger
}

// NewService creates a book sync service. covers may be nil.
func NewService(source weread.Client, ws *bootstrap.Workspace, cache *rollup.Cache, covers CoverMirror, logger *zap.Logger) *Service {
	return &Service{
		source: source,
		ws:     ws,
		rollup: cache,
		covers: covers,
		logger: logger,
	}
}

// SyncBooks upserts every notebook and shelf book whose state changed. An
// expired session aborts the run; any other failure is logged and the next
// book is processed.
func (s *Service) SyncBooks(ctx context.Context) (*Report, error) {
	catalog, err := LoadCatalog(ctx, s.ws.Client, s.ws.Collections.Books)
	if err != nil {
		return nil, err
	}
	shelf, err := s.source.GetBookshelf(ctx)
	if err != nil {
		return nil, err
	}
	notebooks, err := s.source.GetNotebooks(ctx)
	if err != nil {
		return nil, err
	}

	ids := Pending(catalog, shelf, notebooks)
	categories := shelf.Categories()
	report := &Report{Stored: len(catalog), Pending: len(ids)}
	s.logger.Info("Book sync started", zap.Int("stored", len(catalog)), zap.Int("pending", len(ids)))

	for i, id := range ids {
		log := s.logger.With(zap.String("book_id", id), zap.Int("index", i+1), zap.Int("of", len(ids)))

		var stored *Stored
		if st, ok := catalog[id]; ok {
			stored = &st
		}
		err := s.syncBook(ctx, id, stored, categories[id], report, log)
		switch {
		case err == nil:
		case errors.Is(err, weread.ErrAuthExpired), ctx.Err() != nil:
			return report, err
		default:
			report.Failed++
			log.Error("Book sync failed", zap.Error(err))
		}
	}

	s.logger.Info("Book sync finished",
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("missing", report.Missing),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *Service) syncBook(ctx context.Context, id string, stored *Stored, category string, report *Report, log *zap.Logger) error {
	info, err := s.source.GetBookInfo(ctx, id)
	if err != nil {
		return err
	}
	read, err := s.source.GetReadInfo(ctx, id)
	if err != nil {
		return err
	}

	meta := info
	if meta == nil {
		meta = read.BookInfo
	}
	if meta == nil {
		report.Missing++
		log.Warn("Book metadata missing, skipped")
		return nil
	}

	loc := s.rollup.Location()
	props := readingProperties(read, meta, category, loc)

	cover := CoverURL(meta.Cover)
	if s.covers != nil && cover != workspace.IconBook {
		mirrored, err := s.covers.Mirror(ctx, cover)
		if err != nil {
			log.Warn("Cover mirror failed, linking the platform cover", zap.Error(err))
		} else {
			cover = mirrored
		}
	}
	props["封面"] = workspace.File(cover)

	if ts := ReadTime(read); ts != 0 {
		rel, err := s.rollup.DateRelations(ctx, time.Unix(ts, 0))
		if err != nil {
			return err
		}
		props.Merge(rel)
	}

	var pageID string
	if stored != nil {
		rec, err := s.ws.Client.UpdateRecord(ctx, workspace.Record{ID: stored.PageID, Properties: props, Cover: cover})
		if err != nil {
			return fmt.Errorf("failed to update book: %w", err)
		}
		pageID = rec.ID
		report.Updated++
		log.Info("Book updated", zap.String("title", meta.Title))
	} else {
		if err := s.newBookProperties(ctx, id, meta, props); err != nil {
			return err
		}
		rec, err := s.ws.Client.CreateRecord(ctx, s.ws.Collections.Books, workspace.Record{Properties: props, Icon: cover, Cover: cover})
		if err != nil {
			return fmt.Errorf("failed to create book: %w", err)
		}
		pageID = rec.ID
		report.Created++
		log.Info("Book created", zap.String("title", meta.Title))
	}

	sessions, err := SyncSessions(ctx, s.ws.Client, s.ws.Collections.Reading, pageID, read.DailyTimes(), loc)
	if err != nil {
		return err
	}
	report.Sessions += sessions.Created + sessions.Updated
	return nil
}

// newBookProperties adds the fields written once, when the record is created.
func (s *Service) newBookProperties(ctx context.Context, id string, meta *weread.BookInfo, props workspace.Properties) error {
	props["书名"] = workspace.Title(meta.Title)
	props["BookId"] = workspace.RichText(id)
	props["链接"] = workspace.URL(bookid.ReaderURL(id))
	if meta.ISBN != "" {
		props["ISBN"] = workspace.RichText(meta.ISBN)
	}
	if meta.Intro != "" {
		props["简介"] = workspace.RichText(meta.Intro)
	}

	var authors []string
	for _, name := range Authors(meta.Author) {
		rid, err := s.rollup.Relation(ctx, s.ws.Collections.Authors, name, workspace.IconUser, nil)
		if err != nil {
			return err
		}
		authors = append(authors, rid)
	}
	if len(authors) > 0 {
		props["作者"] = workspace.Relation(authors...)
	}

	var categories []string
	for _, c := range meta.Categories {
		if c.Title == "" {
			continue
		}
		rid, err := s.rollup.Relation(ctx, s.ws.Collections.Categories, c.Title, workspace.IconTag, nil)
		if err != nil {
			return err
		}
		categories = append(categories, rid)
	}
	if len(categories) > 0 {
		props["分类"] = workspace.Relation(categories...)
	}
	return nil
}
