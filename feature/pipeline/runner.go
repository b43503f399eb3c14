package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"weread-sync/core/config"
	"weread-sync/core/rollup"
	"weread-sync/core/target"
	"weread-sync/core/weread"
	"weread-sync/feature/books"
	"weread-sync/feature/bootstrap"
	"weread-sync/feature/notes"
	"weread-sync/feature/readtime"

	"go.uber.org/zap"
)

// TargetOpener connects to the workspace store.
type TargetOpener func(ctx context.Context) (*target.Target, error)

// Report is the outcome of one run.
type Report struct {
	Scope      Scope     `json:"scope"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`

	Books    *books.Report    `json:"books,omitempty"`
	Notes    *notes.Report    `json:"notes,omitempty"`
	ReadTime *readtime.Report `json:"readtime,omitempty"`
}

// Runner executes sync scopes.
type Runner struct {
	cfg    config.SyncConfig
	source weread.Client
	open   TargetOpener
	covers books.CoverMirror
	logger *zap.Logger

	mu     sync.Mutex
	target *target.Target
}

// NewRunner creates a runner. covers may be nil.
func NewRunner(cfg config.SyncConfig, source weread.Client, open TargetOpener, covers books.CoverMirror, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		source: source,
		open:   open,
		covers: covers,
		logger: logger,
	}
}

func (r *Runner) connect(ctx context.Context) (*target.Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.target != nil {
		return r.target, nil
	}
	tgt, err := r.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open target: %w", err)
	}
	r.target = tgt
	return tgt, nil
}

func (r *Runner) settings() bootstrap.Settings {
	return bootstrap.Settings{
		ShowColor:     r.cfg.ShowColor,
		SyncBookmarks: r.cfg.SyncBookmarks,
		BlockType:     r.cfg.BlockType,
	}
}

// Run prepares the workspace and runs the steps of scope in order. The report
// holds the results of every step that ran, including the failing one.
func (r *Runner) Run(ctx context.Context, scope Scope) (*Report, error) {
	report := &Report{Scope: scope, StartedAt: time.Now()}
	err := r.run(ctx, scope, report)
	report.FinishedAt = time.Now()
	if err != nil {
		report.Error = err.Error()
	}
	return report, err
}

// prepare connects to the target and makes sure its layout exists.
func (r *Runner) prepare(ctx context.Context, log *zap.Logger) (*bootstrap.Workspace, *rollup.Cache, error) {
	tgt, err := r.connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	loc := rollup.LoadLocation(r.cfg.Timezone)
	ws, err := bootstrap.Prepare(ctx, tgt, r.settings(), loc, log)
	if err != nil {
		return nil, nil, err
	}
	cache := rollup.New(ws.Client, rollup.Collections{
		Year:  ws.Collections.Year,
		Month: ws.Collections.Month,
		Week:  ws.Collections.Week,
		Day:   ws.Collections.Day,
	}, loc, nil)
	return ws, cache, nil
}

// Notes returns a note service over the prepared workspace, for per-book work.
func (r *Runner) Notes(ctx context.Context) (*notes.Service, error) {
	ws, cache, err := r.prepare(ctx, r.logger)
	if err != nil {
		return nil, err
	}
	return notes.NewService(r.source, ws, cache, r.cfg.Options(), r.logger), nil
}

// Catalog loads the stored book records.
func (r *Runner) Catalog(ctx context.Context) (books.Catalog, error) {
	ws, _, err := r.prepare(ctx, r.logger)
	if err != nil {
		return nil, err
	}
	return books.LoadCatalog(ctx, ws.Client, ws.Collections.Books)
}

func (r *Runner) run(ctx context.Context, scope Scope, report *Report) error {
	log := r.logger.With(zap.String("scope", string(scope)))

	ws, cache, err := r.prepare(ctx, log)
	if err != nil {
		return err
	}

	if scope.Includes(ScopeBooks) {
		res, err := books.NewService(r.source, ws, cache, r.covers, log).SyncBooks(ctx)
		report.Books = res
		if err != nil {
			return fmt.Errorf("book sync aborted: %w", err)
		}
	}

	if scope.Includes(ScopeNotes) {
		res, err := notes.NewService(r.source, ws, cache, r.cfg.Options(), log).SyncNotes(ctx)
		report.Notes = res
		if err != nil {
			return fmt.Errorf("note sync aborted: %w", err)
		}
	}

	if scope.Includes(ScopeReadTime) {
		res, err := readtime.NewService(r.source, ws, cache, r.cfg.HeatmapImage, log).SyncReadTime(ctx)
		report.ReadTime = res
		if err != nil {
			return fmt.Errorf("reading history sync aborted: %w", err)
		}
	}

	log.Info("Sync finished", zap.Int("rollup_records", cache.Len()))
	return nil
}
