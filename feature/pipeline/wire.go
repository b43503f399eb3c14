package pipeline

import (
	"context"
	"fmt"

	"weread-sync/core/config"
	"weread-sync/core/storage"
	"weread-sync/core/target"
	"weread-sync/core/weread"
	"weread-sync/feature/books"
	"weread-sync/feature/covers"

	"go.uber.org/zap"
)

// Build assembles a runner from the application configuration: the retrying
// platform client, the workspace opener and, when enabled, the cover mirror.
func Build(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	policy := cfg.Sync.Policy()

	client, err := weread.NewClient(cfg.Source)
	if err != nil {
		return nil, err
	}
	source := weread.NewRetryingClient(client, policy, logger)

	open := func(ctx context.Context) (*target.Target, error) {
		return target.Open(ctx, cfg.Target, cfg.Database, policy, logger)
	}

	var mirror books.CoverMirror
	if cfg.Sync.MirrorCovers {
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		mirror = covers.NewMirror(store, cfg.Storage, logger)
	}

	return NewRunner(cfg.Sync, source, open, mirror, logger), nil
}
