package target

import (
	"context"
	"errors"
	"fmt"

	"weread-sync/core/database"
	"weread-sync/core/retry"
	"weread-sync/core/workspace"
	"weread-sync/core/workspace/local"
	"weread-sync/core/workspace/notion"

	"go.uber.org/zap"
)

// DefaultLocalRoot is the root title of a local mirror without a configured page.
const DefaultLocalRoot = "WeRead"

// Target is an opened workspace with its root record.
type Target struct {
	Client workspace.Client
	RootID string
	Names  Names
}

// Open connects to the configured workspace and wraps it in the retry policy.
// The local driver stores the mirror in the database described by db.
func Open(ctx context.Context, cfg Config, db database.Config, policy retry.Policy, logger *zap.Logger) (*Target, error) {
	var (
		inner  workspace.Client
		rootID string
	)

	switch cfg.Driver {
	case "notion", "":
		if cfg.Token == "" {
			return nil, errors.New("notion token is not configured")
		}
		id, err := notion.ExtractPageID(cfg.Page)
		if err != nil {
			return nil, fmt.Errorf("failed to read notion page: %w", err)
		}
		inner = notion.New(notion.Config{Token: cfg.Token, BaseURL: cfg.BaseURL, TimeoutSeconds: cfg.TimeoutSeconds})
		rootID = id
	case "local":
		c, err := local.Open(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open local workspace: %w", err)
		}
		title := cfg.Page
		if title == "" {
			title = DefaultLocalRoot
		}
		id, err := c.RootPage(ctx, title)
		if err != nil {
			return nil, fmt.Errorf("failed to open root page %s: %w", title, err)
		}
		inner = c
		rootID = id
	default:
		return nil, fmt.Errorf("unsupported target driver: %s", cfg.Driver)
	}

	logger.Info("Workspace opened", zap.String("driver", cfg.Driver), zap.String("root_id", rootID))
	return &Target{
		Client: workspace.NewRetryingClient(inner, policy, logger),
		RootID: rootID,
		Names:  cfg.Names.withDefaults(),
	}, nil
}
