package integrity

import (
	"context"
	"errors"

	"weread-sync/core/storage"
	"weread-sync/core/workspace/local"
	"weread-sync/feature/books"
	"weread-sync/feature/covers"
	"weread-sync/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrCoversDisabled is returned by the cover check without a storage client.
	ErrCoversDisabled = errors.New("cover mirror is not configured")
	// ErrStoreDisabled is returned by the store check without a local database.
	ErrStoreDisabled = errors.New("local store is not configured")
)

// CatalogFunc loads the stored book records.
type CatalogFunc func(ctx context.Context) (books.Catalog, error)

// Service handles integrity checks.
type Service struct {
	client  storage.Client
	bucket  string
	db      *gorm.DB
	catalog CatalogFunc
	logger  *zap.Logger
}

// NewService creates a new integrity service. client and db may be nil, which
// disables the matching check.
func NewService(client storage.Client, bucket string, db *gorm.DB, catalog CatalogFunc, logger *zap.Logger) *Service {
	return &Service{
		client:  client,
		bucket:  bucket,
		db:      db,
		catalog: catalog,
		logger:  logger,
	}
}

// CheckCovers diffs the bucket against the cover links of the book records.
func (s *Service) CheckCovers(ctx context.Context) (*checks.CoverReport, error) {
	if s.client == nil {
		return nil, ErrCoversDisabled
	}
	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	var referenced []string
	for _, b := range catalog {
		if key, ok := covers.KeyOf(b.Cover); ok {
			referenced = append(referenced, key)
		}
	}
	return checks.CheckCovers(ctx, s.client, s.bucket, referenced)
}

// FixCovers removes the orphaned cover objects.
func (s *Service) FixCovers(ctx context.Context, orphans []string) error {
	if s.client == nil {
		return ErrCoversDisabled
	}
	return checks.FixCovers(ctx, s.client, s.bucket, s.logger, orphans)
}

// CheckStore validates the local mirror schema.
func (s *Service) CheckStore() (*checks.StoreReport, error) {
	if s.db == nil {
		return nil, ErrStoreDisabled
	}
	return checks.CheckStore(s.db, local.Models()...)
}

// FixStore migrates the local mirror schema.
func (s *Service) FixStore() error {
	if s.db == nil {
		return ErrStoreDisabled
	}
	return checks.FixStore(s.db, local.Models()...)
}
