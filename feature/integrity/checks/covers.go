package checks

import (
	"context"
	"fmt"
	"sort"

	"weread-sync/core/storage"
	"weread-sync/feature/covers"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// CoverReport compares the mirrored covers in the bucket with the book records.
type CoverReport struct {
	Bucket     string `json:"bucket"`
	Objects    int    `json:"objects"`
	Referenced int    `json:"referenced"`
	// Orphans are objects no book record links to.
	Orphans []string `json:"orphans"`
	// Missing are linked objects absent from the bucket.
	Missing []string `json:"missing"`
}

// CheckCovers lists the cover objects of bucket and diffs them against the
// referenced object names.
func CheckCovers(ctx context.Context, client storage.Client, bucket string, referenced []string) (*CoverReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	// Stops the listing goroutine on early return.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stored := make(map[string]bool)
	opts := minio.ListObjectsOptions{Prefix: covers.Prefix, Recursive: true}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list covers: %w", obj.Err)
		}
		stored[obj.Key] = true
	}

	linked := make(map[string]bool, len(referenced))
	for _, key := range referenced {
		linked[key] = true
	}

	report := &CoverReport{
		Bucket:     bucket,
		Objects:    len(stored),
		Referenced: len(linked),
		Orphans:    []string{},
		Missing:    []string{},
	}
	for key := range stored {
		if !linked[key] {
			report.Orphans = append(report.Orphans, key)
		}
	}
	for key := range linked {
		if !stored[key] {
			report.Missing = append(report.Missing, key)
		}
	}
	sort.Strings(report.Orphans)
	sort.Strings(report.Missing)
	return report, nil
}

// FixCovers removes the orphaned cover objects.
func FixCovers(ctx context.Context, client storage.Client, bucket string, logger *zap.Logger, orphans []string) error {
	for _, key := range orphans {
		if err := client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
			logger.Error("Failed to remove orphaned cover", zap.String("key", key), zap.Error(err))
			return err
		}
		logger.Info("Removed orphaned cover", zap.String("key", key))
	}
	return nil
}
