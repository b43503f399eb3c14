// Package storage wraps an S3-compatible object store (MinIO or AWS S3) used
// to mirror book covers.
//
// The Client interface is the subset of the MinIO client the mirror and the
// cover integrity check need, so
// tests substitute core/storage/mocks. EnsureBucket creates the bucket on
// first use and Config.ObjectURL builds the public link written to the
// workspace.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage
