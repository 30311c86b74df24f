// Package storage provides an abstraction layer for the object store that receives
// registry snapshots.
//
// It wraps the MinIO Go client to provide a simplified interface for the operations the
// exporter needs. This abstraction supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: Verify or create the target bucket (see EnsureBucket).
//   - PutObject: Uploads a snapshot (with size and content type).
//   - ListObjects: Lists snapshots under a prefix, used for retention.
//   - RemoveObject: Deletes snapshots past retention.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage
