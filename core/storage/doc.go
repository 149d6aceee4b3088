// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so the asset migration and
// integrity features can be tested against the mock in core/storage/mocks. Both AWS S3
// and self-hosted MinIO instances are supported.
//
// # Operations
//
//   - BucketExists / MakeBucket / EnsureBucket: bucket bootstrap.
//   - PutObject: uploads migrated lot images.
//   - StatObject: verifies a durable image still exists.
//   - ListObjects / ListKeys: enumerate the images of an auction folder.
//   - RemoveObjects / RemovePrefix: clean up the folder of a removed lot.
//
// # Object URLs
//
// Durable image URLs are built with Config.ObjectURL as {public_url}/{bucket}/{key}.
// Config.ObjectKey reverses the mapping for integrity checks.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage
