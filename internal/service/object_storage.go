// FILE: internal/service/object_storage.go
package service

import (
	"context"
	"time"
)

// ObjectStorage is the slice of the object store the services depend on.
// *storage.S3Client satisfies it.
type ObjectStorage interface {
	// PresignPut returns an upload URL bound to the given hex SHA-256
	// digest, so the store rejects content that does not hash to it.
	PresignPut(ctx context.Context, key, checksumSHA256 string, expiry time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Put(ctx context.Context, key string, body []byte) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	ObjectSize(ctx context.Context, key string) (int64, error)
	// ChecksumSHA256 returns the hex digest the store recorded for the
	// object, or empty when none exists.
	ChecksumSHA256(ctx context.Context, key string) (string, error)
	Bucket() string
}
