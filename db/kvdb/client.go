package kvdb

import (
	"context"
	"time"
)

// Client is the key-value backend of the document archive
type Client interface {
	Init() error
	Close() error
	GetConf() *Conf

	//---- Key Ops ----

	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) (int64, error)
	// Expire sets/updates expiration for a key
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) // found & updated, err

	//---- Hash Ops ----

	// SetFieldsWithExpiry writes fields and the key expiration atomically
	SetFieldsWithExpiry(ctx context.Context, key string, fields map[string]any, expiration time.Duration) error
	// GetAllFields returns an empty map when the key is not found
	GetAllFields(ctx context.Context, key string) (map[string]string, error)
}
