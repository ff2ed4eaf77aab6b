package kv

import "context"

// Repository is a durable string-keyed byte store. It stands in for the
// browser's localStorage: tokens, the cached user, drafts and UI preferences
// all live here.
//
// Get returns (nil, nil) for a missing key. SetMany and DeleteMany apply all
// of their changes or none.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
