// Package kv provides the local key/value store used by the client.
//
// Two implementations exist: SQLiteRepository, backed by the goose-migrated
// "kv" table, and MemoryRepository for tests and throwaway sessions.
package kv
