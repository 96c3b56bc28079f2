package store

import "context"

// KeyValueStore is the persistence contract the attendance core runs on.
// Keys follow flat conventions (attendanceLogs_<date>, dailyWorkStatus_<date>,
// currentShiftId, ...); values are opaque strings, JSON in practice.
type KeyValueStore interface {
	// Get returns the value for key, or ("", nil) when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// ListKeys returns all keys starting with prefix.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	// MultiGet returns key→value for the requested keys; absent keys are
	// omitted from the result.
	MultiGet(ctx context.Context, keys []string) (map[string]string, error)
}
