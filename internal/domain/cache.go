package domain

import (
	"context"
	"encoding/json"
	"time"
)

// CacheEntry is a cached external-data payload with an absolute expiry.
// The value is opaque JSON; the resource that wrote it knows the shape.
type CacheEntry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// CacheStore persists cache entries keyed by resource key.
//
// GetEntry is a pure lookup: it does not evaluate expiry (callers decide
// staleness against their own clock) and absence is reported via ok=false,
// not an error. UpsertEntry replaces any existing entry for the key; a
// concurrent reader sees either the old or the new entry in full.
type CacheStore interface {
	GetEntry(ctx context.Context, key string) (CacheEntry, bool, error)
	UpsertEntry(ctx context.Context, key string, value json.RawMessage, expiresAt time.Time) error
}
