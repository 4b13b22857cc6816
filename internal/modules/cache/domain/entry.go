package domain

import (
	"fmt"
	"strings"
	"time"
)

// Entry is the metadata row for one cached artifact, keyed by its logical
// repository-relative path. The row exists iff the referenced local file
// exists; all fields are replaced together on re-cache, never merged.
type Entry struct {
	Key       string
	LocalPath string
	SHA256    string
	ByteSize  int64
	CachedAt  time.Time
	ExpiresAt time.Time
}

func (e Entry) Validate() error {
	if e.Key == "" {
		return fmt.Errorf("cache key is required")
	}
	if e.LocalPath == "" {
		return fmt.Errorf("cache local path is required")
	}
	if e.SHA256 == "" {
		return fmt.Errorf("cache content digest is required")
	}
	if e.ExpiresAt.Before(e.CachedAt) {
		return fmt.Errorf("cache entry expires before it was cached")
	}
	return nil
}

// Expired reports whether the entry is past its freshness window.
// Freshness is advisory; it says nothing about on-disk integrity.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// ValidKey rejects keys that could escape the cache root once joined
// onto it. Keys are slash-separated repository-relative paths.
func ValidKey(key string) error {
	if key == "" {
		return fmt.Errorf("cache key is required")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("cache key must be a relative slash path: %s", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("cache key contains an invalid segment: %s", key)
		}
	}
	return nil
}
