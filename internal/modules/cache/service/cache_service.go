package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"toolhub/internal/modules/cache/domain"
	cacheout "toolhub/internal/modules/cache/port/out"
	"toolhub/internal/platform/clock"
)

// CacheService owns the on-disk artifact store and its metadata rows.
// Freshness (IsStale) and integrity (VerifyIntegrity) are deliberately
// separate predicates: a file can be fresh yet corrupted, or expired yet
// byte-identical to a re-fetch.
type CacheService struct {
	root  string
	ttl   time.Duration
	store cacheout.MetadataStore
	clk   clock.Clock
	log   zerolog.Logger
}

func NewCacheService(root string, ttl time.Duration, store cacheout.MetadataStore, clk clock.Clock, log zerolog.Logger) *CacheService {
	return &CacheService{root: root, ttl: ttl, store: store, clk: clk, log: log}
}

// Store writes content under the path derived from key and replaces the
// metadata row. Disk and metadata failures propagate; nothing is swallowed.
func (s *CacheService) Store(ctx context.Context, key string, content []byte) (domain.Entry, error) {
	if err := domain.ValidKey(key); err != nil {
		return domain.Entry{}, err
	}
	localPath := s.localPath(key)
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return domain.Entry{}, fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(localPath, content, 0o644); err != nil {
		return domain.Entry{}, fmt.Errorf("write cached artifact: %w", err)
	}
	now := s.clk.Now()
	entry := domain.Entry{
		Key:       key,
		LocalPath: localPath,
		SHA256:    digest(content),
		ByteSize:  int64(len(content)),
		CachedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Upsert(ctx, entry); err != nil {
		return domain.Entry{}, fmt.Errorf("record cache entry: %w", err)
	}
	return entry, nil
}

// Resolve is a cheap presence probe: it reports the local path when the
// underlying file exists and consults no metadata.
func (s *CacheService) Resolve(_ context.Context, key string) (string, bool) {
	if err := domain.ValidKey(key); err != nil {
		return "", false
	}
	localPath := s.localPath(key)
	info, err := os.Stat(localPath)
	if err != nil || info.IsDir() {
		return "", false
	}
	return localPath, true
}

// IsStale treats every metadata problem as stale: failing toward a
// re-fetch is safe, serving unverified content is not.
func (s *CacheService) IsStale(ctx context.Context, key string) bool {
	if _, ok := s.Resolve(ctx, key); !ok {
		return true
	}
	entry, err := s.store.Get(ctx, key)
	if err != nil {
		return true
	}
	return entry.Expired(s.clk.Now())
}

// VerifyIntegrity recomputes the digest of the on-disk bytes and compares
// it to the stored one. Mismatch, a missing file and a missing row all
// answer false rather than erroring.
func (s *CacheService) VerifyIntegrity(ctx context.Context, key string) bool {
	entry, err := s.store.Get(ctx, key)
	if err != nil {
		return false
	}
	content, err := os.ReadFile(entry.LocalPath)
	if err != nil {
		return false
	}
	return digest(content) == entry.SHA256
}

// ClearAll removes every cached file and all metadata. File removal is
// best-effort: one failure is logged and the sweep continues.
func (s *CacheService) ClearAll(ctx context.Context) error {
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			s.log.Warn().Err(err).Str("path", path).Msg("cache clear: walk failure")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if err := os.Remove(path); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("cache clear: remove failed")
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("cache clear: walk aborted")
	}
	if err := s.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear cache metadata: %w", err)
	}
	return nil
}

// SweepExpired deletes only artifacts whose metadata says they are past
// expiry, then drops their rows. Same best-effort semantics as ClearAll.
func (s *CacheService) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.store.ListExpired(ctx, s.clk.Now())
	if err != nil {
		return 0, fmt.Errorf("list expired cache entries: %w", err)
	}
	removed := 0
	for _, entry := range expired {
		if err := os.Remove(entry.LocalPath); err != nil && !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("key", entry.Key).Msg("cache sweep: remove failed")
			continue
		}
		if err := s.store.Delete(ctx, entry.Key); err != nil {
			s.log.Warn().Err(err).Str("key", entry.Key).Msg("cache sweep: metadata delete failed")
			continue
		}
		removed++
	}
	return removed, nil
}

// TotalBytes walks the cache root; an absent root counts as empty.
func (s *CacheService) TotalBytes(_ context.Context) int64 {
	var total int64
	_ = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

func (s *CacheService) FileCount(_ context.Context) int {
	count := 0
	_ = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		count++
		return nil
	})
	return count
}

func (s *CacheService) localPath(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
