package release

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	cacheDirName  = "cache"
	cacheDuration = 10 * time.Minute
)

// CacheEntry stores the last latest-tag lookup for a repository
type CacheEntry struct {
	Owner     string    `json:"owner"`
	Repo      string    `json:"repo"`
	Tag       string    `json:"tag"`
	CheckedAt time.Time `json:"checked_at"`
}

// TagCache keeps latest-tag lookups on disk, one file per repository.
type TagCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewTagCache returns a cache rooted at <homeDir>/cache.
func NewTagCache(homeDir string) *TagCache {
	return &TagCache{
		dir: filepath.Join(homeDir, cacheDirName),
		ttl: cacheDuration,
		now: time.Now,
	}
}

// Path returns the cache file for owner/repo
func (c *TagCache) Path(owner, repo string) string {
	key := xxhash.Sum64String(owner + "/" + repo)
	return filepath.Join(c.dir, fmt.Sprintf("%016x.json", key))
}

// Load returns the cached entry for owner/repo.
func (c *TagCache) Load(owner, repo string) (*CacheEntry, error) {
	data, err := os.ReadFile(c.Path(owner, repo))
	if err != nil {
		return nil, err
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	// Guard against hash collisions
	if entry.Owner != owner || entry.Repo != repo {
		return nil, os.ErrNotExist
	}
	return &entry, nil
}

// Save writes the entry for its repository.
func (c *TagCache) Save(entry *CacheEntry) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.Path(entry.Owner, entry.Repo), data, 0o644)
}

// Valid returns true if entry is younger than the cache TTL.
func (c *TagCache) Valid(entry *CacheEntry) bool {
	return c.now().Sub(entry.CheckedAt) < c.ttl
}

// TagLookup fetches the latest tag for a repository.
type TagLookup func(owner, repo string) (string, error)

// LatestTag returns a fresh cached tag when one exists, otherwise calls
// lookup and stores the result. Cache write failures are ignored.
func (c *TagCache) LatestTag(owner, repo string, lookup TagLookup) (tag string, cached bool, err error) {
	if entry, err := c.Load(owner, repo); err == nil && c.Valid(entry) {
		return entry.Tag, true, nil
	}

	tag, err = lookup(owner, repo)
	if err != nil {
		return "", false, err
	}
	_ = c.Save(&CacheEntry{Owner: owner, Repo: repo, Tag: tag, CheckedAt: c.now()})
	return tag, false, nil
}
