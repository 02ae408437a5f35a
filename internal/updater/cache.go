package updater

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amtp-labs/amtp-cli/internal/platform"
)

const (
	cacheFileName = "version-check.json"
	// DefaultCacheMaxAge is how long a fetched release is trusted.
	DefaultCacheMaxAge = 24 * time.Hour
)

// cachedRelease is the on-disk record of the last release lookup. Only the
// release is stored; whether it is an update is recomputed against the
// running binary on every check, so upgrading never reads a stale verdict.
type cachedRelease struct {
	Repo      string    `json:"repo"`
	Release   Release   `json:"release"`
	CheckedAt time.Time `json:"checked_at"`
}

func (ch *Checker) cachePath() string {
	return filepath.Join(ch.cacheDir, cacheFileName)
}

// cachedLatest returns the remembered release when it belongs to this
// repo and is younger than maxAge. Any read problem is a cache miss.
func (ch *Checker) cachedLatest(now time.Time) *Release {
	if ch.cacheDir == "" {
		return nil
	}
	data, err := os.ReadFile(ch.cachePath())
	if err != nil {
		if !os.IsNotExist(err) {
			ch.logger.Debug("ignoring version cache", "err", err)
		}
		return nil
	}

	var entry cachedRelease
	if err := json.Unmarshal(data, &entry); err != nil {
		ch.logger.Debug("ignoring corrupt version cache", "err", err)
		return nil
	}
	if entry.Repo != ch.repo || entry.Release.Version == "" {
		return nil
	}
	if age := now.Sub(entry.CheckedAt); age < 0 || age > ch.maxAge {
		return nil
	}
	return &entry.Release
}

// remember records release as the latest one for this repo.
func (ch *Checker) remember(release *Release, now time.Time) error {
	if ch.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(ch.cacheDir, 0700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(cachedRelease{Repo: ch.repo, Release: *release, CheckedAt: now}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling version cache: %w", err)
	}
	if err := platform.WriteFilePrivate(ch.cachePath(), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	return nil
}
