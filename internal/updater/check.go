package updater

import (
	"context"
	"time"
)

// Result is the outcome of a release check.
type Result struct {
	CurrentVersion  string `json:"current_version"`
	LatestVersion   string `json:"latest_version"`
	ReleaseURL      string `json:"release_url,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
	FromCache       bool   `json:"from_cache"`
}

// Check reports whether a newer release exists. A release fetched within
// the cache max age is reused; otherwise GitHub is queried and the cache
// rewritten. Cache failures are logged and otherwise ignored.
func (ch *Checker) Check(ctx context.Context) (*Result, error) {
	now := ch.now()

	release := ch.cachedLatest(now)
	fromCache := release != nil
	if !fromCache {
		var err error
		release, err = ch.LatestRelease(ctx)
		if err != nil {
			return nil, err
		}
		if err := ch.remember(release, now); err != nil {
			ch.logger.Debug("could not save version cache", "err", err)
		}
	}

	available, err := IsUpdateAvailable(ch.currentVersion, release.Version)
	if err != nil {
		return nil, err
	}

	return &Result{
		CurrentVersion:  ch.currentVersion,
		LatestVersion:   release.Version,
		ReleaseURL:      release.HTMLURL,
		UpdateAvailable: available,
		FromCache:       fromCache,
	}, nil
}

func (ch *Checker) now() time.Time {
	if ch.clock != nil {
		return ch.clock()
	}
	return time.Now()
}
