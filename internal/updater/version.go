package updater

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// devVersion is the placeholder version of unreleased builds.
const devVersion = "dev"

// IsDevBuild reports whether version is an unreleased local build, which
// carries no comparable version number.
func IsDevBuild(version string) bool {
	v := strings.TrimSpace(version)
	return v == "" || v == devVersion
}

// IsUpdateAvailable reports whether the release tagged latest should be
// offered to a binary running current. Tags may carry a leading "v".
//
// Dev builds are behind every stable release. A pre-release tag is only
// offered to binaries that are themselves on a pre-release.
func IsUpdateAvailable(current, latest string) (bool, error) {
	lv, err := parseTag(latest)
	if err != nil {
		return false, fmt.Errorf("parsing release tag %q: %w", latest, err)
	}
	if IsDevBuild(current) {
		return lv.Prerelease() == "", nil
	}

	cv, err := parseTag(current)
	if err != nil {
		return false, fmt.Errorf("parsing running version %q: %w", current, err)
	}
	if lv.Prerelease() != "" && cv.Prerelease() == "" {
		return false, nil
	}
	return cv.LessThan(lv), nil
}

func parseTag(tag string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(strings.TrimSpace(tag), "v"))
}
