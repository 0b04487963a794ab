package sync

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/iudanet/bandsync/internal/cloud"
	"github.com/iudanet/bandsync/internal/models"
)

// CheckCompatibility rejects an installed app older than the group's
// MinAppVersion or a major version behind the last writer of the manifest.
// An installed version that is not semver (a dev build) is never rejected.
func CheckCompatibility(installed string, m *models.GroupManifest) error {
	v := canonicalVersion(installed)
	if !semver.IsValid(v) {
		return nil
	}

	if minVersion := canonicalVersion(m.MinAppVersion); semver.IsValid(minVersion) && semver.Compare(v, minVersion) < 0 {
		return fmt.Errorf("%w: group requires %s, installed %s", ErrIncompatibleVersion, m.MinAppVersion, installed)
	}

	if writer := canonicalVersion(m.AppVersion); semver.IsValid(writer) && semver.Compare(semver.Major(writer), semver.Major(v)) > 0 {
		return fmt.Errorf("%w: group was written by %s, installed %s", ErrIncompatibleVersion, m.AppVersion, installed)
	}

	return nil
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// StatusFromError maps a cycle error to the status reported to the UI
func StatusFromError(err error) models.SyncStatus {
	switch {
	case err == nil:
		return models.StatusUpToDate
	case errors.Is(err, cloud.ErrOffline):
		return models.StatusOffline
	case errors.Is(err, cloud.ErrAuthenticationRequired):
		return models.StatusAuthenticationRequired
	default:
		return models.StatusError
	}
}
