package settings

import (
	"runtime/debug"
)

// GitVersion reports the module version, or the VCS revision the binary was
// built from when no release version is stamped.
func GitVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return ""
	}

	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}

	var rev, modified string
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			rev = s.Value
		}
		if s.Key == "vcs.modified" {
			modified = s.Value
		}
	}
	if rev != "" {
		if modified == "true" {
			return rev + "-dirty"
		}
		return rev
	}

	return ""
}

// BuildInfo returns the version and the short release id used by the
// health endpoint.
func BuildInfo() (string, string) {
	version := GitVersion()
	releaseID := version
	if len(releaseID) > 7 {
		releaseID = releaseID[:7]
	}
	return version, releaseID
}
