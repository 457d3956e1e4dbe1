package common

import (
	"fmt"
	"strings"
)

// Version is set via ldflags at build time:
// -ldflags "-X github.com/Alia5/studiogen/internal/codegen/common.Version=x.y.z"
var Version = ""

// GetVersion returns the version set at build time, or "0.0.1-dev" for
// development builds.
func GetVersion() (string, error) {
	if Version == "" {
		return "0.0.1-dev", nil
	}

	version := strings.TrimPrefix(Version, "v")
	baseVersion := strings.SplitN(version, "-", 2)[0]
	if !strings.Contains(baseVersion, ".") {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", Version)
	}
	return version, nil
}

// UserAgent is sent by every outgoing HTTP request.
func UserAgent() string {
	v, err := GetVersion()
	if err != nil {
		v = "unknown"
	}
	return "studiogen/" + v
}
