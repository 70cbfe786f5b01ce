package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// OSKey identifies the running platform in the artifact tables.
type OSKey string

// The fixed set of platforms release artifacts are published for.
const (
	Windows OSKey = "windows"
	Linux   OSKey = "linux"
	Mac     OSKey = "mac"
)

// ErrUnsupported is returned when the running platform has no artifact mapping.
var ErrUnsupported = errors.New("os not supported")

// Current maps runtime.GOOS to an OSKey.
// The mapping is a fixed lookup so behavior is fully predictable per platform.
func Current() (OSKey, error) {
	return fromGOOS(runtime.GOOS)
}

// fromGOOS resolves a GOOS value to an OSKey or fails with ErrUnsupported.
func fromGOOS(goos string) (OSKey, error) {
	switch strings.ToLower(goos) {
	case "windows":
		return Windows, nil
	case "linux":
		return Linux, nil
	case "darwin":
		return Mac, nil
	default:
		return "", fmt.Errorf("%s: %w", goos, ErrUnsupported)
	}
}

// String returns the key as plain text for logging and error messages.
func (k OSKey) String() string {
	return string(k)
}
