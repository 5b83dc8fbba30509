// Package version exposes build metadata injected with -ldflags:
//
//	go build -ldflags "\
//	  -X github.com/satvikmishra44/taskhub/version.Version=1.2.3 \
//	  -X github.com/satvikmishra44/taskhub/version.Revision=abc123 \
//	  -X github.com/satvikmishra44/taskhub/version.BuiltAt=2026-01-02T15:04:05Z"
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time
var (
	Version  = "0.0.0-dev"
	Revision = ""
	BuiltAt  = ""
)

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	BuiltAt   string `json:"built_at"`
	GoVersion string `json:"go_version"`
}

// GetVersionInfo returns the build metadata. Revision and build time fall
// back to the VCS stamp the Go toolchain embeds.
func GetVersionInfo() Info {
	info := Info{
		Version:   Version,
		Revision:  Revision,
		BuiltAt:   BuiltAt,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Revision == "":
				info.Revision = s.Value
			case s.Key == "vcs.time" && info.BuiltAt == "":
				info.BuiltAt = s.Value
			}
		}
	}
	if info.Revision == "" {
		info.Revision = "unknown"
	}
	if info.BuiltAt == "" {
		info.BuiltAt = "unknown"
	}
	return info
}

// String renders a single line, e.g. "taskhub 1.2.3 (abc123, built ..., go1.24.1)"
func (i Info) String() string {
	rev := i.Revision
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return fmt.Sprintf("taskhub %s (%s, built %s, %s)", i.Version, rev, i.BuiltAt, i.GoVersion)
}

// JSON returns the indented JSON form
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
