// Package version exposes the build identity baked into the lyricsync
// binary. Version, commit, and build time are stamped at compile time:
//
//	go build -ldflags "-X github.com/skillsenselab/lyricsync/version.Version=1.0.0"
//
// When the ldflags are absent the package falls back to the VCS metadata
// the Go toolchain embeds.
package version

import (
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info is the build identity reported by the /info endpoint.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	IsRelease bool   `json:"is_release"`
	IsDirty   bool   `json:"is_dirty"`
}

// Get assembles the build identity from the ldflags variables, filling
// gaps from the toolchain's embedded VCS metadata.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" && len(s.Value) >= 7 {
					info.GitCommit = s.Value[:7]
				}
			case "vcs.modified":
				info.IsDirty = s.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}

	if info.BuildTime == "" {
		info.BuildTime = time.Now().UTC().Format(time.RFC3339)
	}
	info.IsRelease = info.Version != "dev" && !info.IsDirty && !strings.Contains(info.Version, "dirty")
	return info
}

// String renders a short human-readable form, e.g. "1.2.0-abc1234".
func (i Info) String() string {
	out := i.Version
	if i.GitCommit != "" {
		out += "-" + i.GitCommit
	}
	if i.IsDirty {
		out += "-dirty"
	}
	return out
}
