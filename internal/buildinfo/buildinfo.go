// Package buildinfo reports the version of the running mcpm binary.
//
// Release builds inject the values with
//
//	-ldflags "-X github.com/thoreinstein/mcpm/internal/buildinfo.version=v1.2.0 ..."
//
// Binaries built with go install fall back to the module version and VCS
// stamps recorded by the Go toolchain.
package buildinfo

import (
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Info describes the build.
type Info struct {
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Date     string `json:"date"`
	Platform string `json:"platform"`
}

var get = sync.OnceValue(func() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(bi)
})

// Get returns the build information.
func Get() Info { return get() }

// Version is shorthand for Get().Version.
func Version() string { return get().Version }

func resolve(bi *debug.BuildInfo) Info {
	info := Info{
		Version:  version,
		Commit:   commit,
		Date:     date,
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi == nil {
		return fill(info)
	}

	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	modified := false
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if modified && info.Commit != "" && commit == "" {
		info.Commit += "-dirty"
	}
	return fill(info)
}

func fill(info Info) Info {
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return info
}
