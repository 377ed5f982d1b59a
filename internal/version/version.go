// Package version exposes build metadata stamped in via ldflags:
//
//	go build -ldflags "-X github.com/finvue/marketsync/internal/version.Version=1.0.0 \
//	                   -X github.com/finvue/marketsync/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/finvue/marketsync/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

var (
	// Version is the semantic version. "dev" for unstamped builds.
	Version = "dev"

	// Commit is the short git commit hash.
	Commit = "unknown"

	// BuildTime is the UTC build timestamp in ISO 8601.
	BuildTime = "unknown"
)

// Info is the build metadata in a form the status endpoint can serve.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// Current returns the stamped build metadata.
func Current() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}
}

// String renders the metadata as a single human-readable line.
func (i Info) String() string {
	return i.Version + " (" + i.Commit + ") built " + i.BuildTime
}
