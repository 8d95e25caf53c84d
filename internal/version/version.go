// Package version exposes build metadata for the coinanalysis binary.
//
// Values are injected with ldflags:
//
//	go build -ldflags "-X github.com/rickgao/coinanalysis/internal/version.Version=0.3.0 \
//	                   -X github.com/rickgao/coinanalysis/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/coinanalysis/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/coinanalysis
package version

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns "VERSION (COMMIT) built BUILDTIME".
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}

// UserAgent is the default User-Agent sent to the exchange.
func UserAgent() string {
	return "coinanalysis/" + Version
}
