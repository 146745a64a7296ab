package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X modfuse/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X modfuse/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X modfuse/internal/version.Date={{.Date}}
)
