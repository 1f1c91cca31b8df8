package version

// Version is the current release, overridden at build time with
// -ldflags "-X github.com/alvmarrod/rank-weaver/internal/version.Version=..."
var Version = "0.1.0"
