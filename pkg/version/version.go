// Package version provides the debtmap tool version.
package version

// Version is the debtmap tool version.
// Can be overridden at build time with:
//   go build -ldflags "-X github.com/debtmap-go/debtmap/pkg/version.Version=2.0.1"
var Version = "dev"
