// Package version carries the build version, injected at link time.
package version

// Version is set via -ldflags at build time; "dev" otherwise.
var Version = "dev"
