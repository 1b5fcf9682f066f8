// Package build holds build-time information stamped into the binary.
package build

// Version is the application version reported by the version command.
// Defaults to "dev"; release builds override it with -ldflags.
var Version = "dev"
