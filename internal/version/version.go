// Package version pins the engine version string. It participates in the
// cache validity signature, so bumping it invalidates all cached output.
package version

const Version = "0.4.0"
