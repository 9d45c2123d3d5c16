//go:build !windows

package cache

// LineSeparator is the native line ending used between artifact lines.
const LineSeparator = "\n"
