// Package cache manages the on-disk allow-list artifact.
//
// The artifact is a plaintext file, one CIDR (or "CIDR,label") per line,
// joined with the platform line separator and without a trailing newline.
// Whether it needs regenerating is decided by comparing the calendar date of
// its modification time with the calendar date of an injected Clock:
//
//	NoArtifact  -> regenerate
//	Fresh       -> keep, unless forced
//	Stale       -> regenerate (any other date, including a future one)
//	Unknown     -> keep, unless forced (modification time unavailable)
//
// Writes go to a temporary file in the same directory which is renamed over
// the artifact, under an advisory lock, so readers never observe a partial
// file. An empty line set is never written.
package cache
