// Package hashing provides MD5 checksums for the artifact.
//
// Checksums are computed while data streams through a proxy, so writing the
// artifact or reading it back never needs a second pass. The cache writer
// compares checksums to skip rewriting identical content, and the HTTP API
// uses the artifact checksum as its ETag.
//
//	w := hashing.NewMD5WriterProxy(file)
//	_, _ = io.WriteString(w, content)
//	sum, _ := w.GetChecksum()
//
// MD5 is used for change detection only.
package hashing
