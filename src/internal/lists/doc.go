// Package lists turns endpoint feed responses into the ordered lines of the
// allow-list artifact.
//
// Parsing is tolerant: an endpoint whose response is not HTTP 200, is not
// valid JSON, or lacks a "prefixes" array contributes nothing, and the
// remaining endpoints are processed as usual. Prefix strings are passed
// through verbatim; nothing here validates CIDR syntax.
//
// Assembly is deterministic:
//
//  1. IPv4 prefixes of every endpoint, in registry order (if the mode includes IPv4)
//  2. IPv6 prefixes of every endpoint, in registry order (if the mode includes IPv6)
//  3. static entries, in configuration order, regardless of mode
//
// No deduplication is done: a CIDR published by two sources appears twice.
package lists
