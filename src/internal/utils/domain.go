package utils

import "strings"

// MatchDomain checks if sourceDomain equals matchesDomain or is a subdomain of it,
// returning the number of labels in matchesDomain as the specificity.
//
// Matching is case-insensitive and ignores a trailing root dot, so the
// fully-qualified names returned by PTR lookups ("crawl-66-249-66-1.googlebot.com.")
// can be compared directly:
//   - "crawl-1.googlebot.com." matches "googlebot.com" with specificity 2
//   - "googlebot.com" matches "googlebot.com" with specificity 2
//   - "fakegooglebot.com" does not match "googlebot.com"
func MatchDomain(sourceDomain, matchesDomain string) (matches bool, specificity uint8) {
	sourceDomain = strings.TrimSuffix(strings.ToLower(sourceDomain), ".")
	matchesDomain = strings.TrimSuffix(strings.ToLower(matchesDomain), ".")
	if sourceDomain == "" || matchesDomain == "" {
		return false, 0
	}

	if sourceDomain != matchesDomain && !strings.HasSuffix(sourceDomain, "."+matchesDomain) {
		return false, 0
	}

	return true, uint8(strings.Count(matchesDomain, ".") + 1)
}
