package lists

import (
	"fmt"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
)

// IPVersion selects which endpoint prefixes are assembled.
type IPVersion int

const (
	IPv4Only  IPVersion = 4
	IPv6Only  IPVersion = 6
	DualStack IPVersion = 46
)

// ParseIPVersion accepts 4, 6 or 46.
func ParseIPVersion(v int) (IPVersion, error) {
	switch IPVersion(v) {
	case IPv4Only, IPv6Only, DualStack:
		return IPVersion(v), nil
	}
	return 0, errors.NewConfigError(fmt.Sprintf("invalid IP version %d, expected 4, 6 or 46", v), nil)
}

func (v IPVersion) IncludesIPv4() bool { return v == IPv4Only || v == DualStack }
func (v IPVersion) IncludesIPv6() bool { return v == IPv6Only || v == DualStack }

// StaticEntry is a user-supplied labelled list of CIDRs.
type StaticEntry struct {
	Label string
	CIDRs []string
}

// OutputLine is one artifact line. Label is empty when comments are disabled.
type OutputLine struct {
	CIDR  string
	Label string
}

func (l OutputLine) String() string {
	if l.Label == "" {
		return l.CIDR
	}
	return l.CIDR + "," + l.Label
}

// Assemble builds the ordered artifact lines. With comment set, every line
// carries its source label. An EMPTY_RESULT error is returned when there is
// nothing to write.
func Assemble(set *PrefixSet, version IPVersion, static []StaticEntry, comment bool) ([]OutputLine, error) {
	var lines []OutputLine
	add := func(cidrs []string, label string) {
		if !comment {
			label = ""
		}
		for _, cidr := range cidrs {
			lines = append(lines, OutputLine{CIDR: cidr, Label: label})
		}
	}

	if set != nil {
		if version.IncludesIPv4() {
			for _, s := range set.Sources {
				add(s.IPv4, s.Label)
			}
		}
		if version.IncludesIPv6() {
			for _, s := range set.Sources {
				add(s.IPv6, s.Label)
			}
		}
	}
	for _, entry := range static {
		add(entry.CIDRs, entry.Label)
	}

	if len(lines) == 0 {
		return nil, errors.NewEmptyResultError("no prefixes to write")
	}
	return lines, nil
}

// Render returns the string form of each line.
func Render(lines []OutputLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}
