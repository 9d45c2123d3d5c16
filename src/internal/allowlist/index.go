// Package allowlist answers "is this address a known crawler?" from the artifact.
//
// The artifact is never validated when it is written, so lines that do not
// parse as a CIDR or an address are skipped here instead.
package allowlist

import (
	"net/netip"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gaissmai/bart"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/metrics"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/utils"
)

// Entry is the artifact line an address matched.
type Entry struct {
	Prefix netip.Prefix `json:"prefix"`
	Label  string       `json:"label,omitempty"`
}

type snapshot struct {
	table    *bart.Table[Entry]
	size     int
	skipped  int
	loadedAt time.Time
}

// Index is a longest-prefix-match table over artifact lines.
// Lookups are lock-free; Load swaps the whole table.
type Index struct {
	current atomic.Pointer[snapshot]
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	idx := &Index{}
	idx.current.Store(&snapshot{table: new(bart.Table[Entry])})
	return idx
}

// Build creates an index from artifact lines.
func Build(lines []string) *Index {
	idx := NewIndex()
	idx.Load(lines)
	return idx
}

// Load replaces the index content with lines ("CIDR" or "CIDR,label").
// When a prefix appears more than once the first label is kept.
func (i *Index) Load(lines []string) {
	snap := &snapshot{table: new(bart.Table[Entry]), loadedAt: time.Now()}
	seen := make(map[netip.Prefix]struct{}, len(lines))

	for _, line := range lines {
		cidr, label, _ := strings.Cut(strings.TrimSpace(line), ",")
		pfx, err := utils.ParsePrefixOrAddr(strings.TrimSpace(cidr))
		if err != nil {
			snap.skipped++
			log.Debugf("Skipping artifact line %q: %v", line, err)
			continue
		}
		if _, ok := seen[pfx]; ok {
			continue
		}
		seen[pfx] = struct{}{}
		snap.table.Insert(pfx, Entry{Prefix: pfx, Label: label})
	}
	snap.size = len(seen)

	if snap.skipped > 0 {
		log.Warnf("Allow-list: skipped %d unparsable lines", snap.skipped)
	}
	i.current.Store(snap)
}

// Contains returns the most specific entry covering addr.
func (i *Index) Contains(addr netip.Addr) (Entry, bool) {
	snap := i.current.Load()
	if addr.Is4In6() {
		addr = addr.Unmap()
	}
	entry, ok := snap.table.Lookup(addr)
	metrics.ObserveLookup(ok)
	return entry, ok
}

// Size returns the number of distinct prefixes.
func (i *Index) Size() int {
	return i.current.Load().size
}

// Skipped returns the number of lines the last Load could not parse.
func (i *Index) Skipped() int {
	return i.current.Load().skipped
}

// LoadedAt returns when the index was last loaded. Zero for an empty index.
func (i *Index) LoadedAt() time.Time {
	return i.current.Load().loadedAt
}
