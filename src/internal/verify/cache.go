package verify

import (
	"container/list"
	"net/netip"
	"sync"
	"time"
)

// resultCache keeps recent verification results with a fixed TTL,
// evicting the least recently used address when full.
type resultCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	// lruList front is the oldest entry.
	lruList  *list.List
	lruIndex map[netip.Addr]*list.Element
}

type cacheEntry struct {
	addr     netip.Addr
	result   Result
	deadline time.Time
}

func newResultCache(maxEntries int, ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		lruList:    list.New(),
		lruIndex:   make(map[netip.Addr]*list.Element),
	}
}

// get returns a copy of the cached result for addr, if still valid.
func (c *resultCache) get(addr netip.Addr) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.lruIndex[addr]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if !c.now().Before(entry.deadline) {
		c.lruList.Remove(elem)
		delete(c.lruIndex, addr)
		return nil, false
	}
	c.lruList.MoveToBack(elem)

	res := entry.result
	res.Hostnames = append([]string(nil), entry.result.Hostnames...)
	return &res, true
}

func (c *resultCache) put(res *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{addr: res.Addr, result: *res, deadline: c.now().Add(c.ttl)}
	entry.result.Hostnames = append([]string(nil), res.Hostnames...)

	if elem, ok := c.lruIndex[res.Addr]; ok {
		elem.Value = entry
		c.lruList.MoveToBack(elem)
		return
	}
	c.lruIndex[res.Addr] = c.lruList.PushBack(entry)

	for c.lruList.Len() > c.maxEntries {
		oldest := c.lruList.Front()
		c.lruList.Remove(oldest)
		delete(c.lruIndex, oldest.Value.(*cacheEntry).addr)
	}
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}
