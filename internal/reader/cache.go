package reader

// pathCache is a bounded LRU of reconstructed paths. The key is the
// composite of the record header fields that change whenever a record slot
// is rewritten, so a reallocated record can never return its predecessor's
// path.
//
// The LRU is an intrusive doubly-linked list: each entry embeds its own
// prev/next pointers, so promotion and eviction allocate nothing.
type pathCache struct {
	capacity int
	items    map[pathKey]*pathEntry

	// Sentinel nodes; head.next is MRU, tail.prev is LRU.
	head, tail pathEntry
}

// pathKey composites the identity-bearing header fields of a record.
type pathKey struct {
	magic        uint32
	lsn          uint64
	linkCount    uint16
	recordNumber uint32
	flags        uint16
}

type pathEntry struct {
	prev, next *pathEntry

	key  pathKey
	path string
}

// pathCacheCapacity bounds the cache. Parent chains are short, so a small
// cache captures almost all repeat lookups during a sequential scan.
const pathCacheCapacity = 100

func newPathCache(capacity int) *pathCache {
	c := &pathCache{
		capacity: capacity,
		items:    make(map[pathKey]*pathEntry, capacity),
	}
	c.head.next = &c.tail
	c.tail.prev = &c.head
	return c
}

func insertAfter(at, e *pathEntry) {
	e.prev = at
	e.next = at.next
	at.next.prev = e
	at.next = e
}

func unlink(e *pathEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
}

func (c *pathCache) lookup(k pathKey) (string, bool) {
	e, ok := c.items[k]
	if !ok {
		return "", false
	}
	unlink(e)
	insertAfter(&c.head, e)
	return e.path, true
}

func (c *pathCache) store(k pathKey, path string) {
	if e, ok := c.items[k]; ok {
		e.path = path
		unlink(e)
		insertAfter(&c.head, e)
		return
	}
	if len(c.items) >= c.capacity {
		lru := c.tail.prev
		if lru != &c.head {
			unlink(lru)
			delete(c.items, lru.key)
		}
	}
	e := &pathEntry{key: k, path: path}
	c.items[k] = e
	insertAfter(&c.head, e)
}

func (c *pathCache) len() int { return len(c.items) }
