package store

import "sync"

// cachePrefix namespaces response cache keys away from entity keys.
const cachePrefix = "cache:"

// keyPool provides reusable byte slices for building read keys.
var keyPool = sync.Pool{
	New: func() any {
		// Covers a prefix plus a hashed query or a nanoid.
		return make([]byte, 0, 256)
	},
}

// buildKey constructs a database key from prefix and suffix using a pooled buffer.
// Callers MUST call releaseKey when done with the key, and must not hand the
// key to a write transaction.
//
//	key := buildKey(cachePrefix, "games:list:abc")
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
func releaseKey(key []byte) {
	// Avoid keeping oversized buffers in the pool.
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
