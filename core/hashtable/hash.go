package hashtable

import (
	"encoding/binary"
	"hash/fnv"
)

// HashBytes returns the 32-bit FNV-1a hash of b.
func HashBytes(b []byte) uint32 {
	h := fnv.New32a()
	_, _ = h.Write(b)
	return h.Sum32()
}

// HashString returns the 32-bit FNV-1a hash of s.
func HashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// HashUint32 mixes a 32-bit integer key.
func HashUint32(v uint32) uint32 {
	v ^= v >> 16
	v *= 0x7feb352d
	v ^= v >> 15
	v *= 0x846ca68b
	v ^= v >> 16
	return v
}

// HashUint64 folds a 64-bit integer key into 32 bits.
func HashUint64(v uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return HashBytes(buf[:])
}
