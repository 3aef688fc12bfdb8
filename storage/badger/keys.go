package badger

import (
	"encoding/binary"

	"github.com/poiesic/recommendit/core"
)

// Key layout, all scoped by collection name:
//
//	<name>:e:<id big-endian>  entry
//	<name>:dim                vector dimension, fixed by the first write
//	<name>:manifest           manifest
const (
	entrySegment    = ":e:"
	dimSegment      = ":dim"
	manifestSegment = ":manifest"
)

// makeEntryPrefix returns the prefix shared by all entries of a collection.
func makeEntryPrefix(collection string) []byte {
	return []byte(collection + entrySegment)
}

// makeEntryKey generates a key for an entry by ID.
// IDs are written BigEndian so iteration yields ascending ID order.
func makeEntryKey(collection string, id core.ID) []byte {
	prefix := makeEntryPrefix(collection)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeDimKey generates the key holding the collection dimension.
func makeDimKey(collection string) []byte {
	return []byte(collection + dimSegment)
}

// makeManifestKey generates the key holding the collection manifest.
func makeManifestKey(collection string) []byte {
	return []byte(collection + manifestSegment)
}
