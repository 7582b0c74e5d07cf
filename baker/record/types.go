// Package record holds the persistent bake record: what the previous run
// produced, which pages depend on post data, and which tag combinations have
// ever been observed. State lives in a BoltDB file plus a content-addressed
// excerpt store.
package record

import (
	"encoding/hex"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"
)

// PostEntry caches one post's parsed metadata and rendered excerpt between
// runs so smart mode can skip re-rendering unchanged sources.
type PostEntry struct {
	Path          string    `msgpack:"path"`
	Blog          string    `msgpack:"blog"`
	ModTime       int64     `msgpack:"mod_time"`
	Title         string    `msgpack:"title"`
	Slug          string    `msgpack:"slug"`
	Description   string    `msgpack:"description"`
	Date          time.Time `msgpack:"date"`
	Tags          []string  `msgpack:"tags"`
	Category      string    `msgpack:"category"`
	URI           string    `msgpack:"uri"`
	HasMore       bool      `msgpack:"has_more"`
	ExcerptHash   string    `msgpack:"excerpt_hash,omitempty"`   // large excerpts live in the store
	InlineExcerpt []byte    `msgpack:"inline_excerpt,omitempty"` // small excerpts stored inline
	Compressed    bool      `msgpack:"compressed"`
}

// Constants for inline excerpt threshold
const (
	InlineExcerptThreshold = 32 * 1024 // excerpts smaller than this are stored inline
)

// CompressionType indicates how a stored blob is encoded
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionZstdFast
	CompressionZstdLevel3
)

// Compression thresholds
const (
	RawThreshold  = 8 * 1024   // < 8KB stored raw
	FastZstdMax   = 128 * 1024 // 8KB-128KB use zstd fast
	SchemaVersion = 1
)

// HashContent computes BLAKE3 hash of content and returns hex string
func HashContent(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashString computes BLAKE3 hash of a string
func HashString(s string) string {
	return HashContent([]byte(s))
}

// Encode serializes a value to msgpack bytes
func Encode(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode deserializes msgpack bytes to a value
func Decode(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}
