package record

// BoltDB bucket names
const (
	// Core buckets
	BucketPosts     = "posts"      // {path} -> PostEntry (per-post render cache)
	BucketPageDeps  = "page_deps"  // {pageID} -> empty
	BucketTagCombos = "tag_combos" // {blogKey} -> msgpack []string

	// Global metadata
	BucketMeta = "meta" // schema_version, signature, last_bake_time

	// Meta keys
	KeySchemaVersion = "schema_version"
	KeySignature     = "signature"
	KeyLastBakeTime  = "last_bake_time"
)

// AllBuckets returns all bucket names for initialization
func AllBuckets() []string {
	return []string{
		BucketPosts,
		BucketPageDeps,
		BucketTagCombos,
		BucketMeta,
	}
}
