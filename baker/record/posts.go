package record

import (
	bolt "go.etcd.io/bbolt"

	"github.com/kettleworks/bake/baker/utils"
)

// GetPostEntry looks up a cached post by its source path. Nil result means
// cache miss.
func (m *Manager) GetPostEntry(path string) (*PostEntry, error) {
	var result *PostEntry
	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketPosts))
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(utils.NormalizePath(path)))
		if data == nil {
			return nil
		}
		var entry PostEntry
		if err := Decode(data, &entry); err != nil {
			// Undecodable entry is a miss, not an error
			return nil
		}
		result = &entry
		return nil
	})
	return result, err
}

// PutPostEntries writes a batch of cached posts in a single transaction.
func (m *Manager) PutPostEntries(entries []*PostEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return m.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketPosts))
		for _, entry := range entries {
			data, err := Encode(entry)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(utils.NormalizePath(entry.Path)), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// StoreExcerpt attaches rendered excerpt content to an entry, inlining small
// excerpts and pushing large ones into the content-addressed store.
func (m *Manager) StoreExcerpt(entry *PostEntry, content []byte) error {
	if len(content) < InlineExcerptThreshold {
		entry.InlineExcerpt = content
		entry.ExcerptHash = ""
		entry.Compressed = false
		return nil
	}
	hash, ct, err := m.store.Put(content)
	if err != nil {
		return err
	}
	entry.ExcerptHash = hash
	entry.InlineExcerpt = nil
	entry.Compressed = ct != CompressionNone
	return nil
}

// GetExcerpt retrieves an entry's rendered excerpt content.
func (m *Manager) GetExcerpt(entry *PostEntry) ([]byte, error) {
	if len(entry.InlineExcerpt) > 0 {
		return entry.InlineExcerpt, nil
	}
	if entry.ExcerptHash == "" {
		return nil, nil
	}
	return m.store.Get(entry.ExcerptHash, entry.Compressed)
}
