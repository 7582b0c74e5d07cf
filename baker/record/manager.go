package record

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Manager owns the on-disk bake record: a BoltDB file for metadata plus the
// content-addressed excerpt store next to it.
type Manager struct {
	db       *bolt.DB
	store    *Store
	basePath string
}

// Open opens or creates the record database under basePath. A corrupt
// database file is discarded and recreated empty; the record is state that
// can always be regenerated by a full bake.
func Open(basePath string) (*Manager, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	opts := &bolt.Options{
		Timeout:      10 * time.Second,
		FreelistType: bolt.FreelistArrayType,
	}

	dbPath := filepath.Join(basePath, "record.db")
	db, err := bolt.Open(dbPath, 0644, opts)
	if err != nil {
		// Corrupt or unreadable record: start over, never a fatal error.
		_ = os.Remove(dbPath)
		db, err = bolt.Open(dbPath, 0644, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open record db: %w", err)
		}
	}

	store, err := NewStore(filepath.Join(basePath, "store"))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create excerpt store: %w", err)
	}

	m := &Manager{
		db:       db,
		store:    store,
		basePath: basePath,
	}

	if err := m.initSchema(); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return m, nil
}

// Close closes the record database and store
func (m *Manager) Close() error {
	if m.store != nil {
		_ = m.store.Close()
	}
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// initSchema creates all buckets if they don't exist
func (m *Manager) initSchema() error {
	return m.db.Update(func(tx *bolt.Tx) error {
		for _, name := range AllBuckets() {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket([]byte(BucketMeta))
		if meta.Get([]byte(KeySchemaVersion)) == nil {
			v := make([]byte, 4)
			binary.BigEndian.PutUint32(v, SchemaVersion)
			if err := meta.Put([]byte(KeySchemaVersion), v); err != nil {
				return err
			}
		}

		return nil
	})
}

// VerifySignature compares the stored cache validity signature against the
// current one, byte for byte. Missing or mismatched means the whole output
// cache is invalid.
func (m *Manager) VerifySignature(current string) (valid bool, err error) {
	var stored []byte
	err = m.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(BucketMeta))
		stored = meta.Get([]byte(KeySignature))
		return nil
	})
	if err != nil {
		return false, err
	}
	return stored != nil && string(stored) == current, nil
}

// SetSignature stores the current cache validity signature
func (m *Manager) SetSignature(sig string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(BucketMeta))
		return meta.Put([]byte(KeySignature), []byte(sig))
	})
}

// LoadRecord reconstructs the in-memory record from persisted state. An
// absent or undecodable record loads as empty and untrusted, never an error.
func (m *Manager) LoadRecord() *Record {
	rec := NewRecord()

	err := m.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(BucketMeta))
		if data := meta.Get([]byte(KeyLastBakeTime)); len(data) == 8 {
			rec.lastBakeTime = int64(binary.BigEndian.Uint64(data))
		}

		deps := tx.Bucket([]byte(BucketPageDeps))
		if deps != nil {
			if err := deps.ForEach(func(k, _ []byte) error {
				rec.pageDeps[string(k)] = true
				return nil
			}); err != nil {
				return err
			}
		}

		combos := tx.Bucket([]byte(BucketTagCombos))
		if combos != nil {
			if err := combos.ForEach(func(k, v []byte) error {
				var keys []string
				if err := Decode(v, &keys); err != nil {
					return err
				}
				for _, key := range keys {
					rec.addCombinationLocked(string(k), key)
				}
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return NewRecord()
	}

	rec.trusted = rec.lastBakeTime > 0
	return rec
}

// SaveRecord persists the record's accumulated state and stamps the bake
// time. Called only at the end of a fully successful run.
func (m *Manager) SaveRecord(rec *Record, bakeTime int64) error {
	deps := rec.PageDependencyIDs()

	rec.mu.Lock()
	combos := make(map[string][]string, len(rec.tagCombos))
	for blog, keys := range rec.tagCombos {
		list := make([]string, 0, len(keys))
		for k := range keys {
			list = append(list, k)
		}
		combos[blog] = list
	}
	rec.mu.Unlock()

	return m.db.Update(func(tx *bolt.Tx) error {
		depsBucket := tx.Bucket([]byte(BucketPageDeps))
		for _, id := range deps {
			if err := depsBucket.Put([]byte(id), nil); err != nil {
				return err
			}
		}

		comboBucket := tx.Bucket([]byte(BucketTagCombos))
		for blog, keys := range combos {
			data, err := Encode(keys)
			if err != nil {
				return err
			}
			if err := comboBucket.Put([]byte(blog), data); err != nil {
				return err
			}
		}

		meta := tx.Bucket([]byte(BucketMeta))
		v := make([]byte, 8)
		binary.BigEndian.PutUint64(v, uint64(bakeTime))
		return meta.Put([]byte(KeyLastBakeTime), v)
	})
}

// ResetRecord drops all accumulated record state but keeps the schema.
// Used by the purge path.
func (m *Manager) ResetRecord() error {
	if err := m.store.Purge(); err != nil {
		return err
	}
	return m.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{BucketPosts, BucketPageDeps, BucketTagCombos} {
			if err := tx.DeleteBucket([]byte(name)); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		meta := tx.Bucket([]byte(BucketMeta))
		return meta.Delete([]byte(KeyLastBakeTime))
	})
}
