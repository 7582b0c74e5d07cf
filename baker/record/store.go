package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Store provides content-addressed blob storage with two-tier sharding,
// used for rendered excerpts that are too large to inline in the record.
type Store struct {
	basePath string
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

// NewStore creates a new content-addressed store
func NewStore(basePath string) (*Store, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Store{
		basePath: basePath,
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

// Close releases resources
func (s *Store) Close() error {
	_ = s.encoder.Close()
	s.decoder.Close()
	return nil
}

// shardPath computes the two-tier shard path: hash[0:2]/hash[2:4]/hash
func (s *Store) shardPath(hash string) string {
	if len(hash) < 4 {
		return filepath.Join(s.basePath, hash)
	}
	return filepath.Join(s.basePath, hash[0:2], hash[2:4], hash)
}

func extension(ct CompressionType) string {
	if ct == CompressionNone {
		return ".raw"
	}
	return ".zst"
}

// determineCompression decides compression strategy based on size
func determineCompression(size int) CompressionType {
	if size < RawThreshold {
		return CompressionNone
	}
	if size < FastZstdMax {
		return CompressionZstdFast
	}
	return CompressionZstdLevel3
}

// Put stores content and returns its hash and compression type
func (s *Store) Put(content []byte) (hash string, ct CompressionType, err error) {
	hash = HashContent(content)
	ct = determineCompression(len(content))

	path := s.shardPath(hash) + extension(ct)

	if _, err := os.Stat(path); err == nil {
		return hash, ct, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	var data []byte
	if ct != CompressionNone {
		if ct == CompressionZstdLevel3 {
			enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
			if err != nil {
				return "", 0, err
			}
			data = enc.EncodeAll(content, nil)
			_ = enc.Close()
		} else {
			data = s.encoder.EncodeAll(content, nil)
		}
	} else {
		data = content
	}

	// Atomic write: .tmp -> fsync -> rename
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to write content: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to rename file: %w", err)
	}

	return hash, ct, nil
}

// Get retrieves content by hash
func (s *Store) Get(hash string, compressed bool) ([]byte, error) {
	var path string
	if compressed {
		path = s.shardPath(hash) + ".zst"
	} else {
		path = s.shardPath(hash) + ".raw"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// Try the other extension
		if compressed {
			path = s.shardPath(hash) + ".raw"
		} else {
			path = s.shardPath(hash) + ".zst"
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("blob not found: %s", hash)
		}
		compressed = !compressed
	}

	if compressed {
		return s.decoder.DecodeAll(data, nil)
	}
	return data, nil
}

// Exists checks if a hash exists in the store
func (s *Store) Exists(hash string) bool {
	if _, err := os.Stat(s.shardPath(hash) + ".raw"); err == nil {
		return true
	}
	if _, err := os.Stat(s.shardPath(hash) + ".zst"); err == nil {
		return true
	}
	return false
}

// Purge removes every blob in the store.
func (s *Store) Purge() error {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.basePath, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
