package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"time"

	bolt "github.com/boltdb/bolt"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
)

const bucketName = "kv"

// BoltStore keeps the counters in a single bolt file
type BoltStore struct {
	db    *bolt.DB
	quota int
}

// NewBoltStore opens (or creates) the file at path. quota bounds the total
// size of keys and values; zero disables the check.
func NewBoltStore(path string, quota int) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, ierr.WithError(err).WithHint("failed to create cache directory").Mark(ierr.ErrSystem)
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, ierr.WithError(err).WithHintf("failed to open cache file %s", path).Mark(ierr.ErrSystem)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, ierr.WithError(err).WithHint("failed to initialise cache file").Mark(ierr.ErrSystem)
	}

	return &BoltStore{db: db, quota: quota}, nil
}

// Close releases the file lock
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) GetInt(_ context.Context, key string) (int, error) {
	var v int
	err := s.db.View(func(tx *bolt.Tx) error {
		v = decodeInt(tx.Bucket([]byte(bucketName)).Get([]byte(key)))
		return nil
	})
	if err != nil {
		return 0, ierr.WithError(err).WithHint("failed to read local cache").Mark(ierr.ErrSystem)
	}
	return v, nil
}

func (s *BoltStore) SetInt(_ context.Context, key string, value int) error {
	raw := encodeInt(value)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if s.quota > 0 {
			used := 0
			_ = b.ForEach(func(k, v []byte) error {
				if string(k) != key {
					used += len(k) + len(v)
				}
				return nil
			})
			used += len(key) + len(raw)
			if used > s.quota {
				return quotaError(key, used, s.quota)
			}
		}
		return b.Put([]byte(key), raw)
	})
	if err == nil {
		return nil
	}
	if ierr.IsQuotaExceeded(err) {
		return err
	}
	return ierr.WithError(err).WithHint("failed to write local cache").Mark(ierr.ErrSystem)
}
