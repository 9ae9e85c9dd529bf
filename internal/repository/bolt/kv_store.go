package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"

	"sitterboard/internal/kv"
)

const (
	fileMode      os.FileMode = 0600
	defaultBucket             = "kv"
	versionSize               = 8
)

var errCorruptRecord = errors.New("bolt: record shorter than version header")

// KVStore keeps records in a single bbolt bucket. Each value is prefixed with
// its big-endian version so reads and compare-and-swap share one transaction.
type KVStore struct {
	db     *bbolt.DB
	bucket []byte
}

func Open(path string) (*KVStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("bolt: file path is blank")
	}
	db, err := bbolt.Open(path, fileMode, &bbolt.Options{Timeout: 30 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt open %s: %w", path, err)
	}
	store := &KVStore{db: db, bucket: []byte(defaultBucket)}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(store.bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt create bucket: %w", err)
	}
	return store, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (kv.Record, error) {
	if err := ctx.Err(); err != nil {
		return kv.Record{}, err
	}
	var rec kv.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw == nil {
			return kv.ErrNotFound
		}
		decoded, err := decode(key, raw)
		if err != nil {
			return err
		}
		rec = decoded
		return nil
	})
	return rec, err
}

func (s *KVStore) Put(ctx context.Context, key string, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var version int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		current, err := currentVersion(b, key)
		if err != nil {
			return err
		}
		version = current + 1
		return b.Put([]byte(key), encode(version, value))
	})
	return version, err
}

func (s *KVStore) ScanPrefix(ctx context.Context, prefix string) ([]kv.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := make([]kv.Record, 0)
	p := []byte(prefix)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
			rec, err := decode(string(k), v)
			if err != nil {
				return err
			}
			items = append(items, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *KVStore) CompareAndSwap(ctx context.Context, key string, expected int64, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var version int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		current, err := currentVersion(b, key)
		if err != nil {
			return err
		}
		if current != expected {
			version = current
			return kv.ErrVersionConflict
		}
		version = current + 1
		return b.Put([]byte(key), encode(version, value))
	})
	return version, err
}

func (s *KVStore) Close() error {
	return s.db.Close()
}

func currentVersion(b *bbolt.Bucket, key string) (int64, error) {
	raw := b.Get([]byte(key))
	if raw == nil {
		return 0, nil
	}
	if len(raw) < versionSize {
		return 0, errCorruptRecord
	}
	return int64(binary.BigEndian.Uint64(raw[:versionSize])), nil
}

func encode(version int64, value []byte) []byte {
	out := make([]byte, versionSize+len(value))
	binary.BigEndian.PutUint64(out[:versionSize], uint64(version))
	copy(out[versionSize:], value)
	return out
}

// decode copies out of the mmap'd page; bbolt memory is only valid inside the tx.
func decode(key string, raw []byte) (kv.Record, error) {
	if len(raw) < versionSize {
		return kv.Record{}, errCorruptRecord
	}
	value := make([]byte, len(raw)-versionSize)
	copy(value, raw[versionSize:])
	return kv.Record{
		Key:     key,
		Value:   value,
		Version: int64(binary.BigEndian.Uint64(raw[:versionSize])),
	}, nil
}
