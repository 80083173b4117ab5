package container

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/bplaum/gavl/pkg/codec"
)

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

var cacheBucket = []byte("mediainfo")

// Cache is an on-disk cache of previously-discovered media-info
// dictionaries, keyed by source URI, so repeated opens of the same
// disk file or stream skip re-running stream discovery. Domain-stack
// addition (SPEC_FULL.md §1); grounded on the teacher's sqlite
// persistence pattern in pkg/log/db.go but built on bbolt since the
// cached value is a single opaque blob per key rather than relational
// rows.
type Cache struct {
	db *bbolt.DB
}

// OpenCache opens (creating if absent) the media-info cache database
// under CacheDir.
func OpenCache() (*Cache, error) {
	dir := CacheDir()
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "mediainfo.db")
	db, err := bbolt.Open(path, 0644, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("container: open media-info cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the cache database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Get looks up the media-info dictionary cached for uri.
func (c *Cache) Get(uri string) (*MediaInfo, bool, error) {
	var raw []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(cacheBucket).Get([]byte(uri))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if raw == nil {
		return nil, false, nil
	}
	val, err := codec.DecodeValue(bytes.NewReader(raw))
	if err != nil {
		return nil, false, fmt.Errorf("container: decode cached media-info for %s: %w", uri, err)
	}
	info, err := MediaInfoFromValue(val)
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// Put stores info's media-info dictionary under uri, overwriting any
// previous entry.
func (c *Cache) Put(uri string, info *MediaInfo) error {
	var buf bytes.Buffer
	if err := codec.EncodeValue(&buf, info.ToValue()); err != nil {
		return fmt.Errorf("container: encode media-info for cache: %w", err)
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(uri), buf.Bytes())
	})
}

// Invalidate drops the cached entry for uri, if any.
func (c *Cache) Invalidate(uri string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(cacheBucket).Delete([]byte(uri))
	})
}
