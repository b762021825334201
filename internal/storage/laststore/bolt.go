// The fallback tier: one bbolt bucket, one fixed record key.

package laststore

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	boltBucket = []byte("lastfile")
	recordKey  = []byte("record")
)

// boltStore holds the single persisted record in a transactional
// key/value store, for payloads past the fast tier's quota.
type boltStore struct {
	db *bolt.DB
}

func openBolt(path string) (*boltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (b *boltStore) close() error {
	return b.db.Close()
}

// save writes the record under the fixed key in a single transaction.
func (b *boltStore) save(data []byte, name string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(Record{Bytes: data, Name: name}); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists(boltBucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return bkt.Put(recordKey, buf.Bytes())
	})
}

// load returns the stored record, or nil when the slot is empty.
func (b *boltStore) load() (*Record, error) {
	var rec *Record
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(boltBucket)
		if bkt == nil {
			return nil
		}
		raw := bkt.Get(recordKey)
		if raw == nil {
			return nil
		}
		var r Record
		if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&r); err != nil {
			return fmt.Errorf("failed to decode record: %w", err)
		}
		rec = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// clear empties the slot. A missing bucket or key is not an error.
func (b *boltStore) clear() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(boltBucket)
		if bkt == nil {
			return nil
		}
		return bkt.Delete(recordKey)
	})
}
