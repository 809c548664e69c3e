package storage

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const boltBucketStorage = "storage" // key: item key -> JSON document

type Bolt struct {
	db *bbolt.DB
}

func NewBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, errors.New("bolt storage path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketStorage))
		return err
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) GetItem(key string) ([]byte, bool, error) {
	var value []byte

	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(boltBucketStorage)).Get([]byte(key))
		if v != nil {
			// bolt values are only valid during the transaction
			value = append([]byte{}, v...)
		}

		return nil
	})

	return value, value != nil, err
}

func (b *Bolt) SetItem(key string, value []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketStorage)).Put([]byte(key), value)
	})
}

func (b *Bolt) RemoveItem(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketStorage)).Delete([]byte(key))
	})
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
