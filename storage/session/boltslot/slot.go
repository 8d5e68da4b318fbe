// Package boltslot keeps the session slot in a bbolt file so the viewer survives restarts.
package boltslot

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/trezcool/classpoll/core/session"
)

var (
	bucket = []byte("Session")
	key    = []byte("classpoll_session")
)

type Slot struct {
	db *bbolt.DB
}

var _ session.Slot = (*Slot)(nil)

// Open opens (or creates) the session file at path.
func Open(path string) (*Slot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating session dir")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "opening session file")
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating session bucket")
	}
	return &Slot{db: db}, nil
}

func (s *Slot) Load() ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucket).Get(key); v != nil {
			// v is only valid during the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	return data, errors.Wrap(err, "loading session")
}

func (s *Slot) Store(data []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put(key, data)
	})
	return errors.Wrap(err, "storing session")
}

func (s *Slot) Clear() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
	return errors.Wrap(err, "clearing session")
}

func (s *Slot) Close() error {
	return s.db.Close()
}
