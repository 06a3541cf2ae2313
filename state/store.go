// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state persists contract records into a key-value database using
// the 32-byte slot layout of EVM storage.
package state

import (
	"encoding"
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/zeebo/blake3"
)

// Record is a contract object that can be written to the store.
type Record interface {
	StorageKey() []byte
	encoding.BinaryMarshaler
}

// Store wraps a database with record-level helpers.
type Store struct {
	db database.Database
}

// NewStore returns a store writing into db. The caller keeps ownership of db.
func NewStore(db database.Database) *Store {
	return &Store{db: db}
}

// Key derives a storage key: the readable prefix followed by the BLAKE3
// digest of the identifier parts, so every record of a kind shares a prefix.
func Key(prefix string, parts ...[]byte) []byte {
	h := blake3.New()
	for _, p := range parts {
		h.Write(p)
	}
	key := make([]byte, len(prefix)+32)
	copy(key, prefix)
	h.Digest().Read(key[len(prefix):])
	return key
}

// Get loads the record stored under key into into. It reports false when the
// key is absent.
func (s *Store) Get(key []byte, into encoding.BinaryUnmarshaler) (bool, error) {
	raw, err := s.db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := into.UnmarshalBinary(raw); err != nil {
		return false, fmt.Errorf("decode %x: %w", key, err)
	}
	return true, nil
}

// Commit writes records atomically in a single batch.
func (s *Store) Commit(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	batch := s.db.NewBatch()
	for _, r := range records {
		raw, err := r.MarshalBinary()
		if err != nil {
			return err
		}
		if err := batch.Put(r.StorageKey(), raw); err != nil {
			return err
		}
	}
	return batch.Write()
}

// Iterate calls fn with the value of every record under prefix, in key order.
func (s *Store) Iterate(prefix string, fn func(value []byte) error) error {
	it := s.db.NewIteratorWithPrefix([]byte(prefix))
	defer it.Release()
	for it.Next() {
		if err := fn(it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}
