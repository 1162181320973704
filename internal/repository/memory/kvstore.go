// Package memory is the in-process KVStore used in tests and when no
// database is configured. Documents do not survive a restart.
package memory

import (
	"context"
	"sync"

	"ckryptbit/internal/jsonutil"
	"ckryptbit/internal/repository"
)

// KVStore holds encoded documents in a map.
type KVStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewKVStore creates an empty store.
func NewKVStore() repository.KVStore {
	return &KVStore{docs: make(map[string][]byte)}
}

// Get returns the stored document, or (nil, nil) when absent.
func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

// Put encodes value with circular-safe JSON, keeping parity with the
// database-backed store.
func (s *KVStore) Put(_ context.Context, key string, value any) error {
	doc, err := jsonutil.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = doc
	return nil
}

// Delete removes the key; absent keys are a no-op.
func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}
