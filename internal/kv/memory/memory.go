package memory

import (
	"context"
	"sync"

	"fatura/internal/kv"
)

// Store keeps blobs in process memory. Nothing survives a restart.
type Store struct {
	mu    sync.Mutex
	items map[string][]byte
	saves int
}

var _ kv.Store = (*Store)(nil)

func New() *Store {
	return &Store{items: map[string][]byte{}}
}

// NewSeeded returns a store pre-populated with the given blobs.
func NewSeeded(seed map[string][]byte) *Store {
	s := New()
	for k, v := range seed {
		s.items[k] = append([]byte(nil), v...)
	}
	return s
}

func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	s.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
