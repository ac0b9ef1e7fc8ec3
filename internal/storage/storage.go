// Package storage provides the durable key-value store that holds history and
// profile documents. Values are opaque bytes; callers own the encoding.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// ProbeKey is written and removed by SelfTest.
const ProbeKey = "jargone_test"

// Store is a flat key-value store with no transactions beyond single-key writes.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// SelfTest writes a probe value, reads it back and removes it.
func SelfTest(ctx context.Context, s Store) error {
	want := []byte("test_" + strconv.FormatInt(time.Now().UnixMilli(), 10))
	if err := s.Set(ctx, ProbeKey, want); err != nil {
		return fmt.Errorf("probe write: %w", err)
	}
	got, ok, err := s.Get(ctx, ProbeKey)
	if err != nil {
		return fmt.Errorf("probe read: %w", err)
	}
	if !ok || !bytes.Equal(got, want) {
		return fmt.Errorf("probe mismatch: wrote %q, read %q", want, got)
	}
	if err := s.Remove(ctx, ProbeKey); err != nil {
		return fmt.Errorf("probe remove: %w", err)
	}
	return nil
}

// Memory is an in-process Store used as a fallback and in tests.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.data[key] = bytes.Clone(value)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
