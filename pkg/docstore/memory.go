package docstore

import (
	"bytes"
	"context"
	"sync"
)

// Memory is an in-memory Store, intended for tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, user, name string) ([]byte, error) {
	p, err := Path(user, name)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	v, ok := m.data[p]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound(p)
	}
	return bytes.Clone(v), nil
}

func (m *Memory) Put(_ context.Context, user, name string, data []byte) error {
	p, err := Path(user, name)
	if err != nil {
		return err
	}
	cp := bytes.Clone(data)
	if cp == nil {
		cp = []byte{}
	}
	m.mu.Lock()
	m.data[p] = cp
	m.mu.Unlock()
	return nil
}

func (m *Memory) Exists(_ context.Context, user, name string) (bool, error) {
	p, err := Path(user, name)
	if err != nil {
		return false, err
	}
	m.mu.RLock()
	_, ok := m.data[p]
	m.mu.RUnlock()
	return ok, nil
}

func (m *Memory) Delete(_ context.Context, user, name string) error {
	p, err := Path(user, name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, p)
	m.mu.Unlock()
	return nil
}

var _ Store = (*Memory)(nil)
