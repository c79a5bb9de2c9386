package store

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	catalogs []CatalogRecord
	results  []ResultRecord
}

// NewMemory returns a Store that lives as long as the process.
func NewMemory() Store { return &memoryStore{} }

func (m *memoryStore) PutCatalog(_ context.Context, rec CatalogRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs = append(m.catalogs, rec)
	return nil
}

func (m *memoryStore) LatestCatalog(context.Context) (CatalogRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.catalogs) == 0 {
		return CatalogRecord{}, ErrNotFound
	}
	return m.catalogs[len(m.catalogs)-1], nil
}

func (m *memoryStore) PutResult(_ context.Context, rec ResultRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, rec)
	return nil
}

func (m *memoryStore) LatestResult(context.Context) (ResultRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.results) == 0 {
		return ResultRecord{}, ErrNotFound
	}
	return m.results[len(m.results)-1], nil
}

func (m *memoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs = nil
	m.results = nil
	return nil
}
