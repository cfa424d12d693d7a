package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/halcyon-cloud/accountflow/domains/accounts/be/service"
)

// MemoryStore is a mutex-guarded in-memory implementation of the accounts store,
// suitable for tests and the ingest server's memory backend. It honors the same conditional
// write contract as the Postgres-backed store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[service.Key]service.Record
	now     func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[service.Key]service.Record),
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, rec service.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.Key()]; exists {
		return service.ErrAlreadyExists
	}
	s.records[rec.Key()] = rec
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key service.Key) (service.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return service.Record{}, service.ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Update(ctx context.Context, key service.Key, ch service.Changes, expected time.Time) (service.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return service.Record{}, service.ErrNotFound
	}
	if !rec.LastModified.Equal(expected) {
		return service.Record{}, service.ErrWriteConflict
	}

	if ch.AccountStatus != nil {
		rec.AccountStatus = *ch.AccountStatus
	}
	if ch.AccountID != nil {
		rec.AccountID = *ch.AccountID
	}
	if ch.AccountName != nil {
		rec.AccountName = *ch.AccountName
	}
	if ch.RoleStatus != nil {
		rec.RoleStatus = *ch.RoleStatus
	}
	if ch.RoleArn != nil {
		rec.RoleArn = *ch.RoleArn
	}
	rec.LastModified = s.now().UTC()

	s.records[key] = rec
	return rec, nil
}

func (s *MemoryStore) List(ctx context.Context, filter service.ListFilter) ([]service.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]service.Record, 0, len(s.records))
	for _, rec := range s.records {
		if filter.AccountName != nil && rec.AccountName != *filter.AccountName {
			continue
		}
		items = append(items, rec)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].TenantID != items[j].TenantID {
			return items[i].TenantID < items[j].TenantID
		}
		return items[i].Environment < items[j].Environment
	})

	return items, nil
}

// Ensure interface compliance.
var _ service.Store = (*MemoryStore)(nil)
