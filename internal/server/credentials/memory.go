package credentials

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// MemoryAccessStore keeps records and the subject index in TTL maps.
// mu makes the two-map updates atomic with respect to each other.
type MemoryAccessStore struct {
	mu        sync.Mutex
	records   *cache.TTLMap[models.AccessRecord]
	bySubject *cache.TTLMap[string]
}

func NewMemoryAccessStore() *MemoryAccessStore {
	return &MemoryAccessStore{
		records:   cache.NewTTLMap[models.AccessRecord](),
		bySubject: cache.NewTTLMap[string](),
	}
}

func (s *MemoryAccessStore) Put(_ context.Context, rec models.AccessRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records.Set(rec.ID, rec, ttl)
	s.bySubject.Set(rec.SubjectID, rec.ID, ttl)
	return nil
}

func (s *MemoryAccessStore) GetByID(_ context.Context, id string) (models.AccessRecord, error) {
	rec, ok := s.records.Get(id)
	if !ok {
		return models.AccessRecord{}, common.ErrorNotFound
	}
	return rec, nil
}

func (s *MemoryAccessStore) GetBySubject(_ context.Context, subjectID string) (models.AccessRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.bySubject.Get(subjectID)
	if !ok {
		return models.AccessRecord{}, common.ErrorNotFound
	}
	rec, ok := s.records.Get(id)
	if !ok {
		return models.AccessRecord{}, common.ErrorNotFound
	}
	return rec, nil
}

func (s *MemoryAccessStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records.Take(id)
	if !ok {
		return nil
	}
	// Only drop the index if it still points at this record.
	if cur, ok := s.bySubject.Get(rec.SubjectID); ok && cur == id {
		s.bySubject.Delete(rec.SubjectID)
	}
	return nil
}

func (s *MemoryAccessStore) DeleteBySubject(_ context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.bySubject.Take(subjectID)
	if ok {
		s.records.Delete(id)
	}
	return nil
}

func (s *MemoryAccessStore) Sweep() int {
	return s.records.Sweep() + s.bySubject.Sweep()
}

type MemoryRefreshStore struct {
	mu       sync.Mutex
	records  *cache.TTLMap[models.RefreshRecord]
	byAccess *cache.TTLMap[string]
}

func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{
		records:  cache.NewTTLMap[models.RefreshRecord](),
		byAccess: cache.NewTTLMap[string](),
	}
}

func (s *MemoryRefreshStore) Put(_ context.Context, rec models.RefreshRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A rotated record no longer answers to its old access id.
	if prev, ok := s.records.Get(rec.ID); ok && prev.Access.ID != rec.Access.ID {
		s.byAccess.Delete(prev.Access.ID)
	}
	s.records.Set(rec.ID, rec, ttl)
	s.byAccess.Set(rec.Access.ID, rec.ID, ttl)
	return nil
}

func (s *MemoryRefreshStore) GetByID(_ context.Context, id string) (models.RefreshRecord, error) {
	rec, ok := s.records.Get(id)
	if !ok {
		return models.RefreshRecord{}, common.ErrorNotFound
	}
	return rec, nil
}

func (s *MemoryRefreshStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records.Take(id); ok {
		s.byAccess.Delete(rec.Access.ID)
	}
	return nil
}

func (s *MemoryRefreshStore) DeleteByAccess(_ context.Context, accessID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byAccess.Take(accessID); ok {
		s.records.Delete(id)
	}
	return nil
}

func (s *MemoryRefreshStore) Sweep() int {
	return s.records.Sweep() + s.byAccess.Sweep()
}
