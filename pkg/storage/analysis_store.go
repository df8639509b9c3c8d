package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultAnalysisTTL is how long an analysis stays retrievable.
const DefaultAnalysisTTL = time.Hour

// ErrAnalysisNotFound is returned when an ID is unknown or expired.
var ErrAnalysisNotFound = errors.New("analysis not found")

// AnalysisStore keeps analysis records for a limited time.
type AnalysisStore interface {
	// Put stores rec under rec.ID. A positive ttl overrides rec.ExpiresAt.
	Put(ctx context.Context, rec *AnalysisRecord, ttl time.Duration) error
	// Get returns the record or ErrAnalysisNotFound.
	Get(ctx context.Context, id string) (*AnalysisRecord, error)
	// SweepExpired drops expired records and returns how many were removed.
	SweepExpired(ctx context.Context) (int, error)
	// Close releases the store's resources.
	Close() error
}

// MemoryAnalysisStore is a process-local AnalysisStore. Expired entries are
// swept whenever a new record is written; there is no background timer.
type MemoryAnalysisStore struct {
	mu      sync.RWMutex
	records map[string]*AnalysisRecord
	now     func() time.Time
}

// NewMemoryAnalysisStore creates an empty in-memory store.
func NewMemoryAnalysisStore() *MemoryAnalysisStore {
	return &MemoryAnalysisStore{
		records: make(map[string]*AnalysisRecord),
		now:     time.Now,
	}
}

// Put implements AnalysisStore.
func (s *MemoryAnalysisStore) Put(ctx context.Context, rec *AnalysisRecord, ttl time.Duration) error {
	if rec == nil || rec.ID == "" {
		return errors.New("analysis record needs an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if ttl > 0 {
		rec.ExpiresAt = now.Add(ttl)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	cp := *rec
	s.records[rec.ID] = &cp
	s.sweepLocked(now)
	return nil
}

// Get implements AnalysisStore.
func (s *MemoryAnalysisStore) Get(ctx context.Context, id string) (*AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok || rec.Expired(s.now()) {
		return nil, ErrAnalysisNotFound
	}
	cp := *rec
	return &cp, nil
}

// SweepExpired implements AnalysisStore.
func (s *MemoryAnalysisStore) SweepExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now()), nil
}

func (s *MemoryAnalysisStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, rec := range s.records {
		if rec.Expired(now) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored records, expired ones included.
func (s *MemoryAnalysisStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close implements AnalysisStore.
func (s *MemoryAnalysisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*AnalysisRecord)
	return nil
}

var _ AnalysisStore = (*MemoryAnalysisStore)(nil)
