// internal/adapter/storage/memory.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"octopal/internal/domain/progression"
)

// MemoryStateStore is an in-memory state store for tests and single-process
// deployments without a database. Values round-trip through JSON so callers
// see the same serialization behavior as the Postgres store.
type MemoryStateStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	reports []progression.Report
}

// NewMemoryStateStore creates a new in-memory state store
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		records: make(map[string][]byte),
	}
}

// Get loads one record into v. Returns false when the key has never been set.
func (s *MemoryStateStore) Get(ctx context.Context, key string, v any) (bool, error) {
	s.mu.RLock()
	data, ok := s.records[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("error unmarshaling state %q: %w", key, err)
	}
	return true, nil
}

// SetAll stores every record. The batch is applied atomically: a marshal
// failure leaves the existing records untouched.
func (s *MemoryStateStore) SetAll(ctx context.Context, records map[string]any) error {
	staged := make(map[string][]byte, len(records))
	for key, v := range records {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("error marshaling state %q: %w", key, err)
		}
		staged[key] = data
	}

	s.mu.Lock()
	for key, data := range staged {
		s.records[key] = data
	}
	s.mu.Unlock()
	return nil
}

// AppendReport appends a report.
func (s *MemoryStateStore) AppendReport(ctx context.Context, r progression.Report) error {
	s.mu.Lock()
	s.reports = append(s.reports, r)
	s.mu.Unlock()
	return nil
}

// ListReports returns the most recent reports, newest first.
func (s *MemoryStateStore) ListReports(ctx context.Context, limit int) ([]progression.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.reports) {
		limit = len(s.reports)
	}
	out := make([]progression.Report, 0, limit)
	for i := len(s.reports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.reports[i])
	}
	return out, nil
}
