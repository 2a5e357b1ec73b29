package healthrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
)

// MemoryRepository keeps uploads in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[int64][]healthdata.Record
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[int64][]healthdata.Record)}
}

// Save appends the record to the user's history.
func (r *MemoryRepository) Save(_ context.Context, record healthdata.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.UserID] = append(r.records[record.UserID], record)
	return nil
}

// ListByUser returns the newest records first.
func (r *MemoryRepository) ListByUser(_ context.Context, userID int64, limit int) ([]healthdata.Record, error) {
	r.mu.RLock()
	src := r.records[userID]
	out := make([]healthdata.Record, len(src))
	copy(out, src)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get finds a single record owned by userID.
func (r *MemoryRepository) Get(_ context.Context, userID int64, id string) (healthdata.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.records[userID] {
		if record.ID == id {
			return record, true, nil
		}
	}
	return healthdata.Record{}, false, nil
}

var _ healthdata.Repository = (*MemoryRepository)(nil)
