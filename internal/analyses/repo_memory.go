package analyses

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo stores analysis results in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]AnalysisResult
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID: make(map[string]AnalysisResult),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a copy of the record and returns another copy.
func (r *MemoryRepo) Create(ctx context.Context, in InsertAnalysisResult) (AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisResult{}, err
	}
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[id]; exists {
		return AnalysisResult{}, ErrDuplicateID
	}
	rec := newRecord(id, in, r.now())
	r.byID[id] = rec
	return rec.clone(), nil
}

// GetByID returns a result by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisResult{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return AnalysisResult{}, ErrNotFound
	}
	return rec.clone(), nil
}

// List returns every result, newest first.
func (r *MemoryRepo) List(ctx context.Context) ([]AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]AnalysisResult, 0, len(r.byID))
	for _, rec := range r.byID {
		out = append(out, rec.clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Ping always succeeds for the in-memory store.
func (r *MemoryRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

var _ Repo = (*MemoryRepo)(nil)
