package analyses

import (
	"context"
	"encoding/json"
	"time"

	"errorlens-backend/internal/shared/cache"
	"errorlens-backend/internal/shared/telemetry"
)

// CachedRepo decorates a Repo with a read-through cache for GetByID.
// Stored results are immutable, so cached entries never need invalidation.
// Cache failures are logged and bypassed.
type CachedRepo struct {
	Repo  Repo
	Cache cache.Cache
	TTL   time.Duration
}

// NewCachedRepo wraps repo with c.
func NewCachedRepo(repo Repo, c cache.Cache, ttl time.Duration) *CachedRepo {
	return &CachedRepo{Repo: repo, Cache: c, TTL: ttl}
}

func (r *CachedRepo) Create(ctx context.Context, in InsertAnalysisResult) (AnalysisResult, error) {
	rec, err := r.Repo.Create(ctx, in)
	if err != nil {
		return AnalysisResult{}, err
	}
	r.store(ctx, rec)
	return rec, nil
}

func (r *CachedRepo) GetByID(ctx context.Context, id string) (AnalysisResult, error) {
	key := cache.AnalysisKey(id)
	payload, found, err := r.Cache.Get(ctx, key)
	if err != nil {
		telemetry.Warn("cache.get_failed", map[string]any{"key": key, "error": err})
	} else if found {
		var rec AnalysisResult
		if err := json.Unmarshal(payload, &rec); err == nil {
			return rec, nil
		}
		telemetry.Warn("cache.decode_failed", map[string]any{"key": key})
	}

	rec, err := r.Repo.GetByID(ctx, id)
	if err != nil {
		return AnalysisResult{}, err
	}
	r.store(ctx, rec)
	return rec, nil
}

func (r *CachedRepo) List(ctx context.Context) ([]AnalysisResult, error) {
	return r.Repo.List(ctx)
}

func (r *CachedRepo) Ping(ctx context.Context) error {
	return r.Repo.Ping(ctx)
}

func (r *CachedRepo) store(ctx context.Context, rec AnalysisResult) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return
	}
	key := cache.AnalysisKey(rec.ID)
	if err := r.Cache.Set(ctx, key, payload, r.TTL); err != nil {
		telemetry.Warn("cache.set_failed", map[string]any{"key": key, "error": err})
	}
}

var _ Repo = (*CachedRepo)(nil)
