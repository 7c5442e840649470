package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/pkordes/metro-commuter/internal/domain"
)

// cachedSegmentRepo is a read-through cache over a SegmentRepo.
// It caches one snapshot of the whole dataset under a single key and serves
// every per-run listing from it, so run discovery and chain reads agree for
// as long as the snapshot lives. Writes flush it.
type cachedSegmentRepo struct {
	next  SegmentRepo
	cache *cache.Cache
}

// NewCachedSegmentRepo wraps next so that List results are reused for ttl.
// A non-positive ttl disables caching and returns next unchanged.
func NewCachedSegmentRepo(next SegmentRepo, ttl time.Duration) SegmentRepo {
	if ttl <= 0 {
		return next
	}
	return &cachedSegmentRepo{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *cachedSegmentRepo) Create(ctx context.Context, seg domain.Segment) (domain.Segment, error) {
	created, err := r.next.Create(ctx, seg)
	if err != nil {
		return domain.Segment{}, err
	}
	r.cache.Flush()
	return created, nil
}

const datasetKey = "segments"

// List filters the cached snapshot by run. The result is a fresh slice;
// callers sort it in place.
func (r *cachedSegmentRepo) List(ctx context.Context, runName string) ([]domain.Segment, error) {
	all, err := r.dataset(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Segment, 0, len(all))
	for _, seg := range all {
		if runName == "" || seg.RunName == runName {
			out = append(out, seg)
		}
	}
	return out, nil
}

func (r *cachedSegmentRepo) dataset(ctx context.Context) ([]domain.Segment, error) {
	if v, ok := r.cache.Get(datasetKey); ok {
		return v.([]domain.Segment), nil
	}
	segs, err := r.next.List(ctx, "")
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(datasetKey, segs)
	return segs, nil
}

func (r *cachedSegmentRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Segment, error) {
	return r.next.ListByIDs(ctx, ids)
}
