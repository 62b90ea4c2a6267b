package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"restoreviews/internal/domain"
	"restoreviews/internal/normalize"
)

type QueryService struct {
	store    *Store
	cache    domain.Cache
	cacheTTL time.Duration

	mu       sync.Mutex
	servedID string // snapshot whose views are currently cached
}

var viewPolicies = []domain.SortPolicy{domain.SortByRating, domain.SortByLikes, domain.SortByRecent}

func viewKey(snapID string, policy domain.SortPolicy) string {
	return fmt.Sprintf("dashboard:%s:%s", snapID, policy)
}

func NewQueryService(store *Store, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: store, cache: c, cacheTTL: ttl}
}

func (s *QueryService) snapshot() (*domain.Snapshot, error) {
	snap := s.store.State().Snapshot
	if snap == nil {
		return nil, domain.ErrNoSnapshot
	}
	return snap, nil
}

// Dashboard builds the sorted dashboard for the current snapshot. Views are
// cached per snapshot id, so a new snapshot never serves a stale view.
func (s *QueryService) Dashboard(ctx context.Context, policy domain.SortPolicy) (domain.DashboardView, error) {
	snap, err := s.snapshot()
	if err != nil {
		return domain.DashboardView{}, err
	}
	key := viewKey(snap.ID, policy)
	var v domain.DashboardView
	if s.cache != nil {
		s.evictStale(ctx, snap.ID)
		if ok, _ := s.cache.Get(ctx, key, &v); ok {
			return v, nil
		}
	}

	v = buildView(snap, policy)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
	}
	return v, nil
}

// evictStale drops the views of the previously served snapshot once a newer
// one is published.
func (s *QueryService) evictStale(ctx context.Context, current string) {
	s.mu.Lock()
	prev := s.servedID
	s.servedID = current
	s.mu.Unlock()
	if prev == "" || prev == current {
		return
	}
	for _, p := range viewPolicies {
		if err := s.cache.Del(ctx, viewKey(prev, p)); err != nil {
			log.Warn().Err(err).Str("snapshot", prev).Msg("evict cached view failed")
		}
	}
}

func buildView(snap *domain.Snapshot, policy domain.SortPolicy) domain.DashboardView {
	v := domain.DashboardView{
		SnapshotID:  snap.ID,
		GeneratedAt: snap.GeneratedAt,
		Sort:        policy,
		Restaurants: len(snap.Restaurants),
		Reviews:     len(snap.Reviews),
		Dropped:     snap.Dropped,
		Aggregates:  SortAggregates(snap.Aggregates, policy),
	}
	if v.Restaurants == 0 {
		v.Restaurants = len(snap.Aggregates)
	}
	if n := len(snap.Reviews); n > 0 {
		var sum float64
		responded := 0
		for _, r := range snap.Reviews {
			sum += r.Rating
			if r.Responded {
				responded++
			}
		}
		v.AvgRating = normalize.Round1(sum / float64(n))
		v.ResponseRate = normalize.Round1(float64(responded) / float64(n) * 100)
	}
	return v
}

// Reviews lists canonical reviews of the current snapshot, newest first.
func (s *QueryService) Reviews(_ context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(snap.Reviews))
	for _, r := range snap.Reviews {
		if f.Restaurant != "" && !strings.EqualFold(strings.TrimSpace(r.RestaurantName), strings.TrimSpace(f.Restaurant)) {
			continue
		}
		if f.Responded != nil && r.Responded != *f.Responded {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
	return out, nil
}
