package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"restoreviews/internal/domain"
	"restoreviews/internal/normalize"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// State is everything the dashboard screen renders from.
type State struct {
	Generation uint64
	Status     Status
	Snapshot   *domain.Snapshot
	Err        error
}

type Event interface{ isEvent() }

type LoadStarted struct{ Gen uint64 }

type LoadSucceeded struct {
	Gen      uint64
	Snapshot *domain.Snapshot
}

type LoadFailed struct {
	Gen uint64
	Err error
}

func (LoadStarted) isEvent()   {}
func (LoadSucceeded) isEvent() {}
func (LoadFailed) isEvent()    {}

// Reduce is the only state transition. Results of any generation other than
// the latest started one are ignored, so a slow superseded fetch can never
// overwrite newer data. A failed reload keeps the previous snapshot.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case LoadStarted:
		if e.Gen <= s.Generation {
			return s
		}
		s.Generation = e.Gen
		s.Status = StatusLoading
		s.Err = nil
	case LoadSucceeded:
		if e.Gen != s.Generation || e.Snapshot == nil {
			return s
		}
		s.Status = StatusReady
		s.Snapshot = e.Snapshot
		s.Err = nil
	case LoadFailed:
		if e.Gen != s.Generation {
			return s
		}
		s.Status = StatusFailed
		s.Err = e.Err
	}
	return s
}

// Store holds the current State behind a lock; writes go through Reduce.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store { return &Store{state: State{Status: StatusIdle}} }

func (s *Store) Dispatch(ev Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, ev)
	return s.state
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// RefreshHook observes each refresh outcome: "ok", "error" or "superseded".
type RefreshHook func(result string, kept, dropped int, took time.Duration)

// Loader fetches, normalizes and aggregates one snapshot per refresh.
type Loader struct {
	src   domain.ReviewSource
	norm  *normalize.Normalizer
	agg   *Aggregator
	store *Store
	hook  RefreshHook
	now   func() time.Time

	gen    atomic.Uint64
	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewLoader(src domain.ReviewSource, n *normalize.Normalizer, store *Store, hook RefreshHook) *Loader {
	if n == nil {
		n = normalize.New()
	}
	return &Loader{
		src:   src,
		norm:  n,
		agg:   NewAggregator(n),
		store: store,
		hook:  hook,
		now:   time.Now,
	}
}

func (l *Loader) Store() *Store { return l.store }

// Refresh starts a new generation, cancels the previous in-flight one and
// publishes the result into the store if nothing newer started meanwhile.
func (l *Loader) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	start := l.now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Generation and cancel func change together, so prev always belongs to
	// an older generation.
	l.mu.Lock()
	gen := l.gen.Add(1)
	prev := l.cancel
	l.cancel = cancel
	l.mu.Unlock()
	if prev != nil {
		prev()
	}

	l.store.Dispatch(LoadStarted{Gen: gen})

	snap, err := l.load(ctx, gen)
	if err != nil {
		if l.gen.Load() != gen {
			l.observe("superseded", 0, 0, start)
			return nil, fmt.Errorf("generation %d: %w", gen, domain.ErrSuperseded)
		}
		l.store.Dispatch(LoadFailed{Gen: gen, Err: err})
		l.observe("error", 0, 0, start)
		log.Warn().Err(err).Uint64("generation", gen).Msg("dashboard refresh failed")
		return nil, err
	}

	if st := l.store.Dispatch(LoadSucceeded{Gen: gen, Snapshot: snap}); st.Generation != gen {
		l.observe("superseded", len(snap.Reviews), snap.Dropped, start)
		return nil, fmt.Errorf("generation %d: %w", gen, domain.ErrSuperseded)
	}
	l.observe("ok", len(snap.Reviews), snap.Dropped, start)
	log.Info().
		Str("snapshot", snap.ID).
		Uint64("generation", gen).
		Int("restaurants", len(snap.Restaurants)).
		Int("reviews", len(snap.Reviews)).
		Int("dropped", snap.Dropped).
		Dur("took", l.now().Sub(start)).
		Msg("dashboard refreshed")
	return snap, nil
}

func (l *Loader) observe(result string, kept, dropped int, start time.Time) {
	if l.hook != nil {
		l.hook(result, kept, dropped, l.now().Sub(start))
	}
}

// load fetches restaurants and reviews concurrently; both must complete
// before anything is normalized.
func (l *Loader) load(ctx context.Context, gen uint64) (*domain.Snapshot, error) {
	var rawRestaurants, rawReviews []map[string]any

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rs, err := l.src.ListRestaurants(gctx)
		if err != nil {
			return fmt.Errorf("list restaurants: %w", err)
		}
		rawRestaurants = rs
		return nil
	})
	g.Go(func() error {
		rs, err := l.src.ListReviews(gctx)
		if err != nil {
			return fmt.Errorf("list reviews: %w", err)
		}
		rawReviews = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	restaurants := make([]domain.Restaurant, 0, len(rawRestaurants))
	names := make(map[string]string, len(rawRestaurants))
	for _, raw := range rawRestaurants {
		r := l.norm.NormalizeRestaurant(raw)
		if r.ID == "" && r.Name == "" {
			continue
		}
		restaurants = append(restaurants, r)
		if r.ID != "" && r.Name != "" {
			names[r.ID] = r.Name
		}
	}

	reviews, keptRaw, dropped := l.norm.NormalizeAll(rawReviews)
	for i := range reviews {
		if strings.TrimSpace(reviews[i].RestaurantName) == "" {
			reviews[i].RestaurantName = names[reviews[i].RestaurantID]
		}
	}
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Uint64("generation", gen).Msg("reviews without text dropped")
	}

	return &domain.Snapshot{
		ID:          uuid.NewString(),
		Generation:  gen,
		GeneratedAt: l.now().UTC(),
		Restaurants: restaurants,
		Reviews:     reviews,
		Dropped:     dropped,
		Aggregates:  l.agg.Aggregate(keptRaw, ByRestaurant(names)),
	}, nil
}

// Run refreshes immediately and then every interval until ctx is done.
func (l *Loader) Run(ctx context.Context, every time.Duration) {
	if _, err := l.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrSuperseded) {
		log.Warn().Err(err).Msg("initial refresh failed")
	}
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = l.Refresh(ctx)
		}
	}
}
