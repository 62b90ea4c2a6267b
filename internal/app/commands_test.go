package app_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"restoreviews/internal/app"
	"restoreviews/internal/domain"
)

// ---- fakes ----

type fakeBackend struct {
	restaurants []map[string]any
	reviews     map[string][]map[string]any
	errs        map[string]error
}

func (f *fakeBackend) ListRestaurants(ctx context.Context) ([]map[string]any, error) {
	return f.restaurants, nil
}

func (f *fakeBackend) ListReviews(ctx context.Context) ([]map[string]any, error) { return nil, nil }

func (f *fakeBackend) ListRestaurantReviews(ctx context.Context, id string) ([]map[string]any, error) {
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return f.reviews[id], nil
}

type miss struct {
	id     string
	status int
}

type fakeMirror struct {
	restaurants []domain.RawRecord
	reviews     []domain.RawRecord
	misses      []miss
}

func (m *fakeMirror) UpsertRestaurants(ctx context.Context, rs []domain.RawRecord) error {
	m.restaurants = append(m.restaurants, rs...)
	return nil
}

func (m *fakeMirror) UpsertReviews(ctx context.Context, rs []domain.RawRecord) error {
	m.reviews = append(m.reviews, rs...)
	return nil
}

func (m *fakeMirror) LogMiss(ctx context.Context, id string, status int, reason string) error {
	m.misses = append(m.misses, miss{id, status})
	return nil
}

// ---- tests ----

func TestMirrorRestaurants_SkipsRecordsWithoutID(t *testing.T) {
	b := &fakeBackend{restaurants: []map[string]any{{"id": 1.0, "name": "A"}, {"name": "no id"}}}
	repo := &fakeMirror{}
	svc := app.NewMirrorService(b, repo, nil)

	rs, err := svc.MirrorRestaurants(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(rs) != 1 || rs[0].ID != "1" || len(repo.restaurants) != 1 {
		t.Fatalf("restaurants=%+v stored=%d", rs, len(repo.restaurants))
	}
	if !strings.Contains(string(repo.restaurants[0].Payload), `"name":"A"`) {
		t.Fatalf("payload not kept verbatim: %s", repo.restaurants[0].Payload)
	}
}

func TestMirrorRestaurant_StoresRawWithStableIDs(t *testing.T) {
	b := &fakeBackend{reviews: map[string][]map[string]any{
		"1": {{"id": 10.0, "text": "a"}, {"text": "no id"}},
	}}
	repo := &fakeMirror{}
	svc := app.NewMirrorService(b, repo, nil)

	n, err := svc.MirrorRestaurant(context.Background(), "1")
	if err != nil || n != 2 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if repo.reviews[0].SourceID != "10" || repo.reviews[0].RestaurantID != "1" {
		t.Fatalf("first record: %+v", repo.reviews[0])
	}
	if !strings.HasPrefix(repo.reviews[1].SourceID, "sha1:") {
		t.Fatalf("expected synthesized id, got %q", repo.reviews[1].SourceID)
	}

	// same payload, same id
	_, _ = svc.MirrorRestaurant(context.Background(), "1")
	if repo.reviews[3].SourceID != repo.reviews[1].SourceID {
		t.Fatalf("synthesized id not stable")
	}
}

func TestMirrorRestaurant_MissesAreLoggedNotFatal(t *testing.T) {
	boom := errors.New("connection reset")
	b := &fakeBackend{errs: map[string]error{
		"404": fmt.Errorf("get: %w", domain.ErrNotFound),
		"403": domain.ErrForbidden,
		"500": boom,
	}}
	repo := &fakeMirror{}
	svc := app.NewMirrorService(b, repo, nil)

	for _, id := range []string{"404", "403"} {
		if _, err := svc.MirrorRestaurant(context.Background(), id); err != nil {
			t.Fatalf("%s: expected miss, got %v", id, err)
		}
	}
	if len(repo.misses) != 2 || repo.misses[0].status != 404 || repo.misses[1].status != 403 {
		t.Fatalf("misses: %+v", repo.misses)
	}
	if _, err := svc.MirrorRestaurant(context.Background(), "500"); !errors.Is(err, boom) {
		t.Fatalf("expected unexpected errors to surface, got %v", err)
	}
}
