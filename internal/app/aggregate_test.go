package app_test

import (
	"testing"
	"time"

	"restoreviews/internal/app"
	"restoreviews/internal/domain"
)

func TestAggregate_AveragesPerKey(t *testing.T) {
	agg := app.NewAggregator(nil)
	out := agg.Aggregate([]map[string]any{
		{"name": "A", "rating": 4},
		{"name": "A", "rating": 5},
		{"name": "B", "rating": 3},
	}, app.FieldKey("name"))

	if len(out) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(out))
	}
	if a := out["A"]; a.TotalReviews != 2 || a.AvgRating != 4.5 {
		t.Fatalf("A: %+v", a)
	}
	if b := out["B"]; b.TotalReviews != 1 || b.AvgRating != 3.0 {
		t.Fatalf("B: %+v", b)
	}

	sorted := app.SortAggregates(out, domain.SortByRating)
	if sorted[0].Name != "A" || sorted[1].Name != "B" {
		t.Fatalf("sort by rating: %v, %v", sorted[0].Name, sorted[1].Name)
	}
}

func TestAggregate_SkipsFalsyKeysAndCoercesGarbage(t *testing.T) {
	agg := app.NewAggregator(nil)
	out := agg.Aggregate([]map[string]any{
		{"name": "", "rating": 5},
		{"rating": 5},
		{"name": "A", "rating": "oops", "food_rating": "4", "ratings": map[string]any{"service": []any{}}},
		{"name": "A", "rating": 3.0, "food_rating": nil, "likes": 4.0},
	}, app.FieldKey("name"))

	if len(out) != 1 {
		t.Fatalf("falsy keys must not create entries: %v", out)
	}
	a := out["A"]
	if a.TotalReviews != 2 || a.AvgRating != 1.5 || a.AvgFoodRating != 2 || a.AvgServiceRating != 0 {
		t.Fatalf("unexpected aggregate: %+v", a)
	}
	if a.TotalLikes != 4 {
		t.Fatalf("likes: %d", a.TotalLikes)
	}
}

func TestAggregate_LatestDateDistributionAndResponses(t *testing.T) {
	agg := app.NewAggregator(nil)
	out := agg.Aggregate([]map[string]any{
		{"restaurant_name": "A", "rating": 5.0, "created_at": "2024-03-15T10:30:00Z", "response": "спасибо"},
		{"restaurant_name": "A", "rating": 4.4, "created_at": "not a date"},
		{"restaurant_name": "A", "rating": 1.0, "date": "2024-04-01"},
		{"restaurant_name": "A", "rating": 0.0},
	}, app.ByRestaurant(nil))

	a := out["A"]
	want := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	if a.LatestReviewDate == nil || !a.LatestReviewDate.Equal(want) {
		t.Fatalf("latest: %v", a.LatestReviewDate)
	}
	if a.StarDistribution != [5]int{1, 0, 0, 1, 1} {
		t.Fatalf("distribution: %v", a.StarDistribution)
	}
	if a.Responded != 1 || a.ResponseRate != 25 {
		t.Fatalf("responses: %d %v", a.Responded, a.ResponseRate)
	}
}

func TestByRestaurant_FallsBackToIDLookup(t *testing.T) {
	agg := app.NewAggregator(nil)
	out := agg.Aggregate([]map[string]any{
		{"restaurant_id": 7.0, "rating": 4.0},
		{"restaurantId": "7", "rating": 2.0},
		{"restaurant_id": 8.0, "rating": 2.0},
	}, app.ByRestaurant(map[string]string{"7": "Сушечная"}))

	if len(out) != 1 || out["Сушечная"].TotalReviews != 2 || out["Сушечная"].AvgRating != 3 {
		t.Fatalf("unexpected: %+v", out)
	}
}

func TestSortAggregates_Policies(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	aggs := map[string]*domain.RestaurantAggregate{
		"A": {Name: "A", AvgRating: 4, TotalLikes: 1, LatestReviewDate: &d1},
		"B": {Name: "B", AvgRating: 4, TotalLikes: 9},
		"C": {Name: "C", AvgRating: 3, TotalLikes: 5, LatestReviewDate: &d2},
	}

	names := func(in []domain.RestaurantAggregate) string {
		s := ""
		for _, a := range in {
			s += a.Name
		}
		return s
	}
	if got := names(app.SortAggregates(aggs, domain.SortByRating)); got != "ABC" {
		t.Fatalf("rating: %s", got)
	}
	if got := names(app.SortAggregates(aggs, domain.SortByLikes)); got != "BCA" {
		t.Fatalf("likes: %s", got)
	}
	if got := names(app.SortAggregates(aggs, domain.SortByRecent)); got != "CAB" {
		t.Fatalf("recent (nulls last): %s", got)
	}
}
