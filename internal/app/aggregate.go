package app

import (
	"sort"
	"strings"

	"restoreviews/internal/domain"
	"restoreviews/internal/normalize"
)

// KeyFunc picks the aggregation key of a review; "" skips it.
type KeyFunc func(r domain.Review, raw map[string]any) string

// FieldKey keys reviews by the first non-blank string found at paths.
func FieldKey(paths ...string) KeyFunc {
	return func(_ domain.Review, raw map[string]any) string {
		return strings.TrimSpace(normalize.ResolveString(raw, paths...))
	}
}

// ByRestaurant keys by restaurant name, falling back to the name registered
// for the review's restaurant id.
func ByRestaurant(names map[string]string) KeyFunc {
	return func(r domain.Review, _ map[string]any) string {
		if name := strings.TrimSpace(r.RestaurantName); name != "" {
			return name
		}
		if r.RestaurantID == "" {
			return ""
		}
		return names[r.RestaurantID]
	}
}

type Aggregator struct {
	norm *normalize.Normalizer
}

func NewAggregator(n *normalize.Normalizer) *Aggregator {
	if n == nil {
		n = normalize.New()
	}
	return &Aggregator{norm: n}
}

type totals struct {
	rating, food, service, atmosphere, price, cleanliness float64
}

// Aggregate rolls reviews up per key in one pass, then averages. Entries are
// only created for keys with at least one contributing review.
func (a *Aggregator) Aggregate(reviews []map[string]any, key KeyFunc) map[string]*domain.RestaurantAggregate {
	out := make(map[string]*domain.RestaurantAggregate)
	sums := make(map[string]*totals)

	for _, raw := range reviews {
		r := a.norm.NormalizeReview(raw)
		k := key(r, raw)
		if k == "" {
			continue
		}
		agg, ok := out[k]
		if !ok {
			agg = &domain.RestaurantAggregate{Name: k}
			out[k] = agg
			sums[k] = &totals{}
		}
		s := sums[k]

		agg.TotalReviews++
		s.rating += r.Rating
		s.food += r.Criteria.Food
		s.service += r.Criteria.Service
		s.atmosphere += r.Criteria.Atmosphere
		s.price += r.Criteria.Price
		s.cleanliness += r.Criteria.Cleanliness
		agg.TotalLikes += r.Likes
		if r.Responded {
			agg.Responded++
		}
		if star := normalize.Stars(r.Rating); star > 0 {
			agg.StarDistribution[star-1]++
		}
		if r.CreatedAt != nil && (agg.LatestReviewDate == nil || r.CreatedAt.After(*agg.LatestReviewDate)) {
			t := *r.CreatedAt
			agg.LatestReviewDate = &t
		}
	}

	for k, agg := range out {
		s, n := sums[k], float64(agg.TotalReviews)
		agg.AvgRating = normalize.Round1(s.rating / n)
		agg.AvgFoodRating = normalize.Round1(s.food / n)
		agg.AvgServiceRating = normalize.Round1(s.service / n)
		agg.AvgAtmosphereRating = normalize.Round1(s.atmosphere / n)
		agg.AvgPriceRating = normalize.Round1(s.price / n)
		agg.AvgCleanlinessRating = normalize.Round1(s.cleanliness / n)
		agg.ResponseRate = normalize.Round1(float64(agg.Responded) / n * 100)
	}
	return out
}

// SortAggregates orders aggregates by policy, ties broken by name.
func SortAggregates(aggs map[string]*domain.RestaurantAggregate, policy domain.SortPolicy) []domain.RestaurantAggregate {
	out := make([]domain.RestaurantAggregate, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, *a)
	}
	less := lessFor(policy)
	sort.SliceStable(out, func(i, j int) bool {
		if c := less(out[i], out[j]); c != 0 {
			return c < 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// lessFor returns a three-way comparator; negative sorts a first.
func lessFor(policy domain.SortPolicy) func(a, b domain.RestaurantAggregate) int {
	switch policy {
	case domain.SortByLikes:
		return func(a, b domain.RestaurantAggregate) int { return b.TotalLikes - a.TotalLikes }
	case domain.SortByRecent:
		return func(a, b domain.RestaurantAggregate) int {
			switch {
			case a.LatestReviewDate == nil && b.LatestReviewDate == nil:
				return 0
			case a.LatestReviewDate == nil:
				return 1
			case b.LatestReviewDate == nil:
				return -1
			case a.LatestReviewDate.After(*b.LatestReviewDate):
				return -1
			case b.LatestReviewDate.After(*a.LatestReviewDate):
				return 1
			}
			return 0
		}
	default:
		return func(a, b domain.RestaurantAggregate) int {
			switch {
			case a.AvgRating > b.AvgRating:
				return -1
			case a.AvgRating < b.AvgRating:
				return 1
			}
			return 0
		}
	}
}
