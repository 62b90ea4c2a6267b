package domain

import (
	"strings"
	"time"
)

type Restaurant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RestaurantAggregate is the per-restaurant rollup. It only exists for
// restaurants with at least one contributing review.
type RestaurantAggregate struct {
	Name                 string     `json:"name"`
	TotalReviews         int        `json:"total_reviews"`
	AvgRating            float64    `json:"avg_rating"`
	AvgFoodRating        float64    `json:"avg_food_rating"`
	AvgServiceRating     float64    `json:"avg_service_rating"`
	AvgAtmosphereRating  float64    `json:"avg_atmosphere_rating"`
	AvgPriceRating       float64    `json:"avg_price_rating"`
	AvgCleanlinessRating float64    `json:"avg_cleanliness_rating"`
	TotalLikes           int        `json:"total_likes"`
	LatestReviewDate     *time.Time `json:"latest_review_date"`
	StarDistribution     [5]int     `json:"star_distribution"` // index 0 = 1 star
	Responded            int        `json:"responded"`
	ResponseRate         float64    `json:"response_rate"` // percent
}

type SortPolicy string

const (
	SortByRating SortPolicy = "rating"
	SortByLikes  SortPolicy = "likes"
	SortByRecent SortPolicy = "recent"
)

// ParseSortPolicy maps a query value onto a policy; empty means rating.
func ParseSortPolicy(s string) (SortPolicy, bool) {
	switch SortPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByRating:
		return SortByRating, true
	case SortByLikes:
		return SortByLikes, true
	case SortByRecent:
		return SortByRecent, true
	}
	return "", false
}
