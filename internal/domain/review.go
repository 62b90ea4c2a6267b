package domain

import "time"

// Sentinels rendered instead of missing data.
const (
	NoDate    = "Нет даты"
	Anonymous = "Аноним"
)

type Photo struct {
	URL string `json:"url"`
}

// CriteriaRatings holds the five sub-scores of a review, each in [0, 5].
type CriteriaRatings struct {
	Food        float64 `json:"food"`
	Service     float64 `json:"service"`
	Atmosphere  float64 `json:"atmosphere"`
	Price       float64 `json:"price"`
	Cleanliness float64 `json:"cleanliness"`
}

// Review is the canonical, shape-stable review produced by the normalizer.
type Review struct {
	ID               string          `json:"id,omitempty"`
	RestaurantID     string          `json:"restaurant_id,omitempty"`
	RestaurantName   string          `json:"restaurant_name"`
	AuthorName       string          `json:"author_name"`
	Text             string          `json:"text"`
	Rating           float64         `json:"rating"`
	Criteria         CriteriaRatings `json:"criteria_ratings"`
	CreatedAt        *time.Time      `json:"created_at,omitempty"`
	CreatedAtDisplay string          `json:"created_at_display"`
	Responded        bool            `json:"responded"`
	Response         string          `json:"response,omitempty"`
	Likes            int             `json:"likes"`
	Photos           []Photo         `json:"photos"`
}
