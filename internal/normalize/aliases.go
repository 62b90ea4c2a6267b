package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Logical review fields. Criterion fields are keyed "criterion.<name>".
const (
	FieldID             = "id"
	FieldAuthor         = "author"
	FieldText           = "text"
	FieldRating         = "rating"
	FieldCreatedAt      = "created_at"
	FieldPhotos         = "photos"
	FieldResponse       = "response"
	FieldResponseText   = "response_text"
	FieldResponseFlag   = "response_flag"
	FieldRestaurantID   = "restaurant_id"
	FieldRestaurantName = "restaurant_name"
	FieldLikes          = "likes"

	FieldRestaurantKey   = "id"
	FieldRestaurantTitle = "name"
)

// Criteria lists the five sub-scores in display order.
var Criteria = []string{"food", "service", "atmosphere", "price", "cleanliness"}

func criterionField(c string) string { return "criterion." + c }

/********** alias registries (single source of truth) **********/

func defaultReviewAliases() map[string][]string {
	m := map[string][]string{
		FieldID:             {"id"},
		FieldAuthor:         {"user_name", "user.name", "userName", "author", "author.name", "username", "name"},
		FieldText:           {"comment", "text", "content"},
		FieldRating:         {"rating"},
		FieldCreatedAt:      {"created_at", "createdAt", "date", "timestamp"},
		FieldPhotos:         {"photos", "images", "attachments", "photo_urls", "photo", "user_avatar"},
		FieldResponse:       {"response"},
		FieldResponseText:   {"response", "response.text", "response.comment"},
		FieldResponseFlag:   {"has_response"},
		FieldRestaurantID:   {"restaurant_id", "restaurantId", "restaurant.id"},
		FieldRestaurantName: {"restaurant_name", "restaurantName", "restaurant.name"},
		FieldLikes:          {"likes", "likes_count", "likesCount"},
	}
	for _, c := range Criteria {
		m[criterionField(c)] = []string{c + "_rating", "ratings." + c, "criteriaRatings." + c}
	}
	return m
}

func defaultRestaurantAliases() map[string][]string {
	return map[string][]string{
		FieldRestaurantKey:   {"id", "restaurant_id", "restaurantId"},
		FieldRestaurantTitle: {"name", "restaurant_name", "restaurantName", "title"},
	}
}

// Registry maps each logical field onto its ordered synonym chain.
type Registry struct {
	Review     map[string][]string `yaml:"review"`
	Restaurant map[string][]string `yaml:"restaurant"`
}

func DefaultRegistry() *Registry {
	return &Registry{Review: defaultReviewAliases(), Restaurant: defaultRestaurantAliases()}
}

// LoadRegistry reads extra synonyms from a YAML file and appends them after
// the built-in ones. An empty path returns the defaults.
func LoadRegistry(path string) (*Registry, error) {
	reg := DefaultRegistry()
	if path == "" {
		return reg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases file: %w", err)
	}
	var extra Registry
	if err := yaml.Unmarshal(b, &extra); err != nil {
		return nil, fmt.Errorf("parse aliases file %s: %w", path, err)
	}
	merge(reg.Review, extra.Review)
	merge(reg.Restaurant, extra.Restaurant)
	return reg, nil
}

func merge(dst, extra map[string][]string) {
	for field, paths := range extra {
		seen := make(map[string]struct{}, len(dst[field]))
		for _, p := range dst[field] {
			seen[p] = struct{}{}
		}
		for _, p := range paths {
			if _, ok := seen[p]; ok || p == "" {
				continue
			}
			seen[p] = struct{}{}
			dst[field] = append(dst[field], p)
		}
	}
}

func (r *Registry) review(field string) []string     { return r.Review[field] }
func (r *Registry) restaurant(field string) []string { return r.Restaurant[field] }
