package normalize

import (
	"strings"

	"restoreviews/internal/domain"
)

// NormalizeReview translates one raw review payload into the canonical model.
// Ratings are coerced to finite numbers and clamped to [0, 5]; author and
// date fall back to their sentinels.
func (n *Normalizer) NormalizeReview(raw any) (r domain.Review) {
	defer func() {
		if recover() != nil {
			r = emptyReview()
		}
	}()

	a := n.aliases.review
	r = domain.Review{
		ID:             scalarString(Resolve(raw, a(FieldID)...)),
		RestaurantID:   scalarString(Resolve(raw, a(FieldRestaurantID)...)),
		RestaurantName: ResolveString(raw, a(FieldRestaurantName)...),
		AuthorName:     ResolveString(raw, a(FieldAuthor)...),
		Text:           ResolveString(raw, a(FieldText)...),
		Rating:         clampRating(SafeNumber(Resolve(raw, a(FieldRating)...))),
		Criteria: domain.CriteriaRatings{
			Food:        n.criterion(raw, "food"),
			Service:     n.criterion(raw, "service"),
			Atmosphere:  n.criterion(raw, "atmosphere"),
			Price:       n.criterion(raw, "price"),
			Cleanliness: n.criterion(raw, "cleanliness"),
		},
		Response: ResolveString(raw, a(FieldResponseText)...),
		Likes:    likes(Resolve(raw, a(FieldLikes)...)),
		Photos:   FirstPhotos(raw, a(FieldPhotos)...),
	}
	if r.AuthorName == "" {
		r.AuthorName = domain.Anonymous
	}

	r.Responded = truthy(Resolve(raw, a(FieldResponse)...)) ||
		truthy(Resolve(raw, a(FieldResponseFlag)...)) ||
		lookupAny(raw, "responded") == true

	date := Resolve(raw, a(FieldCreatedAt)...)
	r.CreatedAtDisplay = n.FormatDate(date)
	if t, ok := n.ParseDate(date); ok {
		r.CreatedAt = &t
	}
	return r
}

func (n *Normalizer) criterion(raw any, c string) float64 {
	return clampRating(SafeNumber(Resolve(raw, n.aliases.review(criterionField(c))...)))
}

// likes accepts a counter or a list of likers.
func likes(v any) int {
	if list, ok := v.([]any); ok {
		return len(list)
	}
	f := SafeNumber(v)
	if f < 0 {
		return 0
	}
	return int(f)
}

func emptyReview() domain.Review {
	return domain.Review{
		AuthorName:       domain.Anonymous,
		CreatedAtDisplay: domain.NoDate,
		Photos:           []domain.Photo{},
	}
}

// Keep is the working-set filter: reviews without text are dropped silently.
// The canonical rating is always defined, so it never excludes a review.
func Keep(r domain.Review) bool {
	return r.Text != ""
}

// NormalizeAll normalizes a batch, returning the kept canonical reviews, the
// raw payloads they came from (same order) and how many were dropped.
func (n *Normalizer) NormalizeAll(raws []map[string]any) (kept []domain.Review, keptRaw []map[string]any, dropped int) {
	kept = make([]domain.Review, 0, len(raws))
	keptRaw = make([]map[string]any, 0, len(raws))
	for _, raw := range raws {
		r := n.NormalizeReview(raw)
		if !Keep(r) {
			dropped++
			continue
		}
		kept = append(kept, r)
		keptRaw = append(keptRaw, raw)
	}
	return kept, keptRaw, dropped
}

// NormalizeRestaurant extracts the identity of a raw restaurant payload.
func (n *Normalizer) NormalizeRestaurant(raw any) domain.Restaurant {
	a := n.aliases.restaurant
	return domain.Restaurant{
		ID:   scalarString(Resolve(raw, a(FieldRestaurantKey)...)),
		Name: strings.TrimSpace(ResolveString(raw, a(FieldRestaurantTitle)...)),
	}
}
