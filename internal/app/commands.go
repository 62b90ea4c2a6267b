package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"restoreviews/internal/domain"
	"restoreviews/internal/normalize"
)

// MirrorService copies raw backend payloads into the mirror repository so the
// analytics path can run without hitting the backend.
type MirrorService struct {
	backend domain.BackendClient
	repo    domain.MirrorRepository
	norm    *normalize.Normalizer
}

func NewMirrorService(b domain.BackendClient, r domain.MirrorRepository, n *normalize.Normalizer) *MirrorService {
	if n == nil {
		n = normalize.New()
	}
	return &MirrorService{backend: b, repo: r, norm: n}
}

// MirrorRestaurants stores the restaurant list and returns their identities.
func (s *MirrorService) MirrorRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	raws, err := s.backend.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	out := make([]domain.Restaurant, 0, len(raws))
	recs := make([]domain.RawRecord, 0, len(raws))
	for _, raw := range raws {
		r := s.norm.NormalizeRestaurant(raw)
		if r.ID == "" {
			log.Warn().Str("name", r.Name).Msg("restaurant without id skipped")
			continue
		}
		payload, err := json.Marshal(raw)
		if err != nil {
			log.Error().Err(err).Str("context", "MirrorRestaurants").Msg("marshal restaurant failed")
			continue
		}
		out = append(out, r)
		recs = append(recs, domain.RawRecord{SourceID: r.ID, RestaurantID: r.ID, Payload: payload})
	}
	if err := s.repo.UpsertRestaurants(ctx, recs); err != nil {
		return nil, fmt.Errorf("upsert restaurants: %w", err)
	}
	return out, nil
}

// MirrorRestaurant copies one restaurant's reviews. 404/401/403 are recorded
// as misses and do not fail the run; anything else is returned.
func (s *MirrorService) MirrorRestaurant(ctx context.Context, restaurantID string) (int, error) {
	raws, err := s.backend.ListRestaurantReviews(ctx, restaurantID)
	if err != nil {
		if status, ok := missStatus(err); ok {
			_ = s.repo.LogMiss(ctx, restaurantID, status, "reviews")
			return 0, nil
		}
		return 0, err
	}
	if len(raws) == 0 {
		return 0, nil
	}

	recs := make([]domain.RawRecord, 0, len(raws))
	for _, raw := range raws {
		payload, err := json.Marshal(raw)
		if err != nil {
			log.Error().Err(err).Str("context", "MirrorRestaurant").Msg("marshal review failed")
			continue
		}
		recs = append(recs, domain.RawRecord{
			SourceID:     s.sourceID(raw, payload),
			RestaurantID: restaurantID,
			Payload:      payload,
		})
	}
	if err := s.repo.UpsertReviews(ctx, recs); err != nil {
		// do not swallow: a failed insert means the mirror is incomplete
		return 0, fmt.Errorf("upsert reviews failed for %s: %w", restaurantID, err)
	}
	return len(recs), nil
}

// sourceID prefers the backend id; otherwise a stable hash of the payload.
func (s *MirrorService) sourceID(raw map[string]any, payload []byte) string {
	if id := s.norm.NormalizeReview(raw).ID; id != "" {
		return id
	}
	sum := sha1.Sum(payload)
	return "sha1:" + hex.EncodeToString(sum[:])
}

func missStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return 404, true
	case errors.Is(err, domain.ErrUnauthorized):
		return 401, true
	case errors.Is(err, domain.ErrForbidden):
		return 403, true
	}
	return 0, false
}
