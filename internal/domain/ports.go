package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNoSnapshot   = errors.New("no snapshot loaded yet")
	ErrSuperseded   = errors.New("load superseded by a newer refresh")
)

// ReviewSource yields raw, untrusted restaurant and review payloads.
type ReviewSource interface {
	ListRestaurants(ctx context.Context) ([]map[string]any, error)
	ListReviews(ctx context.Context) ([]map[string]any, error)
}

type BackendClient interface {
	ReviewSource
	ListRestaurantReviews(ctx context.Context, restaurantID string) ([]map[string]any, error)
}

// RawRecord is one backend payload kept verbatim in the mirror.
type RawRecord struct {
	SourceID     string
	RestaurantID string
	Payload      []byte
}

type MirrorRepository interface {
	UpsertRestaurants(ctx context.Context, rs []RawRecord) error
	UpsertReviews(ctx context.Context, rs []RawRecord) error
	LogMiss(ctx context.Context, restaurantID string, status int, reason string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Snapshot is one completed fetch cycle: canonical reviews plus aggregates.
type Snapshot struct {
	ID          string
	Generation  uint64
	GeneratedAt time.Time
	Restaurants []Restaurant
	Reviews     []Review
	Dropped     int
	Aggregates  map[string]*RestaurantAggregate
}

// DashboardView is the read model served to clients.
type DashboardView struct {
	SnapshotID   string                `json:"snapshot_id"`
	GeneratedAt  time.Time             `json:"generated_at"`
	Sort         SortPolicy            `json:"sort"`
	Restaurants  int                   `json:"restaurants"`
	Reviews      int                   `json:"reviews"`
	Dropped      int                   `json:"dropped"`
	AvgRating    float64               `json:"avg_rating"`
	ResponseRate float64               `json:"response_rate"` // percent
	Aggregates   []RestaurantAggregate `json:"aggregates"`
}

type ReviewFilter struct {
	Restaurant string
	Responded  *bool
}
