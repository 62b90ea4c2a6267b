package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"restoreviews/internal/domain"
	"restoreviews/internal/normalize"
)

// batchSize keeps multi-row inserts well under max_allowed_packet.
const batchSize = 200

func valJSON(b []byte) any {
	if len(b) == 0 {
		return "{}"
	}
	return string(b)
}

// Repo is the raw payload mirror. It implements both domain.MirrorRepository
// and domain.ReviewSource.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertRestaurants(ctx context.Context, rs []domain.RawRecord) error {
	for start := 0; start < len(rs); start += batchSize {
		end := min(start+batchSize, len(rs))
		values := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*2)
		for _, rec := range rs[start:end] {
			values = append(values, "(?,?)")
			args = append(args, rec.SourceID, valJSON(rec.Payload))
		}
		sqlStr := insertRestaurantsPrefix + strings.Join(values, ",") + insertRestaurantsOnDup
		if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.RawRecord) error {
	for start := 0; start < len(rs); start += batchSize {
		end := min(start+batchSize, len(rs))
		values := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*3) // 3 params per row
		for _, rec := range rs[start:end] {
			values = append(values, "(?,?,?)")
			args = append(args, rec.SourceID, rec.RestaurantID, valJSON(rec.Payload))
		}
		sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
		if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) LogMiss(ctx context.Context, restaurantID string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, restaurantID, status, reason)
	return err
}

// Miss is one restaurant the mirror could not read.
type Miss struct {
	RestaurantID string
	Status       int
	Reason       string
	SeenAt       time.Time
}

func (r *Repo) ListMisses(ctx context.Context) ([]Miss, error) {
	rows, err := r.db.QueryContext(ctx, listMissesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Miss
	for rows.Next() {
		var m Miss
		if err := rows.Scan(&m.RestaurantID, &m.Status, &m.Reason, &m.SeenAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) ListRestaurants(ctx context.Context) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, listRestaurantsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var (
			sourceID string
			payload  []byte
		)
		if err := rows.Scan(&sourceID, &payload); err != nil {
			return nil, err
		}
		m, ok := decodePayload(payload, sourceID)
		if !ok {
			continue
		}
		if _, has := m["id"]; !has {
			m["id"] = sourceID
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListReviews returns mirrored review payloads. Payloads fetched through a
// per-restaurant endpoint often omit the restaurant reference, so the stored
// restaurant_id is injected when the payload has none.
func (r *Repo) ListReviews(ctx context.Context) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var (
			restaurantID string
			payload      []byte
		)
		if err := rows.Scan(&restaurantID, &payload); err != nil {
			return nil, err
		}
		m, ok := decodePayload(payload, restaurantID)
		if !ok {
			continue
		}
		if restaurantID != "" && !hasRestaurantRef(m) {
			m["restaurant_id"] = restaurantID
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodePayload(b []byte, ref string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		log.Warn().Err(err).Str("ref", ref).Msg("skipping undecodable mirrored payload")
		return nil, false
	}
	return m, true
}

var restaurantRefPaths = []string{
	"restaurant_id", "restaurantId", "restaurant.id",
	"restaurant_name", "restaurantName", "restaurant.name",
}

func hasRestaurantRef(m map[string]any) bool {
	v := normalize.Resolve(m, restaurantRefPaths...)
	return v != nil && v != ""
}
