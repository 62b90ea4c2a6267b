package mysql

const insertRestaurantsPrefix = "INSERT INTO restaurants_raw\n  (source_id, payload)\nVALUES "

const insertRestaurantsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  payload    = VALUES(payload),\n" +
	"  updated_at = CURRENT_TIMESTAMP\n"

const insertReviewsPrefix = "INSERT INTO reviews_raw\n  (source_id, restaurant_id, payload)\nVALUES "

// An empty restaurant_id never overwrites a known one.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  restaurant_id = IF(VALUES(restaurant_id) = '', reviews_raw.restaurant_id, VALUES(restaurant_id)),\n" +
	"  payload       = VALUES(payload),\n" +
	"  updated_at    = CURRENT_TIMESTAMP\n"

const insertMissSQL = `
INSERT INTO mirror_misses (restaurant_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const listRestaurantsSQL = `
SELECT source_id, payload
FROM restaurants_raw
ORDER BY source_id
`

const listReviewsSQL = `
SELECT restaurant_id, payload
FROM reviews_raw
ORDER BY id
`

const listMissesSQL = `
SELECT restaurant_id, http_status, reason, seen_at
FROM mirror_misses
ORDER BY restaurant_id
`
