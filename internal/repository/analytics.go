package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Read-only aggregate queries consumed by the analytics service. None of
// these take locks; they race freely with concurrent cart mutation.

const countCartsCreatedSince = `
SELECT COUNT(*) FROM carts WHERE created_at >= $1
`

func (q *Queries) CountCartsCreatedSince(ctx context.Context, since pgtype.Timestamptz) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countCartsCreatedSince, since).Scan(&count)
	return count, err
}

const countCartsCreatedSinceByStatus = `
SELECT COUNT(*) FROM carts WHERE created_at >= $1 AND status = $2
`

type CountCartsCreatedSinceByStatusParams struct {
	Since  pgtype.Timestamptz
	Status string
}

func (q *Queries) CountCartsCreatedSinceByStatus(ctx context.Context, arg CountCartsCreatedSinceByStatusParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countCartsCreatedSinceByStatus, arg.Since, arg.Status).Scan(&count)
	return count, err
}

const countCartsByUser = `
SELECT COUNT(*) FROM carts WHERE user_id = $1
`

func (q *Queries) CountCartsByUser(ctx context.Context, userID pgtype.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countCartsByUser, userID).Scan(&count)
	return count, err
}

const countCartsByUserAndStatus = `
SELECT COUNT(*) FROM carts WHERE user_id = $1 AND status = $2
`

type CountCartsByUserAndStatusParams struct {
	UserID pgtype.UUID
	Status string
}

func (q *Queries) CountCartsByUserAndStatus(ctx context.Context, arg CountCartsByUserAndStatusParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countCartsByUserAndStatus, arg.UserID, arg.Status).Scan(&count)
	return count, err
}

// listPurchasedCartValues returns the total value of each of the user's
// purchased carts, one row per cart.
const listPurchasedCartValues = `
SELECT COALESCE(SUM(p.price_cents * ci.quantity), 0)::bigint AS value_cents
FROM carts c
LEFT JOIN cart_items ci ON ci.cart_id = c.id
LEFT JOIN products p ON p.id = ci.product_id
WHERE c.user_id = $1 AND c.status = 'purchased'
GROUP BY c.id
`

func (q *Queries) ListPurchasedCartValues(ctx context.Context, userID pgtype.UUID) ([]int64, error) {
	rows, err := q.db.Query(ctx, listPurchasedCartValues, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Ties are broken by product id ascending for deterministic ordering.
const listFavoriteProducts = `
SELECT e.product_id, p.name, COUNT(*) AS count
FROM cart_events e
JOIN products p ON p.id = e.product_id
WHERE e.user_id = $1 AND e.event_type IN ('added', 'purchased')
GROUP BY e.product_id, p.name
ORDER BY count DESC, e.product_id
LIMIT $2
`

type ListFavoriteProductsParams struct {
	UserID pgtype.UUID
	Limit  int32
}

type ListFavoriteProductsRow struct {
	ProductID   pgtype.UUID
	ProductName string
	Count       int64
}

func (q *Queries) ListFavoriteProducts(ctx context.Context, arg ListFavoriteProductsParams) ([]ListFavoriteProductsRow, error) {
	rows, err := q.db.Query(ctx, listFavoriteProducts, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListFavoriteProductsRow
	for rows.Next() {
		var r ListFavoriteProductsRow
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countEventsByUser = `
SELECT COUNT(*) FROM cart_events WHERE user_id = $1
`

func (q *Queries) CountEventsByUser(ctx context.Context, userID pgtype.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countEventsByUser, userID).Scan(&count)
	return count, err
}

const listEventTypeCounts = `
SELECT event_type, COUNT(*) AS count
FROM cart_events
WHERE product_id = $1
GROUP BY event_type
ORDER BY event_type
`

type ListEventTypeCountsRow struct {
	EventType string
	Count     int64
}

func (q *Queries) ListEventTypeCounts(ctx context.Context, productID pgtype.UUID) ([]ListEventTypeCountsRow, error) {
	rows, err := q.db.Query(ctx, listEventTypeCounts, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListEventTypeCountsRow
	for rows.Next() {
		var r ListEventTypeCountsRow
		if err := rows.Scan(&r.EventType, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countEventsByProduct = `
SELECT COUNT(*) FROM cart_events WHERE product_id = $1
`

func (q *Queries) CountEventsByProduct(ctx context.Context, productID pgtype.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countEventsByProduct, productID).Scan(&count)
	return count, err
}

const countEventsByProductAndType = `
SELECT COUNT(*) FROM cart_events WHERE product_id = $1 AND event_type = $2
`

type CountEventsByProductAndTypeParams struct {
	ProductID pgtype.UUID
	EventType string
}

func (q *Queries) CountEventsByProductAndType(ctx context.Context, arg CountEventsByProductAndTypeParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countEventsByProductAndType, arg.ProductID, arg.EventType).Scan(&count)
	return count, err
}

const countRecentEventsByProduct = `
SELECT COUNT(*) FROM cart_events WHERE product_id = $1 AND timestamp >= $2
`

type CountRecentEventsByProductParams struct {
	ProductID pgtype.UUID
	Since     pgtype.Timestamptz
}

func (q *Queries) CountRecentEventsByProduct(ctx context.Context, arg CountRecentEventsByProductParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countRecentEventsByProduct, arg.ProductID, arg.Since).Scan(&count)
	return count, err
}

const countEventsSince = `
SELECT COUNT(*) FROM cart_events WHERE timestamp >= $1
`

func (q *Queries) CountEventsSince(ctx context.Context, since pgtype.Timestamptz) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countEventsSince, since).Scan(&count)
	return count, err
}

// listCartSessionDurations computes, per cart created within the window, the
// span in seconds between its first and last event. Carts with fewer than two
// events are excluded.
const listCartSessionDurations = `
SELECT EXTRACT(EPOCH FROM (MAX(e.timestamp) - MIN(e.timestamp)))::float8 AS duration_seconds
FROM cart_events e
JOIN carts c ON c.id = e.cart_id
WHERE c.created_at >= $1
GROUP BY e.cart_id
HAVING COUNT(*) >= 2
`

func (q *Queries) ListCartSessionDurations(ctx context.Context, since pgtype.Timestamptz) ([]float64, error) {
	rows, err := q.db.Query(ctx, listCartSessionDurations, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var durations []float64
	for rows.Next() {
		var d float64
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		durations = append(durations, d)
	}
	return durations, rows.Err()
}

const listDailyEventCounts = `
SELECT DATE(timestamp) AS date, COUNT(*) AS count
FROM cart_events
WHERE timestamp >= $1
GROUP BY DATE(timestamp)
ORDER BY date
`

type ListDailyEventCountsRow struct {
	Date  pgtype.Date
	Count int64
}

func (q *Queries) ListDailyEventCounts(ctx context.Context, since pgtype.Timestamptz) ([]ListDailyEventCountsRow, error) {
	rows, err := q.db.Query(ctx, listDailyEventCounts, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListDailyEventCountsRow
	for rows.Next() {
		var r ListDailyEventCountsRow
		if err := rows.Scan(&r.Date, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getMostActiveHour = `
SELECT EXTRACT(HOUR FROM timestamp)::int AS hour, COUNT(*) AS count
FROM cart_events
WHERE timestamp >= $1
GROUP BY hour
ORDER BY count DESC, hour
LIMIT 1
`

type GetMostActiveHourRow struct {
	Hour  int32
	Count int64
}

func (q *Queries) GetMostActiveHour(ctx context.Context, since pgtype.Timestamptz) (GetMostActiveHourRow, error) {
	row := q.db.QueryRow(ctx, getMostActiveHour, since)
	var r GetMostActiveHourRow
	err := row.Scan(&r.Hour, &r.Count)
	return r, err
}

const countCartsBetweenByStatus = `
SELECT COUNT(*) FROM carts WHERE created_at >= $1 AND created_at < $2 AND status = $3
`

type CountCartsBetweenByStatusParams struct {
	Start  pgtype.Timestamptz
	End    pgtype.Timestamptz
	Status string
}

func (q *Queries) CountCartsBetweenByStatus(ctx context.Context, arg CountCartsBetweenByStatusParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countCartsBetweenByStatus, arg.Start, arg.End, arg.Status).Scan(&count)
	return count, err
}

const countEventsBetween = `
SELECT COUNT(*) FROM cart_events WHERE timestamp >= $1 AND timestamp < $2
`

type CountEventsBetweenParams struct {
	Start pgtype.Timestamptz
	End   pgtype.Timestamptz
}

func (q *Queries) CountEventsBetween(ctx context.Context, arg CountEventsBetweenParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countEventsBetween, arg.Start, arg.End).Scan(&count)
	return count, err
}

// listProductPairs joins cart_items against itself with product_id ordered
// a < b, so each symmetric pair is counted once.
const listProductPairs = `
SELECT ci1.product_id, pa.name, ci2.product_id, pb.name, COUNT(*) AS frequency
FROM cart_items ci1
JOIN cart_items ci2 ON ci1.cart_id = ci2.cart_id AND ci1.product_id < ci2.product_id
JOIN products pa ON pa.id = ci1.product_id
JOIN products pb ON pb.id = ci2.product_id
GROUP BY ci1.product_id, pa.name, ci2.product_id, pb.name
ORDER BY frequency DESC, ci1.product_id, ci2.product_id
LIMIT $1
`

type ListProductPairsRow struct {
	ProductAID   pgtype.UUID
	ProductAName string
	ProductBID   pgtype.UUID
	ProductBName string
	Frequency    int64
}

func (q *Queries) ListProductPairs(ctx context.Context, limit int32) ([]ListProductPairsRow, error) {
	rows, err := q.db.Query(ctx, listProductPairs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListProductPairsRow
	for rows.Next() {
		var r ListProductPairsRow
		if err := rows.Scan(&r.ProductAID, &r.ProductAName, &r.ProductBID, &r.ProductBName, &r.Frequency); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
