package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	orderByScore    = "score"
	orderByPrice    = "price"
	orderByListedAt = "listed_at"
)

// validOrderBy maps allowed OrderBy values to their SQL column expressions.
var validOrderBy = map[string]string{
	orderByScore:    "score DESC NULLS LAST",
	orderByPrice:    "price ASC",
	orderByListedAt: "listed_at DESC",
}

const defaultOrderBy = "listed_at DESC"

const baseListingsSelect = `SELECT id, category, brand, model, title, item_url,
	price, original_price, source, seller,
	condition, description, images,
	views, watchers, inquiries,
	score, grade, score_breakdown, scored_at,
	listed_at, created_at, updated_at
FROM listings`

const countListingsSelect = "SELECT COUNT(*) FROM listings"

// ToSQL builds the WHERE clause, ORDER BY, LIMIT, and OFFSET for a listing
// query. It returns two SQL strings (one for the data query, one for the
// count query) and the positional parameters.
func (q *ListingQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	if q.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", paramIdx))
		args = append(args, *q.Category)
		paramIdx++
	}

	if q.Brand != nil {
		conditions = append(conditions, fmt.Sprintf("lower(brand) = lower($%d)", paramIdx))
		args = append(args, *q.Brand)
		paramIdx++
	}

	if q.Source != nil {
		conditions = append(conditions, fmt.Sprintf("source = $%d", paramIdx))
		args = append(args, *q.Source)
		paramIdx++
	}

	if q.Grade != nil {
		conditions = append(conditions, fmt.Sprintf("grade = $%d", paramIdx))
		args = append(args, *q.Grade)
		paramIdx++
	}

	if q.MinScore != nil {
		conditions = append(conditions, fmt.Sprintf("score >= $%d", paramIdx))
		args = append(args, *q.MinScore)
		paramIdx++
	}

	if q.MaxScore != nil {
		conditions = append(conditions, fmt.Sprintf("score <= $%d", paramIdx))
		args = append(args, *q.MaxScore)
		paramIdx++
	}

	if q.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", paramIdx))
		args = append(args, *q.MaxPrice)
		paramIdx++
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Order by
	orderClause := defaultOrderBy
	if q.OrderBy != "" {
		if col, ok := validOrderBy[q.OrderBy]; ok {
			orderClause = col
		}
	}

	// Limit
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := max(q.Offset, 0)

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseListingsSelect, whereClause, orderClause, limit, offset,
	)

	countSQL = countListingsSelect + whereClause

	return dataSQL, countSQL, args
}
