package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestToSQL_Defaults(t *testing.T) {
	t.Parallel()

	q := &ListingQuery{}
	dataSQL, countSQL, args := q.ToSQL()

	assert.NotContains(t, dataSQL, "WHERE")
	assert.Contains(t, dataSQL, "ORDER BY listed_at DESC")
	assert.Contains(t, dataSQL, "LIMIT 50 OFFSET 0")
	assert.Equal(t, "SELECT COUNT(*) FROM listings", countSQL)
	assert.Empty(t, args)
}

func TestToSQL_AllFilters(t *testing.T) {
	t.Parallel()

	maxPrice := 10000.0
	q := &ListingQuery{
		Category: strPtr("watch"),
		Brand:    strPtr("Rolex"),
		Source:   strPtr("chrono24"),
		Grade:    strPtr("HOT DEAL"),
		MinScore: intPtr(80),
		MaxScore: intPtr(100),
		MaxPrice: &maxPrice,
		Limit:    25,
		Offset:   50,
		OrderBy:  "score",
	}

	dataSQL, countSQL, args := q.ToSQL()

	assert.Contains(t, dataSQL, "category = $1")
	assert.Contains(t, dataSQL, "lower(brand) = lower($2)")
	assert.Contains(t, dataSQL, "source = $3")
	assert.Contains(t, dataSQL, "grade = $4")
	assert.Contains(t, dataSQL, "score >= $5")
	assert.Contains(t, dataSQL, "score <= $6")
	assert.Contains(t, dataSQL, "price <= $7")
	assert.Contains(t, dataSQL, "ORDER BY score DESC NULLS LAST")
	assert.Contains(t, dataSQL, "LIMIT 25 OFFSET 50")
	assert.Equal(t, []any{"watch", "Rolex", "chrono24", "HOT DEAL", 80, 100, 10000.0}, args)

	// Count query shares the WHERE clause but carries no ordering or paging.
	assert.Contains(t, countSQL, "category = $1")
	assert.NotContains(t, countSQL, "ORDER BY")
	assert.NotContains(t, countSQL, "LIMIT")
}

func TestToSQL_LimitClamping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit int
		want  string
	}{
		{"zero uses default", 0, "LIMIT 50"},
		{"negative uses default", -5, "LIMIT 50"},
		{"huge clamped to max", 100000, "LIMIT 500"},
		{"in range kept", 200, "LIMIT 200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := &ListingQuery{Limit: tt.limit}
			dataSQL, _, _ := q.ToSQL()
			assert.Contains(t, dataSQL, tt.want)
		})
	}
}

func TestToSQL_UnknownOrderByIgnored(t *testing.T) {
	t.Parallel()

	q := &ListingQuery{OrderBy: "seller; DROP TABLE listings"}
	dataSQL, _, _ := q.ToSQL()
	assert.Contains(t, dataSQL, "ORDER BY listed_at DESC")
	assert.Equal(t, 1, strings.Count(dataSQL, "ORDER BY"))
}

func TestToSQL_NegativeOffsetFloored(t *testing.T) {
	t.Parallel()

	q := &ListingQuery{Offset: -10}
	dataSQL, _, _ := q.ToSQL()
	assert.Contains(t, dataSQL, "OFFSET 0")
}
