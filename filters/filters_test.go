package filters

import (
	"testing"
	"time"

	"coursehub/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	v, err := Coerce("review_count", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = Coerce("price", "19.5")
	require.NoError(t, err)
	assert.Equal(t, 19.5, v)

	v, err = Coerce("language", "English")
	require.NoError(t, err)
	assert.Equal(t, "English", v)

	v, err = Coerce("created_at", "2024-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.True(t, v.(time.Time).Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))

	v, err = Coerce("updated_at", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, v.(time.Time).Year())
}

func TestCoerce_Invalid(t *testing.T) {
	cases := map[string]string{
		"id":             "abc",
		"total_duration": "1.5",
		"price":          "cheap",
		"average_rating": "NaN",
		"created_at":     "not-a-date",
	}
	for field, raw := range cases {
		_, err := Coerce(field, raw)
		require.Error(t, err, field)
		assert.True(t, apperror.Is(err, apperror.KindValidation), field)
	}
}

func TestParseCourseQuery_Defaults(t *testing.T) {
	q, err := ParseCourseQuery(map[string]string{})
	require.NoError(t, err)

	assert.Empty(t, q.Filters)
	assert.Empty(t, q.Search)
	assert.Equal(t, []SortField{{Field: "created_at"}}, q.Sort)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 0, q.Offset())
}

func TestParseCourseQuery_IgnoresUnknownKeys(t *testing.T) {
	q, err := ParseCourseQuery(map[string]string{
		"password":        "x",
		"price_between":   "1",
		"title_gte":       "a",
		"1=1; DROP TABLE": "courses",
		"language":        "English",
	})
	require.NoError(t, err)

	require.Len(t, q.Filters, 1)
	assert.Equal(t, "language", q.Filters[0].Field)
	assert.Equal(t, []Condition{{Op: OpEq, Value: "English"}}, q.Filters[0].Conditions)
}

func TestParseCourseQuery_MergesOperatorsPerField(t *testing.T) {
	q, err := ParseCourseQuery(map[string]string{
		"price_lte":          "50",
		"price_gte":          "10",
		"discount_price_lt":  "30",
		"title_contains":     "Go",
		"total_duration_gte": "60",
	})
	require.NoError(t, err)

	require.Len(t, q.Filters, 4)
	assert.Equal(t, FieldFilter{Field: "discount_price", Conditions: []Condition{{Op: OpLt, Value: 30.0}}}, q.Filters[0])
	assert.Equal(t, FieldFilter{Field: "price", Conditions: []Condition{
		{Op: OpGte, Value: 10.0},
		{Op: OpLte, Value: 50.0},
	}}, q.Filters[1])
	assert.Equal(t, FieldFilter{Field: "title", Conditions: []Condition{{Op: OpContains, Value: "Go"}}}, q.Filters[2])
	assert.Equal(t, FieldFilter{Field: "total_duration", Conditions: []Condition{{Op: OpGte, Value: int64(60)}}}, q.Filters[3])
}

func TestParseCourseQuery_ReportsAllBadValues(t *testing.T) {
	_, err := ParseCourseQuery(map[string]string{
		"price_gte":    "ten",
		"review_count": "many",
		"language":     "English",
	})
	require.Error(t, err)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Fields, "price_gte")
	assert.Contains(t, appErr.Fields, "review_count")
	assert.NotContains(t, appErr.Fields, "language")
}

func TestParseCourseQuery_Search(t *testing.T) {
	q, err := ParseCourseQuery(map[string]string{"search": "  go   web\tbackend "})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web", "backend"}, q.Search)
	assert.Empty(t, q.Filters)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, []SortField{{Field: "price", Desc: true}, {Field: "title"}},
		ParseSort("price:desc, title:sideways, bogus:desc"))
	assert.Equal(t, []SortField{{Field: "average_rating", Desc: true}},
		ParseSort("average_rating:DESC,average_rating:asc"))
	assert.Equal(t, []SortField{{Field: "created_at"}}, ParseSort("nope:desc"))
	assert.Equal(t, []SortField{{Field: "created_at"}}, ParseSort(""))
}

func TestParseCourseQuery_Pagination(t *testing.T) {
	cases := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"", "", 1, 10},
		{"2", "5", 2, 5},
		{"0", "0", 1, 10},
		{"-3", "-7", 1, 1},
		{"abc", "xyz", 1, 10},
		{"4", "1000", 4, 100},
		{"9223372036854775807", "2", MaxPage, 2},
		{"99999999999999999999999", "", MaxPage, 10},
	}
	for _, tc := range cases {
		q, err := ParseCourseQuery(map[string]string{"page": tc.page, "limit": tc.limit})
		require.NoError(t, err)
		assert.Equal(t, tc.wantPage, q.Page, "page=%q", tc.page)
		assert.Equal(t, tc.wantLimit, q.Limit, "limit=%q", tc.limit)
	}

	q, _ := ParseCourseQuery(map[string]string{"page": "3", "limit": "20"})
	assert.Equal(t, 40, q.Offset())
}

func TestCourseQuery_OffsetNeverOverflows(t *testing.T) {
	for _, limit := range []string{"1", "2", "100"} {
		q, err := ParseCourseQuery(map[string]string{"page": "9223372036854775807", "limit": limit})
		require.NoError(t, err)
		assert.Positive(t, q.Offset(), "limit=%s", limit)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 7, TotalPages(13, 2))
}
