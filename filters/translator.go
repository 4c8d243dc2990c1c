// Package filters turns course listing query strings into a typed query
// that the course store can execute.
package filters

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"coursehub/apperror"
)

type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpContains Operator = "contains"
)

// operator precedence inside a merged clause, keeps generated SQL stable
var operatorOrder = map[Operator]int{
	OpEq: 0, OpNe: 1, OpGt: 2, OpGte: 3, OpLt: 4, OpLte: 5, OpContains: 6,
}

var operatorsByKind = map[FieldKind][]Operator{
	KindText:  {OpEq, OpNe, OpContains},
	KindInt:   {OpEq, OpNe, OpGt, OpGte, OpLt, OpLte},
	KindFloat: {OpEq, OpNe, OpGt, OpGte, OpLt, OpLte},
	KindDate:  {OpEq, OpNe, OpGt, OpGte, OpLt, OpLte},
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = "created_at"

	// MaxPage keeps (page-1)*limit within int for every allowed limit.
	MaxPage = math.MaxInt / MaxLimit
)

var reservedKeys = map[string]bool{
	"search": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

type filterKey struct {
	field string
	op    Operator
}

// filterKeys enumerates every accepted query key. A bare field name means
// equality and "<field>_<op>" selects another operator. Anything not in
// this table is ignored.
var filterKeys = buildFilterKeys()

func buildFilterKeys() map[string]filterKey {
	keys := make(map[string]filterKey)
	for field, kind := range courseFields {
		keys[field] = filterKey{field: field, op: OpEq}
		for _, op := range operatorsByKind[kind] {
			if op == OpEq {
				continue
			}
			keys[field+"_"+string(op)] = filterKey{field: field, op: op}
		}
	}
	return keys
}

// Condition is a single comparison against a coerced value.
type Condition struct {
	Op    Operator
	Value any
}

// FieldFilter groups every condition on one field; the store ANDs them
// into one compound clause.
type FieldFilter struct {
	Field      string
	Conditions []Condition
}

type SortField struct {
	Field string
	Desc  bool
}

// CourseQuery is the translated form of a course listing request.
type CourseQuery struct {
	Filters []FieldFilter
	Search  []string
	Sort    []SortField
	Page    int
	Limit   int
}

func (q *CourseQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// ParseCourseQuery translates listing query parameters. Values that fail
// coercion are reported together in one validation error.
func ParseCourseQuery(params map[string]string) (*CourseQuery, error) {
	q := &CourseQuery{
		Search: strings.Fields(params["search"]),
		Sort:   ParseSort(params["sort"]),
		Page:   parsePage(params["page"]),
		Limit:  parseLimit(params["limit"]),
	}

	grouped := make(map[string][]Condition)
	invalid := make(map[string]string)

	for key, raw := range params {
		if reservedKeys[key] {
			continue
		}
		fk, ok := filterKeys[key]
		if !ok {
			continue
		}

		var value any = raw
		if fk.op != OpContains {
			v, err := Coerce(fk.field, raw)
			if err != nil {
				invalid[key] = fieldMessage(err, fk.field)
				continue
			}
			value = v
		}
		grouped[fk.field] = append(grouped[fk.field], Condition{Op: fk.op, Value: value})
	}

	if len(invalid) > 0 {
		return nil, apperror.Validation("Invalid filter value!", invalid)
	}

	fields := make([]string, 0, len(grouped))
	for field := range grouped {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		conds := grouped[field]
		sort.Slice(conds, func(i, j int) bool {
			return operatorOrder[conds[i].Op] < operatorOrder[conds[j].Op]
		})
		q.Filters = append(q.Filters, FieldFilter{Field: field, Conditions: conds})
	}

	return q, nil
}

// ParseSort reads "field:direction" pairs separated by commas. Unknown
// fields are dropped, directions other than "desc" sort ascending, and an
// empty result falls back to created_at ascending.
func ParseSort(raw string) []SortField {
	var out []SortField
	seen := make(map[string]bool)

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, dir, _ := strings.Cut(part, ":")
		field = strings.TrimSpace(field)
		if !IsCourseField(field) || seen[field] {
			continue
		}
		seen[field] = true
		out = append(out, SortField{
			Field: field,
			Desc:  strings.EqualFold(strings.TrimSpace(dir), "desc"),
		})
	}

	if len(out) == 0 {
		return []SortField{{Field: DefaultSort}}
	}
	return out
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page == 0 {
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(strings.TrimSpace(raw), "-") {
			return MaxPage
		}
		return DefaultPage
	}
	return min(max(page, 1), MaxPage)
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit == 0 {
		limit = DefaultLimit
	}
	return min(max(limit, 1), MaxLimit)
}

func fieldMessage(err error, field string) string {
	if appErr, ok := err.(*apperror.Error); ok {
		if msg, ok := appErr.Fields[field]; ok {
			return msg
		}
		return appErr.Message
	}
	return err.Error()
}
