package filters

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"coursehub/apperror"

	"github.com/jinzhu/now"
)

// FieldKind describes how raw query values for a field are typed.
type FieldKind int

const (
	KindText FieldKind = iota
	KindInt
	KindFloat
	KindDate
)

// courseFields is the closed allow-list of filterable and sortable columns.
var courseFields = map[string]FieldKind{
	"id":             KindInt,
	"title":          KindText,
	"description":    KindText,
	"price":          KindFloat,
	"discount_price": KindFloat,
	"average_rating": KindFloat,
	"review_count":   KindInt,
	"language":       KindText,
	"total_duration": KindInt,
	"thumbnail_url":  KindText,
	"created_at":     KindDate,
	"updated_at":     KindDate,
}

// IsCourseField reports whether name is on the course allow-list.
func IsCourseField(name string) bool {
	_, ok := courseFields[name]
	return ok
}

// Coerce converts a raw query value into the Go type of field. Numeric
// and date fields that do not parse produce a validation error; every
// other field is returned unchanged.
func Coerce(field, raw string) (any, error) {
	value := strings.TrimSpace(raw)

	switch courseFields[field] {
	case KindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, invalidValue(field, raw, "an integer")
		}
		return n, nil

	case KindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, invalidValue(field, raw, "a number")
		}
		return f, nil

	case KindDate:
		t, err := parseDate(value)
		if err != nil {
			return nil, invalidValue(field, raw, "a date")
		}
		return t, nil
	}

	return raw, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return now.Parse(value)
}

func invalidValue(field, raw, want string) error {
	return apperror.ValidationField(field, fmt.Sprintf("Invalid value %q for %s, expected %s", raw, field, want))
}
