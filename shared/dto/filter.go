package dto

import (
	"net/url"
	"strconv"
	"strings"
)

// Filters are translated into query strings on booking core API list calls,
// so a Filter is only as expressive as the upstream endpoint it targets.
const (
	FilterOperatorEq     = "eq"
	FilterOperatorSearch = "search"
	FilterOperatorIn     = "in"
)

type Filter struct {
	Field    string
	Value    any
	Operator string `validate:"required,oneof=eq search in"`
}

type FilterGroup struct {
	Filters []Filter
}

// ToQuery renders the filter group onto upstream query parameters.
func (f *FilterGroup) ToQuery(values url.Values) {
	for _, filter := range f.Filters {
		switch filter.Operator {
		case FilterOperatorEq:
			values.Set(filter.Field, toString(filter.Value))
		case FilterOperatorSearch:
			values.Set("search", toString(filter.Value))
		case FilterOperatorIn:
			if list, ok := filter.Value.([]string); ok {
				values.Set(filter.Field, strings.Join(list, ","))
			}
		}
	}
}

// CacheKey renders a deterministic fragment for cache key construction.
func (f *FilterGroup) CacheKey() string {
	parts := make([]string, 0, len(f.Filters))
	for _, filter := range f.Filters {
		parts = append(parts, filter.Field+"="+toString(filter.Value))
	}

	return strings.Join(parts, "&")
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return strings.Join(v, ",")
	default:
		return ""
	}
}
