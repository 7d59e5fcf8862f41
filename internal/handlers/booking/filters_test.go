package booking

import (
	"net/http/httptest"
	"testing"
	"unibook/internal/domains/booking/model"
	gDto "unibook/shared/dto"
	"unibook/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterByField(group gDto.FilterGroup, field string) (gDto.Filter, bool) {
	for _, filter := range group.Filters {
		if filter.Field == field {
			return filter, true
		}
	}

	return gDto.Filter{}, false
}

func TestFiltersFromQueryCollectsListFilters(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/bookings?status=pending&facility_id=fac-1&category=Lab&search=robotics", nil)

	group, err := filtersFromQuery(r)
	require.NoError(t, err)
	require.Len(t, group.Filters, 4)

	status, ok := filterByField(group, model.FieldStatus)
	require.True(t, ok)
	// Aliases collapse at the boundary before the filter is forwarded.
	assert.Equal(t, string(model.StatusPendingApproval), status.Value)
	assert.Equal(t, gDto.FilterOperatorEq, status.Operator)

	category, ok := filterByField(group, model.FieldCategory)
	require.True(t, ok)
	assert.Equal(t, "Lab", category.Value)

	search, ok := filterByField(group, model.FieldSearch)
	require.True(t, ok)
	assert.Equal(t, gDto.FilterOperatorSearch, search.Operator)
}

func TestFiltersFromQueryWithoutParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/bookings", nil)

	group, err := filtersFromQuery(r)
	require.NoError(t, err)
	assert.Empty(t, group.Filters)
}

func TestFiltersFromQueryRejectsUnknownStatus(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/bookings?status=definitely-not-a-status", nil)

	_, err := filtersFromQuery(r)
	require.Error(t, err)
	assert.True(t, failure.IsClientFault(err))
	assert.Contains(t, err.Error(), "definitely-not-a-status")
	assert.Contains(t, err.Error(), string(model.StatusApproved))
}
