package query

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_Defaults(t *testing.T) {
	d := Build("owner-1", Params{})

	assert.Equal(t, "owner-1", d.Filter.OwnerID)
	assert.Equal(t, DefaultPage, d.Page)
	assert.Equal(t, DefaultLimit, d.Limit)
	assert.Equal(t, 0, d.Offset)
	assert.Equal(t, SortCreatedAt, d.Sort.Field)
	assert.Equal(t, Desc, d.Sort.Direction)
	assert.Empty(t, d.Filter.Search)
	assert.Empty(t, d.Filter.Type)
	assert.Empty(t, d.Filter.Status)
}

func TestBuild_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		params     Params
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"third page", Params{Page: "3", Limit: "10"}, 3, 10, 20},
		{"pageSize alias", Params{Page: "2", PageSize: "25"}, 2, 25, 25},
		{"limit wins over pageSize", Params{Limit: "5", PageSize: "50"}, 1, 5, 0},
		{"limit clamped", Params{Limit: "1000"}, 1, MaxLimit, 0},
		{"zero page", Params{Page: "0"}, DefaultPage, DefaultLimit, 0},
		{"negative limit", Params{Limit: "-4"}, DefaultPage, DefaultLimit, 0},
		{"garbage", Params{Page: "two", Limit: "ten"}, DefaultPage, DefaultLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Build("owner-1", tt.params)
			assert.Equal(t, tt.wantPage, d.Page)
			assert.Equal(t, tt.wantLimit, d.Limit)
			assert.Equal(t, tt.wantOffset, d.Offset)
		})
	}
}

func TestBuilder_CustomCeiling(t *testing.T) {
	d := NewBuilder(20).Build("owner-1", Params{Limit: "50"})
	assert.Equal(t, 20, d.Limit)

	d = NewBuilder(0).Build("owner-1", Params{Limit: "500"})
	assert.Equal(t, MaxLimit, d.Limit)
}

func TestBuild_SortWhitelist(t *testing.T) {
	tests := []struct {
		sortBy    string
		sortOrder string
		wantField SortField
		wantDir   Direction
		wantCol   string
	}{
		{"type", "ASC", SortType, Asc, "type"},
		{"status", "asc", SortStatus, Asc, "status"},
		{"updatedAt", "DESC", SortUpdatedAt, Desc, "updated_at"},
		{"createdAt", "sideways", SortCreatedAt, Desc, "created_at"},
		{"description; DROP TABLE incidents", "ASC", SortCreatedAt, Asc, "created_at"},
		{"user_id", "", SortCreatedAt, Desc, "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			d := Build("owner-1", Params{SortBy: tt.sortBy, SortOrder: tt.sortOrder})
			assert.Equal(t, tt.wantField, d.Sort.Field)
			assert.Equal(t, tt.wantDir, d.Sort.Direction)
			assert.Equal(t, tt.wantCol, d.Sort.Field.Column())
		})
	}
}

func TestBuild_Filters(t *testing.T) {
	d := Build("owner-1", Params{Search: "  hallway ", Type: "fall", Status: "all"})
	assert.Equal(t, "hallway", d.Filter.Search)
	assert.Equal(t, "fall", d.Filter.Type)
	assert.Empty(t, d.Filter.Status)

	// Unknown values pass through and simply match nothing.
	d = Build("owner-1", Params{Type: "flood", Status: "ALL"})
	assert.Equal(t, "flood", d.Filter.Type)
	assert.Empty(t, d.Filter.Status)
}

func TestFromValues(t *testing.T) {
	v := url.Values{}
	v.Set("page", "2")
	v.Set("pageSize", "15")
	v.Set("search", "bed")
	v.Set("type", "fall")
	v.Set("status", "open")
	v.Set("sortBy", "type")
	v.Set("sortOrder", "ASC")

	p := FromValues(v)
	assert.Equal(t, Params{
		Page:      "2",
		PageSize:  "15",
		Search:    "bed",
		Type:      "fall",
		Status:    "open",
		SortBy:    "type",
		SortOrder: "ASC",
	}, p)
}

func TestBuild_HugePageDoesNotOverflowOffset(t *testing.T) {
	tests := []struct {
		page  string
		limit string
	}{
		{"922337203685477581", "100"},
		{strconv.Itoa(math.MaxInt), "100"},
		{strconv.Itoa(math.MaxInt), "1"},
		{strconv.Itoa(math.MaxInt), "7"},
	}

	for _, tt := range tests {
		t.Run(tt.page+"/"+tt.limit, func(t *testing.T) {
			d := Build("owner-1", Params{Page: tt.page, Limit: tt.limit})
			assert.GreaterOrEqual(t, d.Offset, 0)
			assert.GreaterOrEqual(t, d.Page, 1)
			assert.Equal(t, (d.Page-1)*d.Limit, d.Offset)
		})
	}
}
