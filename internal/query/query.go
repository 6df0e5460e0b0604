// Package query turns untrusted list parameters into a bounded, whitelisted
// query descriptor.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	filterAll = "all"
)

type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortType      SortField = "type"
	SortStatus    SortField = "status"
)

// sortColumns is the whitelist of sortable fields and the column each maps to.
var sortColumns = map[SortField]string{
	SortCreatedAt: "created_at",
	SortUpdatedAt: "updated_at",
	SortType:      "type",
	SortStatus:    "status",
}

// Column returns the storage column for f. Unknown fields map to created_at.
func (f SortField) Column() string {
	if c, ok := sortColumns[f]; ok {
		return c
	}
	return sortColumns[SortCreatedAt]
}

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Params are the raw list parameters as received from the caller.
type Params struct {
	Page      string
	Limit     string
	PageSize  string
	Search    string
	Type      string
	Status    string
	SortBy    string
	SortOrder string
}

// FromValues reads Params from URL query values.
func FromValues(v url.Values) Params {
	return Params{
		Page:      v.Get("page"),
		Limit:     v.Get("limit"),
		PageSize:  v.Get("pageSize"),
		Search:    v.Get("search"),
		Type:      v.Get("type"),
		Status:    v.Get("status"),
		SortBy:    v.Get("sortBy"),
		SortOrder: v.Get("sortOrder"),
	}
}

// Filter is always scoped to a single owner.
type Filter struct {
	OwnerID string
	Search  string
	Type    string
	Status  string
}

type Sort struct {
	Field     SortField
	Direction Direction
}

// Descriptor is the sanitized form of a list request.
type Descriptor struct {
	Filter Filter
	Sort   Sort
	Page   int
	Limit  int
	Offset int
}

// Builder builds descriptors with a configurable page-size ceiling.
type Builder struct {
	MaxLimit int
}

func NewBuilder(maxLimit int) *Builder {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	return &Builder{MaxLimit: maxLimit}
}

// Build uses the default page-size ceiling.
func Build(ownerID string, p Params) Descriptor {
	return NewBuilder(MaxLimit).Build(ownerID, p)
}

func (b *Builder) Build(ownerID string, p Params) Descriptor {
	page := positiveInt(p.Page, DefaultPage)

	rawLimit := p.Limit
	if strings.TrimSpace(rawLimit) == "" {
		rawLimit = p.PageSize
	}
	limit := positiveInt(rawLimit, DefaultLimit)
	if b.MaxLimit > 0 && limit > b.MaxLimit {
		limit = b.MaxLimit
	}
	// Keep (page-1)*limit within int so the offset never wraps negative.
	if maxSkipped := math.MaxInt / limit; page-1 > maxSkipped {
		page = maxSkipped + 1
	}

	return Descriptor{
		Filter: Filter{
			OwnerID: ownerID,
			Search:  strings.TrimSpace(p.Search),
			Type:    passThrough(p.Type),
			Status:  passThrough(p.Status),
		},
		Sort: Sort{
			Field:     sortField(p.SortBy),
			Direction: direction(p.SortOrder),
		},
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// passThrough keeps filter values as given; they are not checked against the
// enums, so an unknown value simply matches nothing.
func passThrough(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.EqualFold(v, filterAll) {
		return ""
	}
	return v
}

func sortField(raw string) SortField {
	f := SortField(raw)
	if _, ok := sortColumns[f]; ok {
		return f
	}
	return SortCreatedAt
}

func direction(raw string) Direction {
	if strings.EqualFold(strings.TrimSpace(raw), string(Asc)) {
		return Asc
	}
	return Desc
}
