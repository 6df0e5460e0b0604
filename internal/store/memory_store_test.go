package store

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagapurva3/senior-care-incidents/internal/errs"
	"github.com/dagapurva3/senior-care-incidents/internal/models"
	"github.com/dagapurva3/senior-care-incidents/internal/query"
)

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newIncident(owner string, typ models.IncidentType, status models.IncidentStatus, desc string) *models.Incident {
	return &models.Incident{OwnerID: owner, Type: typ, Status: status, Description: desc}
}

func TestMemoryStore_InsertAssignsIdentity(t *testing.T) {
	s := NewMemoryStore(WithClock(tickingClock()))
	ctx := context.Background()

	in := newIncident("owner-1", models.TypeFall, models.StatusOpen, "Slipped near the lift")
	got, err := s.Insert(ctx, in)
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Empty(t, in.ID, "caller's record is not mutated")
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)

	found, err := s.FindOne(ctx, "owner-1", got.ID)
	require.NoError(t, err)
	assert.Equal(t, got, found)
}

func TestMemoryStore_InsertRejectsInvalidRecord(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Insert(context.Background(), newIncident("owner-1", "flood", models.StatusOpen, "Water everywhere in room"))
	assert.Equal(t, errs.KindInvalidType, errs.KindOf(err))
}

func TestMemoryStore_OwnerScoping(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	got, err := s.Insert(ctx, newIncident("owner-1", models.TypeFall, models.StatusOpen, "Slipped near the lift"))
	require.NoError(t, err)

	_, err = s.FindOne(ctx, "owner-2", got.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	foreign := *got
	foreign.OwnerID = "owner-2"
	foreign.Status = models.StatusClosed
	assert.ErrorIs(t, s.Save(ctx, &foreign, FieldStatus), errs.ErrNotFound)

	page, total, err := s.FindPage(ctx, query.Build("owner-2", query.Params{}))
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Zero(t, total)
}

func TestMemoryStore_FindPage(t *testing.T) {
	s := NewMemoryStore(WithClock(tickingClock()))
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		typ := models.TypeFall
		if i%2 == 1 {
			typ = models.TypeMedication
		}
		_, err := s.Insert(ctx, newIncident("owner-1", typ, models.StatusOpen, fmt.Sprintf("Incident number %02d", i)))
		require.NoError(t, err)
	}
	_, err := s.Insert(ctx, newIncident("owner-2", models.TypeFall, models.StatusOpen, "Someone else's incident"))
	require.NoError(t, err)

	page, total, err := s.FindPage(ctx, query.Build("owner-1", query.Params{Page: "3", Limit: "10"}))
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	require.Len(t, page, 5)
	// Newest first: the last page holds the five oldest.
	assert.Equal(t, "Incident number 04", page[0].Description)
	assert.Equal(t, "Incident number 00", page[4].Description)

	page, total, err = s.FindPage(ctx, query.Build("owner-1", query.Params{Type: "medication", Limit: "100"}))
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
	assert.Len(t, page, 12)

	page, total, err = s.FindPage(ctx, query.Build("owner-1", query.Params{Search: "NUMBER 1", SortOrder: "ASC"}))
	require.NoError(t, err)
	assert.EqualValues(t, 10, total)
	assert.Equal(t, "Incident number 10", page[0].Description)

	page, total, err = s.FindPage(ctx, query.Build("owner-1", query.Params{Page: "9"}))
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Empty(t, page)
}

func TestMemoryStore_SortTieBreaksOnID(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore(WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Insert(ctx, newIncident("owner-1", models.TypeOther, models.StatusOpen, "Identical timestamps here"))
		require.NoError(t, err)
	}

	d := query.Build("owner-1", query.Params{SortBy: "createdAt", SortOrder: "ASC"})
	first, _, err := s.FindPage(ctx, d)
	require.NoError(t, err)
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].ID, first[i].ID)
	}

	second, _, err := s.FindPage(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMemoryStore_SaveStatus(t *testing.T) {
	s := NewMemoryStore(WithClock(tickingClock()))
	ctx := context.Background()

	got, err := s.Insert(ctx, newIncident("owner-1", models.TypeFall, models.StatusOpen, "Slipped near the lift"))
	require.NoError(t, err)

	got.Status = models.StatusResolved
	got.Description = "ignored because only status is saved"
	require.NoError(t, s.Save(ctx, got, FieldStatus))

	found, err := s.FindOne(ctx, "owner-1", got.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, found.Status)
	assert.Equal(t, "Slipped near the lift", found.Description)
	assert.True(t, found.UpdatedAt.After(found.CreatedAt))

	got.Status = "archived"
	assert.Equal(t, errs.KindInvalidStatus, errs.KindOf(s.Save(ctx, got, FieldStatus)))

	assert.Error(t, s.Save(ctx, got, "description"))
}

func TestMemoryStore_SaveSummaryOnce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	got, err := s.Insert(ctx, newIncident("owner-1", models.TypeFall, models.StatusOpen, "Slipped near the lift"))
	require.NoError(t, err)

	first := "Resident slipped; no injury."
	got.Summary = &first
	require.NoError(t, s.Save(ctx, got, FieldSummary))

	second := "Another summary"
	got.Summary = &second
	assert.ErrorIs(t, s.Save(ctx, got, FieldSummary), errs.ErrConflict)

	found, err := s.FindOne(ctx, "owner-1", got.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Summary)
	assert.Equal(t, first, *found.Summary)
}

func TestMemoryStore_FindAllOrderedByCreatedAtDesc(t *testing.T) {
	s := NewMemoryStore(WithClock(tickingClock()))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Insert(ctx, newIncident("owner-1", models.TypeOther, models.StatusOpen, fmt.Sprintf("Export row number %d", i)))
		require.NoError(t, err)
	}

	all, err := s.FindAllOrderedByCreatedAtDesc(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Export row number 2", all[0].Description)
	assert.Equal(t, "Export row number 0", all[2].Description)

	none, err := s.FindAllOrderedByCreatedAtDesc(ctx, "owner-2")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryStore_Ping(t *testing.T) {
	s := NewMemoryStore()
	assert.NoError(t, s.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}

func TestMemoryStore_FindPagePastTheEnd(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Insert(ctx, newIncident("owner-1", models.TypeFall, models.StatusOpen, "Slipped near the lift"))
	require.NoError(t, err)

	for _, offset := range []int{-80, 1, math.MaxInt} {
		page, total, err := s.FindPage(ctx, query.Descriptor{
			Filter: query.Filter{OwnerID: "owner-1"},
			Limit:  100,
			Offset: offset,
		})
		require.NoError(t, err)
		assert.Empty(t, page)
		assert.EqualValues(t, 1, total)
	}

	page, _, err := s.FindPage(ctx, query.Build("owner-1", query.Params{Page: "922337203685477581", Limit: "100"}))
	require.NoError(t, err)
	assert.Empty(t, page)
}
