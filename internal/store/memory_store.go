package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dagapurva3/senior-care-incidents/internal/errs"
	"github.com/dagapurva3/senior-care-incidents/internal/models"
	"github.com/dagapurva3/senior-care-incidents/internal/query"
	"github.com/dagapurva3/senior-care-incidents/internal/validation"
)

// MemoryStore keeps records in process memory. It backs STORE_DRIVER=memory
// and the service tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.Incident
	now     func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now for timestamp assignment.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]models.Incident),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Insert(ctx context.Context, incident *models.Incident) (*models.Incident, error) {
	if err := validation.ValidateRecord(incident); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := cloneIncident(*incident)
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	s.records[rec.ID] = rec

	out := cloneIncident(rec)
	return &out, nil
}

func (s *MemoryStore) FindOne(ctx context.Context, ownerID, id string) (*models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	out := cloneIncident(rec)
	return &out, nil
}

func (s *MemoryStore) FindPage(ctx context.Context, d query.Descriptor) ([]models.Incident, int64, error) {
	s.mu.RLock()
	matched := make([]models.Incident, 0)
	for _, rec := range s.records {
		if matches(rec, d.Filter) {
			matched = append(matched, cloneIncident(rec))
		}
	}
	s.mu.RUnlock()

	sortIncidents(matched, d.Sort)

	total := int64(len(matched))
	if d.Offset < 0 || d.Offset >= len(matched) {
		return []models.Incident{}, total, nil
	}
	end := d.Offset + d.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[d.Offset:end], total, nil
}

func (s *MemoryStore) FindAllOrderedByCreatedAtDesc(ctx context.Context, ownerID string) ([]models.Incident, error) {
	s.mu.RLock()
	out := make([]models.Incident, 0)
	for _, rec := range s.records {
		if rec.OwnerID == ownerID {
			out = append(out, cloneIncident(rec))
		}
	}
	s.mu.RUnlock()

	sortIncidents(out, query.Sort{Field: query.SortCreatedAt, Direction: query.Desc})
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, incident *models.Incident, fields ...string) error {
	fields, err := checkFields(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[incident.ID]
	if !ok || rec.OwnerID != incident.OwnerID {
		return errs.ErrNotFound
	}

	next := cloneIncident(rec)
	if containsField(fields, FieldStatus) {
		next.Status = incident.Status
	}
	if containsField(fields, FieldSummary) {
		if rec.HasSummary() {
			return errs.ErrConflict
		}
		next.Summary = incident.Summary
	}
	if err := validation.ValidateRecord(&next); err != nil {
		return err
	}

	next.UpdatedAt = s.now().UTC()
	s.records[next.ID] = next
	incident.UpdatedAt = next.UpdatedAt
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func matches(rec models.Incident, f query.Filter) bool {
	if rec.OwnerID != f.OwnerID {
		return false
	}
	if f.Type != "" && string(rec.Type) != f.Type {
		return false
	}
	if f.Status != "" && string(rec.Status) != f.Status {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(rec.Description), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// sortIncidents orders by the descriptor's field, then by ID in the same
// direction so pages are stable.
func sortIncidents(items []models.Incident, s query.Sort) {
	compare := func(a, b models.Incident) int {
		var c int
		switch s.Field {
		case query.SortUpdatedAt:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		case query.SortType:
			c = strings.Compare(string(a.Type), string(b.Type))
		case query.SortStatus:
			c = strings.Compare(string(a.Status), string(b.Status))
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		return c
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := compare(items[i], items[j])
		if s.Direction == query.Asc {
			return c < 0
		}
		return c > 0
	})
}

func cloneIncident(in models.Incident) models.Incident {
	out := in
	if in.Summary != nil {
		v := *in.Summary
		out.Summary = &v
	}
	return out
}
