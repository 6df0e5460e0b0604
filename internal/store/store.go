// Package store persists incident records. Every read and update is scoped to
// a single owner; a record owned by someone else is reported as not found.
package store

import (
	"context"
	"fmt"

	"github.com/dagapurva3/senior-care-incidents/internal/models"
	"github.com/dagapurva3/senior-care-incidents/internal/query"
)

// Mutable fields accepted by Save.
const (
	FieldStatus  = "status"
	FieldSummary = "summary"
)

type RecordStore interface {
	// Insert assigns ID, CreatedAt and UpdatedAt and stores the record.
	Insert(ctx context.Context, incident *models.Incident) (*models.Incident, error)
	FindOne(ctx context.Context, ownerID, id string) (*models.Incident, error)
	FindPage(ctx context.Context, d query.Descriptor) ([]models.Incident, int64, error)
	FindAllOrderedByCreatedAtDesc(ctx context.Context, ownerID string) ([]models.Incident, error)
	// Save writes the named fields of an existing record and refreshes
	// UpdatedAt. A summary is only written if none is stored yet; otherwise
	// Save returns errs.ErrConflict.
	Save(ctx context.Context, incident *models.Incident, fields ...string) error
	Ping(ctx context.Context) error
}

func checkFields(fields []string) ([]string, error) {
	if len(fields) == 0 {
		return []string{FieldStatus, FieldSummary}, nil
	}
	for _, f := range fields {
		if f != FieldStatus && f != FieldSummary {
			return nil, fmt.Errorf("field %q is not mutable", f)
		}
	}
	return fields, nil
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
