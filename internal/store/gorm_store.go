package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dagapurva3/senior-care-incidents/internal/errs"
	"github.com/dagapurva3/senior-care-incidents/internal/models"
	"github.com/dagapurva3/senior-care-incidents/internal/query"
	"github.com/dagapurva3/senior-care-incidents/internal/validation"
)

// GormStore keeps incidents in PostgreSQL through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Insert(ctx context.Context, incident *models.Incident) (*models.Incident, error) {
	if err := validation.ValidateRecord(incident); err != nil {
		return nil, err
	}

	rec := *incident
	rec.ID = uuid.NewString()
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, errs.FromDB("insert incident", err)
	}
	return &rec, nil
}

func (s *GormStore) FindOne(ctx context.Context, ownerID, id string) (*models.Incident, error) {
	// The id column is a uuid; anything else cannot match and would only
	// produce a driver error.
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.ErrNotFound
	}

	var incident models.Incident
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&incident).Error
	if err != nil {
		return nil, errs.FromDB("find incident", err)
	}
	return &incident, nil
}

func (s *GormStore) FindPage(ctx context.Context, d query.Descriptor) ([]models.Incident, int64, error) {
	var total int64
	if err := s.filtered(ctx, d.Filter).Count(&total).Error; err != nil {
		return nil, 0, errs.FromDB("count incidents", err)
	}

	incidents := make([]models.Incident, 0)
	if total == 0 {
		return incidents, 0, nil
	}

	err := s.filtered(ctx, d.Filter).
		Order(orderBy(d.Sort)).
		Offset(d.Offset).
		Limit(d.Limit).
		Find(&incidents).Error
	if err != nil {
		return nil, 0, errs.FromDB("list incidents", err)
	}
	return incidents, total, nil
}

// filtered scopes a query to one owner and the optional list filters.
func (s *GormStore) filtered(ctx context.Context, f query.Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Incident{}).Where("user_id = ?", f.OwnerID)
	if f.Search != "" {
		q = q.Where("description ILIKE ?", "%"+escapeLike(f.Search)+"%")
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func (s *GormStore) FindAllOrderedByCreatedAtDesc(ctx context.Context, ownerID string) ([]models.Incident, error) {
	incidents := make([]models.Incident, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order(orderBy(query.Sort{Field: query.SortCreatedAt, Direction: query.Desc})).
		Find(&incidents).Error
	if err != nil {
		return nil, errs.FromDB("export incidents", err)
	}
	return incidents, nil
}

func (s *GormStore) Save(ctx context.Context, incident *models.Incident, fields ...string) error {
	fields, err := checkFields(fields)
	if err != nil {
		return err
	}
	if err := validation.ValidateRecord(incident); err != nil {
		return err
	}

	now := time.Now().UTC()
	updates := map[string]any{"updated_at": now}
	q := s.db.WithContext(ctx).
		Model(&models.Incident{}).
		Where("id = ? AND user_id = ?", incident.ID, incident.OwnerID)

	if containsField(fields, FieldStatus) {
		updates["status"] = incident.Status
	}
	summaryWrite := containsField(fields, FieldSummary)
	if summaryWrite {
		updates["summary"] = incident.Summary
		q = q.Where("(summary IS NULL OR summary = '')")
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return errs.FromDB("save incident", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.FindOne(ctx, incident.OwnerID, incident.ID); err != nil {
			return err
		}
		if summaryWrite {
			return errs.ErrConflict
		}
		return errs.ErrNotFound
	}

	incident.UpdatedAt = now
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// orderBy only ever emits whitelisted column names.
func orderBy(sort query.Sort) clause.OrderBy {
	desc := sort.Direction != query.Asc
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: sort.Field.Column()}, Desc: desc},
		{Column: clause.Column{Name: "id"}, Desc: desc},
	}}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
