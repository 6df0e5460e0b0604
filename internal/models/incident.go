package models

import (
	"time"
)

type IncidentType string
type IncidentStatus string

const (
	TypeFall       IncidentType = "fall"
	TypeBehaviour  IncidentType = "behaviour"
	TypeMedication IncidentType = "medication"
	TypeOther      IncidentType = "other"
)

const (
	StatusOpen       IncidentStatus = "open"
	StatusInProgress IncidentStatus = "in_progress"
	StatusResolved   IncidentStatus = "resolved"
	StatusClosed     IncidentStatus = "closed"
)

const (
	DescriptionMinLength = 10
	DescriptionMaxLength = 2000
)

// IncidentTypes lists the valid types in the order used by error messages.
var IncidentTypes = []IncidentType{TypeFall, TypeBehaviour, TypeMedication, TypeOther}

// IncidentStatuses lists the valid statuses in the order used by error messages.
var IncidentStatuses = []IncidentStatus{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// Incident is a report filed by a single owner. OwnerID is serialized as userId
// to stay compatible with existing API clients. The validate tags mirror
// IncidentTypes, IncidentStatuses and the description bounds.
type Incident struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID     string         `json:"userId" gorm:"column:user_id;not null;index:idx_incidents_user_created,priority:1"`
	Type        IncidentType   `json:"type" gorm:"type:varchar(32);not null" validate:"oneof=fall behaviour medication other"`
	Description string         `json:"description" gorm:"type:text;not null" validate:"min=10,max=2000"`
	Summary     *string        `json:"summary,omitempty" gorm:"type:text"`
	Status      IncidentStatus `json:"status" gorm:"type:varchar(32);not null;default:'open'" validate:"oneof=open in_progress resolved closed"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"index:idx_incidents_user_created,priority:2"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (Incident) TableName() string {
	return "incidents"
}

// HasSummary reports whether a summary has already been stored.
func (i *Incident) HasSummary() bool {
	return i.Summary != nil && *i.Summary != ""
}
