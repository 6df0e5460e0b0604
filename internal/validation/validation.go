// Package validation checks incident payloads before they reach the store.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dagapurva3/senior-care-incidents/internal/errs"
	"github.com/dagapurva3/senior-care-incidents/internal/models"
)

// CreateInput is the raw create payload. Fields are left untyped so that a
// missing value and a value of the wrong JSON type can be told apart.
type CreateInput struct {
	Type        any `json:"type"`
	Description any `json:"description"`
	Status      any `json:"status"`
}

// CreateRequest is a create payload that passed validation.
type CreateRequest struct {
	Type        models.IncidentType
	Description string
	Status      models.IncidentStatus
}

// Field names of models.Incident carrying validate tags.
const (
	fieldType        = "Type"
	fieldDescription = "Description"
	fieldStatus      = "Status"
)

var validate = validator.New()

var (
	typeMessage   = fmt.Sprintf("Type must be one of: %s", joinTypes())
	statusMessage = fmt.Sprintf("Status must be one of: %s", joinStatuses())
)

// ValidateCreate checks a create payload and returns it normalized: trimmed
// description, typed enums and the default status.
func ValidateCreate(in CreateInput) (CreateRequest, error) {
	rawType, ok := in.Type.(string)
	if !ok || rawType == "" {
		return CreateRequest{}, errs.New(errs.KindInvalidType, typeMessage)
	}

	rawDescription, ok := in.Description.(string)
	if !ok || rawDescription == "" {
		return CreateRequest{}, errs.New(errs.KindInvalidDescription, "Description is required and must be a string")
	}

	description, err := ValidateDescription(rawDescription)
	if err != nil {
		return CreateRequest{}, err
	}

	incidentType := models.IncidentType(rawType)
	if err := validateField(&models.Incident{Type: incidentType}, fieldType); err != nil {
		return CreateRequest{}, err
	}

	status := models.StatusOpen
	if in.Status != nil {
		rawStatus, ok := in.Status.(string)
		if !ok {
			return CreateRequest{}, errs.New(errs.KindInvalidStatus, statusMessage)
		}
		status = models.IncidentStatus(rawStatus)
		if err := validateField(&models.Incident{Status: status}, fieldStatus); err != nil {
			return CreateRequest{}, err
		}
	}

	return CreateRequest{
		Type:        incidentType,
		Description: description,
		Status:      status,
	}, nil
}

// ValidateDescription trims s and checks its length in characters.
func ValidateDescription(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if err := validateField(&models.Incident{Description: trimmed}, fieldDescription); err != nil {
		return "", err
	}
	return trimmed, nil
}

// ValidateStatus checks a status update request.
func ValidateStatus(id, status string) (models.IncidentStatus, error) {
	if strings.TrimSpace(id) == "" {
		return "", errs.ErrMissingID
	}
	if status == "" {
		return "", errs.ErrMissingStatus
	}
	s := models.IncidentStatus(status)
	if err := validateField(&models.Incident{Status: s}, fieldStatus); err != nil {
		return "", err
	}
	return s, nil
}

// ValidateRecord re-checks the stored-record invariants (type, status,
// description length). Stores call it at the persistence boundary.
func ValidateRecord(inc *models.Incident) error {
	check := models.Incident{
		Type:        inc.Type,
		Description: strings.TrimSpace(inc.Description),
		Status:      inc.Status,
	}
	return toError(validate.StructPartial(&check, fieldType, fieldStatus, fieldDescription))
}

func validateField(inc *models.Incident, field string) error {
	return toError(validate.StructPartial(inc, field))
}

// toError maps the first failed rule onto the error taxonomy.
func toError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.Wrap(errs.KindInternal, "validate incident", err)
	}

	fe := fieldErrs[0]
	switch fe.StructField() {
	case fieldType:
		return errs.New(errs.KindInvalidType, typeMessage)
	case fieldStatus:
		return errs.New(errs.KindInvalidStatus, statusMessage)
	case fieldDescription:
		if fe.Tag() == "max" {
			return errs.New(errs.KindInvalidDescription,
				fmt.Sprintf("Description must be at most %d characters long", models.DescriptionMaxLength))
		}
		return errs.New(errs.KindInvalidDescription,
			fmt.Sprintf("Description must be at least %d characters long", models.DescriptionMinLength))
	default:
		return errs.Wrap(errs.KindInternal, "validate incident", err)
	}
}

func joinTypes() string {
	parts := make([]string, len(models.IncidentTypes))
	for i, t := range models.IncidentTypes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func joinStatuses() string {
	parts := make([]string, len(models.IncidentStatuses))
	for i, s := range models.IncidentStatuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
