package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dagapurva3/senior-care-incidents/internal/errs"
	"github.com/dagapurva3/senior-care-incidents/internal/logger"
	"github.com/dagapurva3/senior-care-incidents/internal/models"
	"github.com/dagapurva3/senior-care-incidents/internal/query"
	"github.com/dagapurva3/senior-care-incidents/internal/store"
	"github.com/dagapurva3/senior-care-incidents/internal/validation"
)

const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"

	defaultSummarizeTimeout = 30 * time.Second
)

type IncidentServiceOptions struct {
	// SummarizeTimeout bounds a single gateway call.
	SummarizeTimeout time.Duration
	// MaxLimit caps the page size of List.
	MaxLimit int
}

// IncidentService is the entry point for all incident operations. Every
// method is scoped to the owner passed in; records of other owners are
// reported as not found.
type IncidentService struct {
	store            store.RecordStore
	summarizer       Summarizer
	queries          *query.Builder
	summarizeTimeout time.Duration
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

type ListResult struct {
	Incidents  []models.Incident `json:"incidents"`
	Pagination Pagination        `json:"pagination"`
}

type ExportResult struct {
	Format    string
	Incidents []models.Incident
	CSV       string
}

func NewIncidentService(recordStore store.RecordStore, summarizer Summarizer, opts IncidentServiceOptions) *IncidentService {
	timeout := opts.SummarizeTimeout
	if timeout <= 0 {
		timeout = defaultSummarizeTimeout
	}
	return &IncidentService{
		store:            recordStore,
		summarizer:       summarizer,
		queries:          query.NewBuilder(opts.MaxLimit),
		summarizeTimeout: timeout,
	}
}

func (s *IncidentService) Create(ctx context.Context, ownerID string, in validation.CreateInput) (*models.Incident, error) {
	log := logger.WithOwner(ownerID)

	req, err := validation.ValidateCreate(in)
	if err != nil {
		log.WithField("kind", errs.KindOf(err)).Info("Create incident rejected")
		return nil, err
	}

	incident, err := s.store.Insert(ctx, &models.Incident{
		OwnerID:     ownerID,
		Type:        req.Type,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		logger.WithError(err, "incident_service").Error("Failed to create incident")
		return nil, err
	}

	log.WithField("incident_id", incident.ID).Info("Incident created")
	return incident, nil
}

func (s *IncidentService) Get(ctx context.Context, ownerID, id string) (*models.Incident, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errs.ErrMissingID
	}
	return s.store.FindOne(ctx, ownerID, id)
}

func (s *IncidentService) List(ctx context.Context, ownerID string, params query.Params) (*ListResult, error) {
	d := s.queries.Build(ownerID, params)

	incidents, total, err := s.store.FindPage(ctx, d)
	if err != nil {
		logger.WithError(err, "incident_service").Error("Failed to list incidents")
		return nil, err
	}
	if incidents == nil {
		incidents = []models.Incident{}
	}

	return &ListResult{
		Incidents:  incidents,
		Pagination: paginate(d.Page, d.Limit, total),
	}, nil
}

// paginate derives page metadata. An empty result has zero pages.
func paginate(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

func (s *IncidentService) UpdateStatus(ctx context.Context, ownerID, id, status string) (*models.Incident, error) {
	newStatus, err := validation.ValidateStatus(id, status)
	if err != nil {
		return nil, err
	}

	incident, err := s.store.FindOne(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	previous := incident.Status
	incident.Status = newStatus
	if err := s.store.Save(ctx, incident, store.FieldStatus); err != nil {
		return nil, err
	}

	logger.WithIncident(ownerID, id).WithField("from", previous).WithField("to", newStatus).Info("Incident status updated")
	return incident, nil
}

// Export returns every incident of the owner, newest first. Any format other
// than csv yields the record list for JSON encoding.
func (s *IncidentService) Export(ctx context.Context, ownerID, format string) (*ExportResult, error) {
	incidents, err := s.store.FindAllOrderedByCreatedAtDesc(ctx, ownerID)
	if err != nil {
		logger.WithError(err, "incident_service").Error("Failed to export incidents")
		return nil, err
	}

	if format == ExportFormatCSV {
		return &ExportResult{Format: ExportFormatCSV, Incidents: incidents, CSV: IncidentsCSV(incidents)}, nil
	}
	return &ExportResult{Format: ExportFormatJSON, Incidents: incidents}, nil
}

// Summarize stores a gateway summary for the incident. An incident that
// already has a summary is returned as is without calling the gateway. The
// record is only written after a successful gateway response.
func (s *IncidentService) Summarize(ctx context.Context, ownerID, id string) (*models.Incident, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errs.ErrMissingID
	}
	log := logger.WithIncident(ownerID, id)

	incident, err := s.store.FindOne(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if incident.HasSummary() {
		log.Debug("Incident already summarized")
		return incident, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.summarizeTimeout)
	defer cancel()

	started := time.Now()
	summary, err := s.summarizer.Summarize(callCtx, incident.Description, incident.Type)
	if err == nil && strings.TrimSpace(summary) == "" {
		err = errors.New("empty summary")
	}
	if err != nil {
		log.WithField("error", err.Error()).Warn("Summarization failed")
		return nil, errs.Wrap(errs.KindSummarizationFailed, errs.ErrSummarizationFailed.Message, err)
	}

	incident.Summary = &summary
	if err := s.store.Save(ctx, incident, store.FieldSummary); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			// A concurrent request stored its summary first; keep that one.
			log.Info("Summary already stored by a concurrent request")
			return s.store.FindOne(ctx, ownerID, id)
		}
		return nil, err
	}

	log.WithField("duration", time.Since(started).String()).Info("Incident summarized")
	return incident, nil
}
