package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dagapurva3/senior-care-incidents/internal/errs"
	"github.com/dagapurva3/senior-care-incidents/internal/logger"
	"github.com/dagapurva3/senior-care-incidents/internal/middleware"
	"github.com/dagapurva3/senior-care-incidents/internal/query"
	"github.com/dagapurva3/senior-care-incidents/internal/services"
	"github.com/dagapurva3/senior-care-incidents/internal/validation"
)

type IncidentController struct {
	incidentService *services.IncidentService
}

func NewIncidentController(incidentService *services.IncidentService) *IncidentController {
	return &IncidentController{
		incidentService: incidentService,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CreateIncident files a new incident for the caller
func (ic *IncidentController) CreateIncident(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	var input validation.CreateInput
	if !bindBody(c, &input) {
		return
	}

	incident, err := ic.incidentService.Create(c.Request.Context(), ownerID, input)
	if err != nil {
		respondError(c, err, "Failed to create incident")
		return
	}

	c.JSON(http.StatusCreated, incident)
}

// ListIncidents returns one page of the caller's incidents
func (ic *IncidentController) ListIncidents(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	result, err := ic.incidentService.List(c.Request.Context(), ownerID, query.FromValues(c.Request.URL.Query()))
	if err != nil {
		respondError(c, err, "Failed to retrieve incidents")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (ic *IncidentController) GetIncident(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	incident, err := ic.incidentService.Get(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve incident")
		return
	}

	c.JSON(http.StatusOK, incident)
}

// UpdateIncidentStatus moves an incident to another workflow status
func (ic *IncidentController) UpdateIncidentStatus(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !bindBody(c, &req) {
		return
	}

	incident, err := ic.incidentService.UpdateStatus(c.Request.Context(), ownerID, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, "Failed to update incident status")
		return
	}

	c.JSON(http.StatusOK, incident)
}

// ExportIncidents returns all of the caller's incidents as CSV or JSON
func (ic *IncidentController) ExportIncidents(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", services.ExportFormatJSON)
	result, err := ic.incidentService.Export(c.Request.Context(), ownerID, format)
	if err != nil {
		respondError(c, err, "Failed to export incidents")
		return
	}

	if result.Format == services.ExportFormatCSV {
		c.Header("Content-Disposition", `attachment; filename="incidents.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(result.CSV))
		return
	}

	c.JSON(http.StatusOK, result.Incidents)
}

// SummarizeIncident attaches an AI summary to an incident once
func (ic *IncidentController) SummarizeIncident(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	incident, err := ic.incidentService.Summarize(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to summarize incident")
		return
	}

	c.JSON(http.StatusOK, incident)
}

func requireOwner(c *gin.Context) (string, bool) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return ownerID, true
}

// respondError maps the error taxonomy onto HTTP status codes. Unclassified
// errors never leak their message.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.WithError(err, "incident_controller").Error(fallback)
	}
	c.JSON(status, gin.H{"error": errs.Message(err, fallback)})
}

func statusFor(err error) int {
	if errs.IsValidation(err) {
		return http.StatusBadRequest
	}
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindSummarizationFailed, errs.KindSummarizationUnavailable:
		return http.StatusBadGateway
	case errs.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// bindBody decodes a JSON body into dst. An empty body leaves dst zero so the
// payload rules report what is missing.
func bindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}
