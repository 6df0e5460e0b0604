package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dagapurva3/senior-care-incidents/internal/controllers"
	"github.com/dagapurva3/senior-care-incidents/internal/middleware"
	"github.com/dagapurva3/senior-care-incidents/internal/services"
	"github.com/dagapurva3/senior-care-incidents/internal/store"
)

// Dependencies are the collaborators the HTTP layer needs.
type Dependencies struct {
	Store           store.RecordStore
	IncidentService *services.IncidentService
	Verifier        middleware.TokenVerifier
	// LLM is nil when summarization is disabled.
	LLM                    *services.LLMService
	SummarizeRatePerSecond float64
	SummarizeBurst         int
	// AllowHistoryReset exposes DELETE /api/llm/api-calls. Development only.
	AllowHistoryReset bool
}

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	incidentController := controllers.NewIncidentController(deps.IncidentService)

	var summarizerHealth controllers.HealthChecker
	if deps.LLM != nil {
		summarizerHealth = deps.LLM
	}
	systemController := controllers.NewSystemController(deps.Store, summarizerHealth, deps.LLM)

	summarizeLimiter := middleware.NewOwnerRateLimiter(deps.SummarizeRatePerSecond, deps.SummarizeBurst, 10*time.Minute)

	r.GET("/health", systemController.Health)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(deps.Verifier))
	{
		incidents := api.Group("/incidents")
		{
			incidents.POST("", incidentController.CreateIncident)
			incidents.GET("", incidentController.ListIncidents)
			incidents.GET("/export", incidentController.ExportIncidents)
			incidents.GET("/:id", incidentController.GetIncident)
			incidents.PATCH("/:id/status", incidentController.UpdateIncidentStatus)
			incidents.POST("/:id/summarize", summarizeLimiter.Middleware(), incidentController.SummarizeIncident)
		}

		llm := api.Group("/llm")
		{
			llm.GET("/api-calls", systemController.GetLLMAPICalls)
			if deps.AllowHistoryReset {
				llm.DELETE("/api-calls", systemController.ClearLLMAPICalls)
			}
		}
	}
}
