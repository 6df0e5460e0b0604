package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dagapurva3/senior-care-incidents/internal/services"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

type SystemController struct {
	store      Pinger
	summarizer HealthChecker
	llm        *services.LLMService
}

// NewSystemController wires health and LLM diagnostics. llm may be nil when
// summarization is disabled.
func NewSystemController(store Pinger, summarizer HealthChecker, llm *services.LLMService) *SystemController {
	return &SystemController{store: store, summarizer: summarizer, llm: llm}
}

// Health reports database connectivity and summarizer reachability. Only the
// database decides the overall status; the summarizer is optional.
func (sc *SystemController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbStatus := gin.H{"status": "ok"}
	overallStatus := "ok"
	statusCode := http.StatusOK
	if err := sc.store.Ping(ctx); err != nil {
		dbStatus = gin.H{"status": "error", "error": err.Error()}
		overallStatus = "error"
		statusCode = http.StatusServiceUnavailable
	}

	llmStatus := gin.H{"status": "ok"}
	if sc.summarizer == nil {
		llmStatus = gin.H{"status": "disabled"}
	} else if err := sc.summarizer.CheckHealth(ctx); err != nil {
		llmStatus = gin.H{"status": "error", "error": err.Error()}
	}

	c.JSON(statusCode, gin.H{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
		"services": gin.H{
			"database":   dbStatus,
			"summarizer": llmStatus,
		},
	})
}

// GetLLMAPICalls returns recent summarizer calls
func (sc *SystemController) GetLLMAPICalls(c *gin.Context) {
	if sc.llm == nil {
		c.JSON(http.StatusOK, gin.H{"calls": []services.LLMAPICall{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": sc.llm.GetAPICalls()})
}

// ClearLLMAPICalls drops the recorded summarizer calls
func (sc *SystemController) ClearLLMAPICalls(c *gin.Context) {
	if sc.llm != nil {
		sc.llm.ClearAPICalls()
	}
	c.JSON(http.StatusOK, gin.H{"message": "LLM API call history cleared"})
}
