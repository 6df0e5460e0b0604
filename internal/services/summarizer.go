package services

import (
	"time"

	"github.com/dagapurva3/senior-care-incidents/internal/config"
)

// NewSummarizer builds the gateway selected by SUMMARIZER_PROVIDER. The
// *LLMService is nil when summarization is disabled.
func NewSummarizer(cfg config.SummarizerConfig) (Summarizer, *LLMService) {
	if cfg.Provider == ProviderNone {
		return DisabledSummarizer{}, nil
	}
	llm := NewLLMService(LLMConfig{
		Provider:    cfg.Provider,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
	return llm, llm
}
