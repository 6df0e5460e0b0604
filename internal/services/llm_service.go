package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dagapurva3/senior-care-incidents/internal/errs"
	"github.com/dagapurva3/senior-care-incidents/internal/logger"
	"github.com/dagapurva3/senior-care-incidents/internal/models"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderNone   = "none"

	maxTrackedCalls = 100
)

// Summarizer produces a short text summary of an incident description.
type Summarizer interface {
	Summarize(ctx context.Context, description string, incidentType models.IncidentType) (string, error)
}

type LLMConfig struct {
	Provider    string
	BaseURL     string
	Model       string
	APIKey      string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

type LLMService struct {
	provider    string
	baseURL     string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
	client      *http.Client
	apiCalls    []LLMAPICall
	callMutex   sync.RWMutex
}

type OpenAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []OpenAIChatMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature"`
}

type OpenAIChatResponse struct {
	Choices []struct {
		Message OpenAIChatMessage `json:"message"`
	} `json:"choices"`
}

type OllamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type OllamaGenerateResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"created_at"`
}

// LLMAPICall records one upstream call. Prompts are not kept since they carry
// resident details; only their size is.
type LLMAPICall struct {
	ID             string        `json:"id"`
	Timestamp      time.Time     `json:"timestamp"`
	Provider       string        `json:"provider"`
	Endpoint       string        `json:"endpoint"`
	Model          string        `json:"model"`
	CallType       string        `json:"callType"`
	PromptLength   int           `json:"promptLength"`
	ResponseLength int           `json:"responseLength"`
	Status         int           `json:"status"`
	Duration       time.Duration `json:"duration"`
	Error          string        `json:"error,omitempty"`
}

func NewLLMService(cfg LLMConfig) *LLMService {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	model := cfg.Model
	switch provider {
	case ProviderOllama:
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if model == "" {
			model = "llama3"
		}
	default:
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		if model == "" {
			model = "gpt-3.5-turbo"
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 200
	}

	return &LLMService{
		provider:    provider,
		baseURL:     baseURL,
		model:       model,
		apiKey:      cfg.APIKey,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
		apiCalls:    make([]LLMAPICall, 0),
	}
}

func (ls *LLMService) Provider() string { return ls.provider }
func (ls *LLMService) Model() string    { return ls.model }

// GetAPICalls returns all tracked LLM API calls
func (ls *LLMService) GetAPICalls() []LLMAPICall {
	ls.callMutex.RLock()
	defer ls.callMutex.RUnlock()

	calls := make([]LLMAPICall, len(ls.apiCalls))
	copy(calls, ls.apiCalls)
	return calls
}

// ClearAPICalls clears the API call history
func (ls *LLMService) ClearAPICalls() {
	ls.callMutex.Lock()
	defer ls.callMutex.Unlock()
	ls.apiCalls = make([]LLMAPICall, 0)
}

func (ls *LLMService) addAPICall(call LLMAPICall) {
	ls.callMutex.Lock()
	defer ls.callMutex.Unlock()

	if len(ls.apiCalls) >= maxTrackedCalls {
		ls.apiCalls = ls.apiCalls[1:]
	}
	ls.apiCalls = append(ls.apiCalls, call)
}

func (ls *LLMService) trackAPICall(endpoint, callType string, promptLength int, status int, duration time.Duration, response string, err error) {
	call := LLMAPICall{
		ID:             fmt.Sprintf("llm_%d", time.Now().UnixNano()),
		Timestamp:      time.Now(),
		Provider:       ls.provider,
		Endpoint:       endpoint,
		Model:          ls.model,
		CallType:       callType,
		PromptLength:   promptLength,
		ResponseLength: len(response),
		Status:         status,
		Duration:       duration,
	}
	if err != nil {
		call.Error = err.Error()
	}
	ls.addAPICall(call)
}

// Summarize asks the configured provider for a summary. Every failure is
// reported as errs.KindSummarizationUnavailable.
func (ls *LLMService) Summarize(ctx context.Context, description string, incidentType models.IncidentType) (string, error) {
	log := logger.WithSummarizer(ls.provider, ls.model)

	var (
		summary string
		err     error
	)
	switch ls.provider {
	case ProviderOllama:
		summary, err = ls.callOllama(ctx, fmt.Sprintf(SUMMARY_COMBINED_PROMPT, incidentType, description))
	default:
		summary, err = ls.callOpenAI(ctx, incidentType, description)
	}
	if err != nil {
		log.WithField("error", err.Error()).Warn("Summarization request failed")
		return "", errs.Wrap(errs.KindSummarizationUnavailable, "summarization unavailable", err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		log.Warn("Summarization returned empty content")
		return "", errs.Wrap(errs.KindSummarizationUnavailable, "summarization unavailable", errors.New("empty summary"))
	}
	return summary, nil
}

func (ls *LLMService) callOpenAI(ctx context.Context, incidentType models.IncidentType, description string) (string, error) {
	userPrompt := fmt.Sprintf(SUMMARY_USER_PROMPT, incidentType, description)
	request := OpenAIChatRequest{
		Model: ls.model,
		Messages: []OpenAIChatMessage{
			{Role: "system", Content: SUMMARY_SYSTEM_PROMPT},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   ls.maxTokens,
		Temperature: ls.temperature,
	}

	var resp OpenAIChatResponse
	if err := ls.postJSON(ctx, "/chat/completions", len(userPrompt), request, &resp, func() string {
		if len(resp.Choices) == 0 {
			return ""
		}
		return resp.Choices[0].Message.Content
	}); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (ls *LLMService) callOllama(ctx context.Context, prompt string) (string, error) {
	request := OllamaGenerateRequest{
		Model:  ls.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": ls.temperature,
			"num_predict": ls.maxTokens,
		},
	}

	var resp OllamaGenerateResponse
	if err := ls.postJSON(ctx, "/api/generate", len(prompt), request, &resp, func() string {
		return resp.Response
	}); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// postJSON sends body to endpoint and decodes the reply into out. content
// extracts the generated text for call tracking once out is decoded.
func (ls *LLMService) postJSON(ctx context.Context, endpoint string, promptLength int, body, out interface{}, content func() string) error {
	startTime := time.Now()

	jsonData, err := json.Marshal(body)
	if err != nil {
		err = fmt.Errorf("failed to marshal request: %w", err)
		ls.trackAPICall(endpoint, "summarize", promptLength, 0, time.Since(startTime), "", err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ls.baseURL+endpoint, bytes.NewReader(jsonData))
	if err != nil {
		err = fmt.Errorf("failed to create request: %w", err)
		ls.trackAPICall(endpoint, "summarize", promptLength, 0, time.Since(startTime), "", err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if ls.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+ls.apiKey)
	}

	resp, err := ls.client.Do(req)
	elapsed := time.Since(startTime)
	if err != nil {
		err = fmt.Errorf("HTTP request failed: %w", err)
		ls.trackAPICall(endpoint, "summarize", promptLength, 0, elapsed, "", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err = fmt.Errorf("%s API returned status %d, body: %s", ls.provider, resp.StatusCode, string(respBody))
		ls.trackAPICall(endpoint, "summarize", promptLength, resp.StatusCode, elapsed, "", err)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		err = fmt.Errorf("failed to decode %s response: %w", ls.provider, err)
		ls.trackAPICall(endpoint, "summarize", promptLength, resp.StatusCode, elapsed, "", err)
		return err
	}

	ls.trackAPICall(endpoint, "summarize", promptLength, resp.StatusCode, elapsed, content(), nil)
	return nil
}

// CheckHealth probes the provider's model listing endpoint.
func (ls *LLMService) CheckHealth(ctx context.Context) error {
	endpoint := "/models"
	if ls.provider == ProviderOllama {
		endpoint = "/api/tags"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ls.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}
	if ls.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+ls.apiKey)
	}

	resp, err := ls.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s not reachable: %w", ls.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s health check returned status %d", ls.provider, resp.StatusCode)
	}
	return nil
}

// DisabledSummarizer is used when SUMMARIZER_PROVIDER=none.
type DisabledSummarizer struct{}

func (DisabledSummarizer) Summarize(ctx context.Context, description string, incidentType models.IncidentType) (string, error) {
	return "", errs.Wrap(errs.KindSummarizationUnavailable, "summarization unavailable", errors.New("summarization is disabled"))
}

func (DisabledSummarizer) CheckHealth(ctx context.Context) error {
	return errors.New("summarization is disabled")
}
