// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

// Package gemini is a client for the Gemini generateContent REST API used
// for transcript analysis, summaries, and agent generation.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/internal/logging"
	"github.com/hearsay-labs/feedback-service/pkg/utils"
)

const (
	// BaseURL is the base URL for the Gemini API
	BaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is the model used when none is configured
	DefaultModel = "gemini-2.0-flash"
	// DefaultClientTimeout is the default HTTP client timeout for Gemini requests
	DefaultClientTimeout = 60 * time.Second
)

// ClientAPI defines the interface for Gemini operations, allowing the client
// to be mocked in tests.
type ClientAPI interface {
	domain.TranscriptAnalyzer
	domain.FeedbackSummarizer
	domain.AgentGenerator
}

// Config holds the configuration for the Gemini client
type Config struct {
	APIKey string
	Model  string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Ensure that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new Gemini client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Model identifies the configured LLM for provenance on stored results.
func (c *Client) Model() string {
	return c.config.Model
}

// generateContent request/response wire types.
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generate sends a single-turn prompt and returns the first candidate text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	requestBody, err := json.Marshal(generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", domain.NewInternalError("failed to marshal Gemini request", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.config.BaseURL, c.config.Model, c.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", domain.NewInternalError("failed to build Gemini request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "Gemini request failed", logging.ErrKey, err)
		return "", domain.NewUnavailableError("LLM request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewInternalError("failed to read Gemini response", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.ErrorContext(ctx, "Gemini returned an error status",
			"status_code", resp.StatusCode, "body", string(body))
		return "", domain.NewUnavailableError(fmt.Sprintf("LLM returned status %d", resp.StatusCode))
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", domain.NewInternalError("failed to decode Gemini response", err)
	}
	if decoded.Error != nil {
		return "", domain.NewUnavailableError("LLM error: " + decoded.Error.Message)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", domain.NewInternalError("Gemini response contained no candidates")
	}

	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

// analysisPrompt asks for strict JSON so the response can be parsed directly.
const analysisPrompt = `Analyze the following customer feedback conversation transcript.
Respond with only a JSON object, no prose, with exactly these fields:
{"summary": "...", "sentiment": "positive|neutral|negative", "topics": ["..."], "insights": ["..."], "satisfaction": "high|medium|low"}

Transcript:
%s`

// Analyze runs the general feedback analysis over a formatted transcript.
// Model output that cannot be parsed as JSON degrades to a neutral fallback
// analysis rather than an error, since the transcript was still consumed.
func (c *Client) Analyze(ctx context.Context, transcript string) (*models.Analysis, error) {
	text, err := c.generate(ctx, fmt.Sprintf(analysisPrompt, transcript))
	if err != nil {
		return nil, err
	}

	analysis, ok := parseAnalysis(text)
	if !ok {
		slog.WarnContext(ctx, "Gemini analysis output was not parseable JSON, using fallback")
		return fallbackAnalysis(text), nil
	}
	return analysis, nil
}

// parseAnalysis extracts the first JSON object from the model output. Models
// frequently wrap JSON in code fences or prose, so everything outside the
// outermost braces is ignored.
func parseAnalysis(text string) (*models.Analysis, bool) {
	jsonText, ok := extractJSONObject(text)
	if !ok {
		return nil, false
	}

	var analysis models.Analysis
	if err := json.Unmarshal([]byte(jsonText), &analysis); err != nil {
		return nil, false
	}
	if analysis.Summary == "" && analysis.Sentiment == "" {
		return nil, false
	}
	return &analysis, true
}

func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// fallbackAnalysis is stored when the model refuses to produce valid JSON.
func fallbackAnalysis(text string) *models.Analysis {
	summary := strings.TrimSpace(text)
	if runes := []rune(summary); len(runes) > 200 {
		summary = string(runes[:200])
	}
	if summary == "" {
		summary = "Analysis completed"
	}
	return &models.Analysis{
		Summary:      summary,
		Sentiment:    "neutral",
		Topics:       []string{"general feedback"},
		Insights:     []string{"Analysis output could not be structured"},
		Satisfaction: "medium",
	}
}

const summaryPrompt = `Summarize the key feedback from this conversation in 2-3 sentences.
Focus on what the customer liked, disliked, and suggested.

Transcript:
%s`

// Summarize produces a short prose summary of a transcript.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	text, err := c.generate(ctx, fmt.Sprintf(summaryPrompt, transcript))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

const agentPrompt = `Design a voice feedback agent for the following product or business.
Respond with only a JSON object, no prose, with exactly these fields:
{"name": "short agent name", "system_prompt": "instructions for the voice agent", "questions": ["question 1", "question 2", "question 3"]}

Product description:
%s`

// agentDefinition is the wire shape the agent prompt asks for.
type agentDefinition struct {
	Name         string   `json:"name"`
	SystemPrompt string   `json:"system_prompt"`
	Questions    []string `json:"questions"`
}

// GenerateAgent drafts an agent definition from a free-form user prompt. The
// caller owns persistence and expiry.
func (c *Client) GenerateAgent(ctx context.Context, userPrompt string) (*models.GeneratedAgent, error) {
	text, err := c.generate(ctx, fmt.Sprintf(agentPrompt, userPrompt))
	if err != nil {
		return nil, err
	}

	jsonText, ok := extractJSONObject(text)
	if !ok {
		return nil, domain.NewInternalError("LLM agent output contained no JSON object")
	}

	var definition agentDefinition
	if err := json.Unmarshal([]byte(jsonText), &definition); err != nil {
		return nil, domain.NewInternalError("failed to parse LLM agent output", err)
	}
	if definition.SystemPrompt == "" {
		return nil, domain.NewInternalError("LLM agent output missing system prompt")
	}

	slug := utils.Slugify(definition.Name)
	if slug == "" {
		slug = utils.Slugify(userPrompt)
	}

	return &models.GeneratedAgent{
		Slug:         slug,
		SystemPrompt: definition.SystemPrompt,
		Questions:    definition.Questions,
	}, nil
}
