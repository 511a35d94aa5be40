// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// TranscriptAnalyzer produces a structured analysis of a call transcript.
type TranscriptAnalyzer interface {
	Analyze(ctx context.Context, transcript string) (*models.Analysis, error)
	// Model identifies the underlying LLM for provenance on stored results.
	Model() string
}

// FeedbackSummarizer produces a short prose summary of a call transcript.
type FeedbackSummarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// AgentGenerator drafts a feedback agent definition from a free-form user
// prompt.
type AgentGenerator interface {
	GenerateAgent(ctx context.Context, userPrompt string) (*models.GeneratedAgent, error)
}
