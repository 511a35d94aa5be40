// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// MockTranscriptAnalyzer implements TranscriptAnalyzer for testing
type MockTranscriptAnalyzer struct {
	mock.Mock
}

func (m *MockTranscriptAnalyzer) Analyze(ctx context.Context, transcript string) (*models.Analysis, error) {
	args := m.Called(ctx, transcript)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Analysis), args.Error(1)
}

func (m *MockTranscriptAnalyzer) Model() string {
	args := m.Called()
	return args.String(0)
}

// MockFeedbackSummarizer implements FeedbackSummarizer for testing
type MockFeedbackSummarizer struct {
	mock.Mock
}

func (m *MockFeedbackSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	args := m.Called(ctx, transcript)
	return args.String(0), args.Error(1)
}

// MockAgentGenerator implements AgentGenerator for testing
type MockAgentGenerator struct {
	mock.Mock
}

func (m *MockAgentGenerator) GenerateAgent(ctx context.Context, userPrompt string) (*models.GeneratedAgent, error) {
	args := m.Called(ctx, userPrompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GeneratedAgent), args.Error(1)
}

// MockCallTokenProvider implements CallTokenProvider for testing
type MockCallTokenProvider struct {
	mock.Mock
}

func (m *MockCallTokenProvider) MintJoinToken(identity, displayName, roomName string, ttl time.Duration) (string, error) {
	args := m.Called(identity, displayName, roomName, ttl)
	return args.String(0), args.Error(1)
}
