// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// MockFeedbackRepository implements FeedbackRepository for testing
type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) Create(ctx context.Context, record *models.FeedbackRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockFeedbackRepository) Get(ctx context.Context, feedbackUID string) (*models.FeedbackRecord, error) {
	args := m.Called(ctx, feedbackUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedbackRecord), args.Error(1)
}

func (m *MockFeedbackRepository) Exists(ctx context.Context, feedbackUID string) (bool, error) {
	args := m.Called(ctx, feedbackUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFeedbackRepository) GetByRoomSID(ctx context.Context, roomSID string) (*models.FeedbackRecord, error) {
	args := m.Called(ctx, roomSID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedbackRecord), args.Error(1)
}

func (m *MockFeedbackRepository) LatestInitiatedByParticipant(ctx context.Context, participantIdentity string) (*models.FeedbackRecord, error) {
	args := m.Called(ctx, participantIdentity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedbackRecord), args.Error(1)
}

func (m *MockFeedbackRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]*models.FeedbackRecord, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FeedbackRecord), args.Error(1)
}

func (m *MockFeedbackRepository) ListByConversation(ctx context.Context, conversationUID string, status *models.FeedbackStatus) ([]*models.FeedbackRecord, error) {
	args := m.Called(ctx, conversationUID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FeedbackRecord), args.Error(1)
}

func (m *MockFeedbackRepository) ListRecent(ctx context.Context, limit int) ([]*models.FeedbackRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FeedbackRecord), args.Error(1)
}

func (m *MockFeedbackRepository) SetRoomSID(ctx context.Context, feedbackUID string, roomSID string) error {
	args := m.Called(ctx, feedbackUID, roomSID)
	return args.Error(0)
}

func (m *MockFeedbackRepository) UpdateTranscript(ctx context.Context, feedbackUID string, transcript []models.TranscriptTurn) error {
	args := m.Called(ctx, feedbackUID, transcript)
	return args.Error(0)
}

func (m *MockFeedbackRepository) ClaimForAnalysis(ctx context.Context, feedbackUID string) (bool, error) {
	args := m.Called(ctx, feedbackUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFeedbackRepository) ReleaseClaim(ctx context.Context, feedbackUID string) error {
	args := m.Called(ctx, feedbackUID)
	return args.Error(0)
}

func (m *MockFeedbackRepository) CompleteWithSummary(ctx context.Context, feedbackUID string, summary string) error {
	args := m.Called(ctx, feedbackUID, summary)
	return args.Error(0)
}
