// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// MockTranscriptEntryRepository implements TranscriptEntryRepository for testing
type MockTranscriptEntryRepository struct {
	mock.Mock
}

func (m *MockTranscriptEntryRepository) Create(ctx context.Context, entry *models.TranscriptEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTranscriptEntryRepository) ListByFeedback(ctx context.Context, feedbackUID string) ([]*models.TranscriptEntry, error) {
	args := m.Called(ctx, feedbackUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TranscriptEntry), args.Error(1)
}

func (m *MockTranscriptEntryRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]*models.TranscriptEntry, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TranscriptEntry), args.Error(1)
}
