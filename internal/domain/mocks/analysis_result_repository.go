// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// MockAnalysisResultRepository implements AnalysisResultRepository for testing
type MockAnalysisResultRepository struct {
	mock.Mock
}

func (m *MockAnalysisResultRepository) Create(ctx context.Context, result *models.AnalysisResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockAnalysisResultRepository) LatestByFeedback(ctx context.Context, feedbackUID string) (*models.AnalysisResult, error) {
	args := m.Called(ctx, feedbackUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisResultRepository) ListByFeedback(ctx context.Context, feedbackUID string) ([]*models.AnalysisResult, error) {
	args := m.Called(ctx, feedbackUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AnalysisResult), args.Error(1)
}
