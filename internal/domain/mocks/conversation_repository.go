// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// MockConversationRepository implements ConversationRepository for testing
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

func (m *MockConversationRepository) Get(ctx context.Context, conversationUID string) (*models.Conversation, error) {
	args := m.Called(ctx, conversationUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockConversationRepository) GetByUniqueName(ctx context.Context, uniqueName string) (*models.Conversation, error) {
	args := m.Called(ctx, uniqueName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockConversationRepository) UniqueNameExists(ctx context.Context, uniqueName string) (bool, error) {
	args := m.Called(ctx, uniqueName)
	return args.Bool(0), args.Error(1)
}

func (m *MockConversationRepository) ListRecent(ctx context.Context, limit int) ([]*models.Conversation, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Conversation), args.Error(1)
}

// MockGeneratedAgentRepository implements GeneratedAgentRepository for testing
type MockGeneratedAgentRepository struct {
	mock.Mock
}

func (m *MockGeneratedAgentRepository) Put(ctx context.Context, agent *models.GeneratedAgent) error {
	args := m.Called(ctx, agent)
	return args.Error(0)
}

func (m *MockGeneratedAgentRepository) Get(ctx context.Context, slug string) (*models.GeneratedAgent, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GeneratedAgent), args.Error(1)
}

func (m *MockGeneratedAgentRepository) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}
