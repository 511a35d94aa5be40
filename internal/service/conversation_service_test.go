// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/mocks"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/pkg/constants"
)

func setupConversationServiceForTesting() (*ConversationService, *mocks.MockConversationRepository, *mocks.MockGeneratedAgentRepository, *mocks.MockAgentGenerator) {
	mockConversationRepo := new(mocks.MockConversationRepository)
	mockAgentRepo := new(mocks.MockGeneratedAgentRepository)
	mockGenerator := new(mocks.MockAgentGenerator)

	service := NewConversationService(mockConversationRepo, mockAgentRepo, mockGenerator)
	return service, mockConversationRepo, mockAgentRepo, mockGenerator
}

func TestConversationService_CreateConversation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		payload     *models.Conversation
		setupMocks  func(*mocks.MockConversationRepository)
		wantErr     bool
		wantErrType domain.ErrorType
		validate    func(*testing.T, *models.Conversation)
	}{
		{
			name: "successful creation",
			payload: &models.Conversation{
				UniqueName:   "coffee-shop-feedback",
				SystemPrompt: "You gather feedback about a coffee shop visit.",
				Questions:    []string{"How was the service?"},
			},
			setupMocks: func(repo *mocks.MockConversationRepository) {
				repo.On("UniqueNameExists", mock.Anything, "coffee-shop-feedback").Return(false, nil)
				repo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			validate: func(t *testing.T, conversation *models.Conversation) {
				assert.NotEmpty(t, conversation.UID)
				assert.NotNil(t, conversation.CreatedAt)
				assert.NotNil(t, conversation.UpdatedAt)
			},
		},
		{
			name: "taken unique name is a conflict",
			payload: &models.Conversation{
				UniqueName:   "coffee-shop-feedback",
				SystemPrompt: "prompt",
			},
			setupMocks: func(repo *mocks.MockConversationRepository) {
				repo.On("UniqueNameExists", mock.Anything, "coffee-shop-feedback").Return(true, nil)
			},
			wantErr:     true,
			wantErrType: domain.ErrorTypeConflict,
		},
		{
			name: "unique name must be a slug",
			payload: &models.Conversation{
				UniqueName:   "Coffee Shop!",
				SystemPrompt: "prompt",
			},
			setupMocks:  func(repo *mocks.MockConversationRepository) {},
			wantErr:     true,
			wantErrType: domain.ErrorTypeValidation,
		},
		{
			name: "missing system prompt",
			payload: &models.Conversation{
				UniqueName: "coffee-shop-feedback",
			},
			setupMocks:  func(repo *mocks.MockConversationRepository) {},
			wantErr:     true,
			wantErrType: domain.ErrorTypeValidation,
		},
		{
			name:        "nil payload",
			payload:     nil,
			setupMocks:  func(repo *mocks.MockConversationRepository) {},
			wantErr:     true,
			wantErrType: domain.ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockConversationRepo, _, _ := setupConversationServiceForTesting()
			tt.setupMocks(mockConversationRepo)

			result, err := service.CreateConversation(ctx, tt.payload)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantErrType, domain.GetErrorType(err))
			} else {
				assert.NoError(t, err)
				if tt.validate != nil {
					tt.validate(t, result)
				}
			}
			mockConversationRepo.AssertExpectations(t)
		})
	}
}

func TestConversationService_GenerateAgent(t *testing.T) {
	ctx := context.Background()
	service, _, mockAgentRepo, mockGenerator := setupConversationServiceForTesting()

	draft := &models.GeneratedAgent{
		Slug:         "coffee-shop-feedback",
		SystemPrompt: "You gather feedback about a coffee shop visit.",
		Questions:    []string{"How was the service?"},
	}

	mockGenerator.On("GenerateAgent", mock.Anything, "an agent for my coffee shop").Return(draft, nil)
	mockAgentRepo.On("Put", mock.Anything, mock.MatchedBy(func(agent *models.GeneratedAgent) bool {
		return agent.Slug == "coffee-shop-feedback" &&
			!agent.CreatedAt.IsZero() &&
			agent.ExpiresAt.Sub(agent.CreatedAt) == constants.GeneratedAgentTTL
	})).Return(nil)

	agent, err := service.GenerateAgent(ctx, "an agent for my coffee shop")

	assert.NoError(t, err)
	assert.Equal(t, "coffee-shop-feedback", agent.Slug)
	mockAgentRepo.AssertExpectations(t)
	mockGenerator.AssertExpectations(t)
}

func TestConversationService_GenerateAgent_EmptyPrompt(t *testing.T) {
	ctx := context.Background()
	service, _, _, mockGenerator := setupConversationServiceForTesting()

	_, err := service.GenerateAgent(ctx, "")

	assert.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	mockGenerator.AssertNotCalled(t, "GenerateAgent", mock.Anything, mock.Anything)
}

func TestConversationService_GetGeneratedAgent(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a live draft", func(t *testing.T) {
		service, _, mockAgentRepo, _ := setupConversationServiceForTesting()
		now := time.Now().UTC()
		mockAgentRepo.On("Get", mock.Anything, "coffee-shop-feedback").Return(&models.GeneratedAgent{
			Slug:      "coffee-shop-feedback",
			CreatedAt: now,
			ExpiresAt: now.Add(time.Hour),
		}, nil)

		agent, err := service.GetGeneratedAgent(ctx, "coffee-shop-feedback")

		assert.NoError(t, err)
		assert.Equal(t, "coffee-shop-feedback", agent.Slug)
	})

	t.Run("expired draft is deleted and reported missing", func(t *testing.T) {
		service, _, mockAgentRepo, _ := setupConversationServiceForTesting()
		now := time.Now().UTC()
		mockAgentRepo.On("Get", mock.Anything, "stale-agent").Return(&models.GeneratedAgent{
			Slug:      "stale-agent",
			CreatedAt: now.Add(-48 * time.Hour),
			ExpiresAt: now.Add(-24 * time.Hour),
		}, nil)
		mockAgentRepo.On("Delete", mock.Anything, "stale-agent").Return(nil)

		_, err := service.GetGeneratedAgent(ctx, "stale-agent")

		assert.Error(t, err)
		assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
		mockAgentRepo.AssertExpectations(t)
	})
}

func TestConversationService_ListConversations(t *testing.T) {
	ctx := context.Background()
	service, mockConversationRepo, _, _ := setupConversationServiceForTesting()

	conversations := []*models.Conversation{
		{UID: "c1", UniqueName: "coffee-shop-feedback"},
		{UID: "c2", UniqueName: "gym-feedback"},
	}
	mockConversationRepo.On("ListRecent", mock.Anything, constants.DefaultListLimit).Return(conversations, nil)

	result, err := service.ListConversations(ctx)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
}
