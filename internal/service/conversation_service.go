// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/internal/logging"
	"github.com/hearsay-labs/feedback-service/pkg/constants"
	"github.com/hearsay-labs/feedback-service/pkg/utils"
)

// ConversationService manages feedback agent definitions and LLM-generated
// agent drafts.
type ConversationService struct {
	conversationRepository domain.ConversationRepository
	agentRepository        domain.GeneratedAgentRepository
	agentGenerator         domain.AgentGenerator
}

// NewConversationService creates a new ConversationService.
func NewConversationService(
	conversationRepository domain.ConversationRepository,
	agentRepository domain.GeneratedAgentRepository,
	agentGenerator domain.AgentGenerator,
) *ConversationService {
	return &ConversationService{
		conversationRepository: conversationRepository,
		agentRepository:        agentRepository,
		agentGenerator:         agentGenerator,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *ConversationService) ServiceReady() bool {
	return s.conversationRepository != nil &&
		s.agentRepository != nil &&
		s.agentGenerator != nil
}

func (s *ConversationService) validateCreateConversationPayload(conversation *models.Conversation) error {
	if conversation == nil {
		return domain.NewValidationError("conversation payload is required")
	}
	if conversation.UniqueName == "" {
		return domain.NewValidationError("unique name is required")
	}
	if utils.Slugify(conversation.UniqueName) != conversation.UniqueName {
		return domain.NewValidationError("unique name must be a lowercase slug")
	}
	if conversation.SystemPrompt == "" {
		return domain.NewValidationError("system prompt is required")
	}
	return nil
}

// CreateConversation stores a new agent definition. The unique name doubles
// as the LiveKit room name, so a taken name is a conflict.
func (s *ConversationService) CreateConversation(ctx context.Context, conversation *models.Conversation) (*models.Conversation, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	if err := s.validateCreateConversationPayload(conversation); err != nil {
		return nil, err
	}

	exists, err := s.conversationRepository.UniqueNameExists(ctx, conversation.UniqueName)
	if err != nil {
		slog.ErrorContext(ctx, "error checking unique name", logging.ErrKey, err)
		return nil, err
	}
	if exists {
		return nil, domain.NewConflictError("conversation unique name already exists")
	}

	conversation.UID = uuid.New().String()
	now := time.Now().UTC()
	conversation.CreatedAt = &now
	conversation.UpdatedAt = &now

	if err := s.conversationRepository.Create(ctx, conversation); err != nil {
		slog.ErrorContext(ctx, "error creating conversation", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "created conversation", "conversation_uid", conversation.UID, "unique_name", conversation.UniqueName)
	return conversation, nil
}

// GetConversation fetches an agent definition by UID.
func (s *ConversationService) GetConversation(ctx context.Context, conversationUID string) (*models.Conversation, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if conversationUID == "" {
		return nil, domain.NewValidationError("conversation UID is required")
	}

	conversation, err := s.conversationRepository.Get(ctx, conversationUID)
	if err != nil {
		slog.ErrorContext(ctx, "error getting conversation", logging.ErrKey, err)
		return nil, err
	}
	return conversation, nil
}

// GetConversationByUniqueName fetches an agent definition by its unique name.
func (s *ConversationService) GetConversationByUniqueName(ctx context.Context, uniqueName string) (*models.Conversation, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if uniqueName == "" {
		return nil, domain.NewValidationError("unique name is required")
	}

	conversation, err := s.conversationRepository.GetByUniqueName(ctx, uniqueName)
	if err != nil {
		slog.ErrorContext(ctx, "error getting conversation by unique name", logging.ErrKey, err)
		return nil, err
	}
	return conversation, nil
}

// ListConversations returns the most recently created agent definitions.
func (s *ConversationService) ListConversations(ctx context.Context) ([]*models.Conversation, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	conversations, err := s.conversationRepository.ListRecent(ctx, constants.DefaultListLimit)
	if err != nil {
		slog.ErrorContext(ctx, "error listing conversations", logging.ErrKey, err)
		return nil, err
	}
	return conversations, nil
}

// GenerateAgent drafts an agent definition from a free-form user prompt and
// stores it under its slug for later retrieval.
func (s *ConversationService) GenerateAgent(ctx context.Context, userPrompt string) (*models.GeneratedAgent, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if userPrompt == "" {
		return nil, domain.NewValidationError("prompt is required")
	}

	agent, err := s.agentGenerator.GenerateAgent(ctx, userPrompt)
	if err != nil {
		slog.ErrorContext(ctx, "error generating agent", logging.ErrKey, err)
		return nil, err
	}

	now := time.Now().UTC()
	agent.CreatedAt = now
	agent.ExpiresAt = now.Add(constants.GeneratedAgentTTL)

	if err := s.agentRepository.Put(ctx, agent); err != nil {
		slog.ErrorContext(ctx, "error storing generated agent", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "generated agent draft", "slug", agent.Slug)
	return agent, nil
}

// GetGeneratedAgent fetches a generated agent draft by slug. Expired drafts
// are lazily deleted and reported as not found.
func (s *ConversationService) GetGeneratedAgent(ctx context.Context, slug string) (*models.GeneratedAgent, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if slug == "" {
		return nil, domain.NewValidationError("slug is required")
	}

	agent, err := s.agentRepository.Get(ctx, slug)
	if err != nil {
		slog.ErrorContext(ctx, "error getting generated agent", logging.ErrKey, err)
		return nil, err
	}

	if agent.IsExpired(time.Now().UTC()) {
		if err := s.agentRepository.Delete(ctx, slug); err != nil {
			slog.WarnContext(ctx, "error deleting expired generated agent", logging.ErrKey, err)
		}
		return nil, domain.NewNotFoundError("generated agent has expired")
	}

	return agent, nil
}
