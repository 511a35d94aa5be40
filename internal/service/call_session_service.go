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
)

// CallSessionService starts feedback call sessions: it creates the pending
// feedback record and mints the LiveKit join token the client connects with.
type CallSessionService struct {
	conversationRepository domain.ConversationRepository
	feedbackRepository     domain.FeedbackRepository
	tokenProvider          domain.CallTokenProvider
	serverURL              string
}

// NewCallSessionService creates a new CallSessionService.
func NewCallSessionService(
	conversationRepository domain.ConversationRepository,
	feedbackRepository domain.FeedbackRepository,
	tokenProvider domain.CallTokenProvider,
	serverURL string,
) *CallSessionService {
	return &CallSessionService{
		conversationRepository: conversationRepository,
		feedbackRepository:     feedbackRepository,
		tokenProvider:          tokenProvider,
		serverURL:              serverURL,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *CallSessionService) ServiceReady() bool {
	return s.conversationRepository != nil &&
		s.feedbackRepository != nil &&
		s.tokenProvider != nil &&
		s.serverURL != ""
}

// StartCall prepares a feedback call against the named conversation. The
// generated participant identity is the correlation key the webhook events
// later resolve, so it must be unique per session.
func (s *CallSessionService) StartCall(ctx context.Context, uniqueName, participantName string) (*models.ConnectionDetails, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if uniqueName == "" {
		return nil, domain.NewValidationError("conversation unique name is required")
	}

	conversation, err := s.conversationRepository.GetByUniqueName(ctx, uniqueName)
	if err != nil {
		slog.ErrorContext(ctx, "error getting conversation for call", logging.ErrKey, err, "unique_name", uniqueName)
		return nil, err
	}

	identity := constants.ParticipantIdentityPrefix + uuid.New().String()
	if participantName == "" {
		participantName = "Guest"
	}

	now := time.Now().UTC()
	record := &models.FeedbackRecord{
		UID:             uuid.New().String(),
		ConversationUID: conversation.UID,
		Status:          models.FeedbackStatusInitiated,
		Session: models.SessionMetadata{
			ParticipantIdentity: identity,
		},
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	if err := s.feedbackRepository.Create(ctx, record); err != nil {
		slog.ErrorContext(ctx, "error creating feedback record", logging.ErrKey, err)
		return nil, err
	}

	token, err := s.tokenProvider.MintJoinToken(identity, participantName, conversation.UniqueName, constants.ParticipantTokenTTL)
	if err != nil {
		slog.ErrorContext(ctx, "error minting join token", logging.ErrKey, err)
		return nil, domain.NewInternalError("failed to mint join token", err)
	}

	slog.InfoContext(ctx, "started feedback call session",
		"feedback_uid", record.UID,
		"conversation_uid", conversation.UID,
		"participant", identity,
	)

	return &models.ConnectionDetails{
		ServerURL:        s.serverURL,
		RoomName:         conversation.UniqueName,
		ParticipantName:  participantName,
		ParticipantToken: token,
		FeedbackUID:      record.UID,
	}, nil
}
