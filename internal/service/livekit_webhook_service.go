// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/internal/logging"
)

// LiveKitWebhookService fans verified LiveKit webhook events out to NATS so
// the webhook HTTP response is never blocked on reconciliation work.
type LiveKitWebhookService struct {
	messageSender domain.WebhookEventSender
}

// NewLiveKitWebhookService creates a new LiveKitWebhookService.
func NewLiveKitWebhookService(messageSender domain.WebhookEventSender) *LiveKitWebhookService {
	return &LiveKitWebhookService{
		messageSender: messageSender,
	}
}

// ServiceReady checks if the service is ready to process requests.
func (s *LiveKitWebhookService) ServiceReady() bool {
	return s.messageSender != nil
}

// eventSubjects maps LiveKit event names to the NATS subjects they are
// published on. Events outside this map are acknowledged and dropped.
var eventSubjects = map[string]string{
	models.WebhookEventParticipantJoined: models.LiveKitWebhookParticipantJoinedSubject,
	models.WebhookEventRoomFinished:      models.LiveKitWebhookRoomFinishedSubject,
}

// ProcessWebhookEvent publishes a verified webhook event for asynchronous
// processing. Unrecognized event types are dropped without error so LiveKit
// does not retry deliveries we will never act on.
func (s *LiveKitWebhookService) ProcessWebhookEvent(ctx context.Context, event *models.LiveKitWebhookEventMessage) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.NewUnavailableError("service not initialized")
	}

	if event == nil || event.Event == "" {
		return domain.NewValidationError("missing event field")
	}

	subject, ok := eventSubjects[event.Event]
	if !ok {
		slog.DebugContext(ctx, "ignoring webhook event type", "event", event.Event)
		return nil
	}

	if err := s.messageSender.PublishLiveKitWebhookEvent(ctx, subject, *event); err != nil {
		slog.ErrorContext(ctx, "error publishing webhook event", logging.ErrKey, err, "event", event.Event)
		return err
	}

	slog.DebugContext(ctx, "published webhook event", "event", event.Event, "subject", subject)
	return nil
}
