// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/internal/logging"
)

// HandleMessage implements domain.MessageHandler interface
func (s *ReconciliationService) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) error{
		models.LiveKitWebhookParticipantJoinedSubject: s.HandleParticipantJoinedMessage,
		models.LiveKitWebhookRoomFinishedSubject:      s.HandleRoomFinishedMessage,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		return
	}

	if err := handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "error handling message",
			logging.ErrKey, err,
			"subject", subject,
		)
	}

	// Webhook events are fire-and-forget; respond only when a reply is
	// expected so request-style probes do not hang.
	if msg.HasReply() {
		if err := msg.Respond(nil); err != nil {
			slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
		}
	}
}

// HandlerReady implements domain.MessageHandler interface
func (s *ReconciliationService) HandlerReady() bool {
	return s.ServiceReady()
}

// parseLiveKitWebhookEvent is a helper to parse webhook event messages
func (s *ReconciliationService) parseLiveKitWebhookEvent(ctx context.Context, msg domain.Message) (*models.LiveKitWebhookEventMessage, error) {
	var webhookEvent models.LiveKitWebhookEventMessage
	if err := json.Unmarshal(msg.Data(), &webhookEvent); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal LiveKit webhook event", logging.ErrKey, err)
		return nil, err
	}
	return &webhookEvent, nil
}

// HandleParticipantJoinedMessage handles participant_joined webhook events
func (s *ReconciliationService) HandleParticipantJoinedMessage(ctx context.Context, msg domain.Message) error {
	webhookEvent, err := s.parseLiveKitWebhookEvent(ctx, msg)
	if err != nil {
		return err
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_type", webhookEvent.Event))
	if err := s.HandleParticipantJoined(ctx, webhookEvent); err != nil {
		slog.ErrorContext(ctx, "failed to handle participant joined event", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "successfully processed participant joined event")
	return nil
}

// HandleRoomFinishedMessage handles room_finished webhook events
func (s *ReconciliationService) HandleRoomFinishedMessage(ctx context.Context, msg domain.Message) error {
	webhookEvent, err := s.parseLiveKitWebhookEvent(ctx, msg)
	if err != nil {
		return err
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_type", webhookEvent.Event))
	if err := s.HandleRoomFinished(ctx, webhookEvent); err != nil {
		slog.ErrorContext(ctx, "failed to handle room finished event", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "successfully processed room finished event")
	return nil
}
