// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

// Package messaging publishes domain events to NATS and wraps inbound NATS
// messages for the handlers package.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/internal/logging"
	"github.com/nats-io/nats.go"
)

// INatsConn is the subset of the NATS connection API used for publishing.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder publishes messages to NATS subjects.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{NatsConn: natsConn}
}

var _ domain.WebhookEventSender = (*MessageBuilder)(nil)

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	if m.NatsConn == nil || !m.NatsConn.IsConnected() {
		return domain.NewUnavailableError("NATS connection is not available")
	}

	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error publishing NATS message",
			logging.ErrKey, err, "subject", subject)
		return domain.NewInternalError("failed to publish message", err)
	}

	slog.DebugContext(ctx, "published NATS message", "subject", subject)
	return nil
}

// PublishLiveKitWebhookEvent publishes a verified webhook event for
// asynchronous reconciliation.
func (m *MessageBuilder) PublishLiveKitWebhookEvent(ctx context.Context, subject string, message models.LiveKitWebhookEventMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshaling webhook event message", logging.ErrKey, err)
		return domain.NewInternalError("failed to marshal webhook event", err)
	}

	return m.sendMessage(ctx, subject, data)
}

// NatsMsg wraps a *nats.Msg to implement [domain.Message].
type NatsMsg struct {
	msg *nats.Msg
}

// NewNatsMsg wraps a NATS message.
func NewNatsMsg(msg *nats.Msg) *NatsMsg {
	return &NatsMsg{msg: msg}
}

var _ domain.Message = (*NatsMsg)(nil)

// Subject returns the message subject.
func (m *NatsMsg) Subject() string {
	return m.msg.Subject
}

// Data returns the message payload.
func (m *NatsMsg) Data() []byte {
	return m.msg.Data
}

// HasReply reports whether the publisher expects a response.
func (m *NatsMsg) HasReply() bool {
	return m.msg.Reply != ""
}

// Respond replies to the message.
func (m *NatsMsg) Respond(data []byte) error {
	return m.msg.Respond(data)
}
