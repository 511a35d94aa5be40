// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// WebhookEventSender publishes verified webhook events for asynchronous
// processing.
type WebhookEventSender interface {
	PublishLiveKitWebhookEvent(ctx context.Context, subject string, message models.LiveKitWebhookEventMessage) error
}
