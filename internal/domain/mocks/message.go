// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// MockMessage implements Message for testing
type MockMessage struct {
	mock.Mock
	data    []byte
	subject string
}

func (m *MockMessage) Subject() string {
	return m.subject
}

func (m *MockMessage) Data() []byte {
	return m.data
}

func (m *MockMessage) HasReply() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockMessage) Respond(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

// NewMockMessage creates a mock message for testing
func NewMockMessage(data []byte, subject string) *MockMessage {
	return &MockMessage{
		data:    data,
		subject: subject,
	}
}

// MockWebhookEventSender implements WebhookEventSender for testing
type MockWebhookEventSender struct {
	mock.Mock
}

func (m *MockWebhookEventSender) PublishLiveKitWebhookEvent(ctx context.Context, subject string, message models.LiveKitWebhookEventMessage) error {
	args := m.Called(ctx, subject, message)
	return args.Error(0)
}
