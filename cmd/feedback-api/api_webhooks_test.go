// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/mocks"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/internal/service"
)

func setupWebhookAPIForTesting() (*FeedbackAPI, *mocks.MockWebhookVerifier, *mocks.MockWebhookEventSender) {
	mockVerifier := &mocks.MockWebhookVerifier{}
	mockSender := &mocks.MockWebhookEventSender{}

	api := &FeedbackAPI{
		webhookVerifier: mockVerifier,
		webhookService:  service.NewLiveKitWebhookService(mockSender),
	}

	return api, mockVerifier, mockSender
}

func TestHandleLiveKitWebhook(t *testing.T) {
	roomFinished := &models.LiveKitWebhookEventMessage{
		Event: models.WebhookEventRoomFinished,
		Room:  &models.WebhookRoom{SID: "RM_abc", Name: "feedback-room"},
	}

	tests := []struct {
		name           string
		setupMocks     func(verifier *mocks.MockWebhookVerifier, sender *mocks.MockWebhookEventSender)
		expectedStatus int
		expectPublish  bool
	}{
		{
			name: "verified room_finished event is published and acked",
			setupMocks: func(verifier *mocks.MockWebhookVerifier, sender *mocks.MockWebhookEventSender) {
				verifier.On("VerifyRequest", mock.Anything).Return(roomFinished, nil)
				sender.On("PublishLiveKitWebhookEvent", mock.Anything, models.LiveKitWebhookRoomFinishedSubject, *roomFinished).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectPublish:  true,
		},
		{
			name: "bad signature returns 401",
			setupMocks: func(verifier *mocks.MockWebhookVerifier, sender *mocks.MockWebhookEventSender) {
				verifier.On("VerifyRequest", mock.Anything).Return(nil, domain.NewUnauthorizedError("invalid webhook token"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "malformed payload returns 400",
			setupMocks: func(verifier *mocks.MockWebhookVerifier, sender *mocks.MockWebhookEventSender) {
				verifier.On("VerifyRequest", mock.Anything).Return(nil, domain.NewValidationError("invalid webhook payload"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "publish failure is still acked with 200",
			setupMocks: func(verifier *mocks.MockWebhookVerifier, sender *mocks.MockWebhookEventSender) {
				verifier.On("VerifyRequest", mock.Anything).Return(roomFinished, nil)
				sender.On("PublishLiveKitWebhookEvent", mock.Anything, models.LiveKitWebhookRoomFinishedSubject, *roomFinished).
					Return(domain.NewUnavailableError("NATS connection lost"))
			},
			expectedStatus: http.StatusOK,
			expectPublish:  true,
		},
		{
			name: "unrecognized event type is acked without publishing",
			setupMocks: func(verifier *mocks.MockWebhookVerifier, sender *mocks.MockWebhookEventSender) {
				verifier.On("VerifyRequest", mock.Anything).Return(&models.LiveKitWebhookEventMessage{
					Event: "track_published",
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, mockVerifier, mockSender := setupWebhookAPIForTesting()
			tt.setupMocks(mockVerifier, mockSender)

			req := httptest.NewRequest(http.MethodPost, "/webhooks/livekit", strings.NewReader("{}"))
			rec := httptest.NewRecorder()
			api.Routes().ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.expectedStatus == http.StatusOK {
				assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
			}

			mockVerifier.AssertExpectations(t)
			if tt.expectPublish {
				mockSender.AssertExpectations(t)
			} else {
				mockSender.AssertNotCalled(t, "PublishLiveKitWebhookEvent", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
