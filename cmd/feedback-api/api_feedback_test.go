// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/mocks"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/internal/service"
)

func setupFeedbackAPIForTesting() (*FeedbackAPI, *mocks.MockFeedbackRepository, *mocks.MockTranscriptEntryRepository, *mocks.MockFeedbackSummarizer) {
	mockFeedbackRepo := new(mocks.MockFeedbackRepository)
	mockEntryRepo := new(mocks.MockTranscriptEntryRepository)
	mockAnalysisRepo := new(mocks.MockAnalysisResultRepository)
	mockSummarizer := new(mocks.MockFeedbackSummarizer)

	api := &FeedbackAPI{
		feedbackService: service.NewFeedbackService(mockFeedbackRepo, mockEntryRepo, mockAnalysisRepo, mockSummarizer),
	}
	return api, mockFeedbackRepo, mockEntryRepo, mockSummarizer
}

func TestHandleSummarizeFeedback(t *testing.T) {
	record := &models.FeedbackRecord{
		UID:             "feedback-1",
		ConversationUID: "conversation-1",
		Status:          models.FeedbackStatusCompleted,
	}

	t.Run("returns the summary", func(t *testing.T) {
		api, mockFeedbackRepo, mockEntryRepo, mockSummarizer := setupFeedbackAPIForTesting()

		mockFeedbackRepo.On("Get", mock.Anything, "feedback-1").Return(record, nil)
		mockEntryRepo.On("ListByFeedback", mock.Anything, "feedback-1").Return([]*models.TranscriptEntry{
			{Role: models.TranscriptRoleUser, Content: "The espresso was excellent.", Timestamp: time.Now()},
		}, nil)
		mockSummarizer.On("Summarize", mock.Anything, "user: The espresso was excellent.").
			Return("The customer praised the espresso.", nil)

		req := httptest.NewRequest(http.MethodPost, "/api/feedback/feedback-1/summarize", nil)
		rec := httptest.NewRecorder()
		api.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"summary":"The customer praised the espresso."}`, rec.Body.String())
		mockSummarizer.AssertExpectations(t)
	})

	t.Run("unknown record returns 404", func(t *testing.T) {
		api, mockFeedbackRepo, _, mockSummarizer := setupFeedbackAPIForTesting()

		mockFeedbackRepo.On("Get", mock.Anything, "missing").Return(nil, domain.NewNotFoundError("feedback record not found"))

		req := httptest.NewRequest(http.MethodPost, "/api/feedback/missing/summarize", nil)
		rec := httptest.NewRecorder()
		api.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockSummarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
	})

	t.Run("record without transcript returns 400", func(t *testing.T) {
		api, mockFeedbackRepo, mockEntryRepo, mockSummarizer := setupFeedbackAPIForTesting()

		mockFeedbackRepo.On("Get", mock.Anything, "feedback-1").Return(record, nil)
		mockEntryRepo.On("ListByFeedback", mock.Anything, "feedback-1").Return([]*models.TranscriptEntry{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/feedback/feedback-1/summarize", nil)
		rec := httptest.NewRecorder()
		api.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockSummarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
	})
}
