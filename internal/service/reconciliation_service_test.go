// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/mocks"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/pkg/constants"
	"github.com/hearsay-labs/feedback-service/pkg/utils"
)

func setupReconciliationServiceForTesting() (*ReconciliationService, *mocks.MockFeedbackRepository, *mocks.MockTranscriptEntryRepository, *mocks.MockAnalysisResultRepository, *mocks.MockTranscriptAnalyzer) {
	mockFeedbackRepo := new(mocks.MockFeedbackRepository)
	mockEntryRepo := new(mocks.MockTranscriptEntryRepository)
	mockAnalysisRepo := new(mocks.MockAnalysisResultRepository)
	mockAnalyzer := new(mocks.MockTranscriptAnalyzer)

	analysisService := NewAnalysisService(mockFeedbackRepo, mockEntryRepo, mockAnalysisRepo, mockAnalyzer)
	service := NewReconciliationService(mockFeedbackRepo, mockEntryRepo, analysisService)
	return service, mockFeedbackRepo, mockEntryRepo, mockAnalysisRepo, mockAnalyzer
}

func initiatedRecord(uid string, createdAgo time.Duration) *models.FeedbackRecord {
	created := time.Now().UTC().Add(-createdAgo)
	return &models.FeedbackRecord{
		UID:       uid,
		Status:    models.FeedbackStatusInitiated,
		CreatedAt: &created,
		UpdatedAt: utils.TimePtr(created),
	}
}

func TestReconciliationService_HandleParticipantJoined(t *testing.T) {
	ctx := context.Background()
	clientIdentity := constants.ParticipantIdentityPrefix + "abc123"

	tests := []struct {
		name       string
		event      *models.LiveKitWebhookEventMessage
		setupMocks func(*mocks.MockFeedbackRepository)
		wantErr    bool
	}{
		{
			name: "binds room SID to pending record",
			event: &models.LiveKitWebhookEventMessage{
				Event:       models.WebhookEventParticipantJoined,
				Room:        &models.WebhookRoom{SID: "RM_1", Name: "coffee-shop"},
				Participant: &models.WebhookParticipant{Identity: clientIdentity},
			},
			setupMocks: func(repo *mocks.MockFeedbackRepository) {
				repo.On("LatestInitiatedByParticipant", mock.Anything, clientIdentity).Return(initiatedRecord("feedback-1", time.Minute), nil)
				repo.On("SetRoomSID", mock.Anything, "feedback-1", "RM_1").Return(nil)
			},
		},
		{
			name: "agent participants are skipped",
			event: &models.LiveKitWebhookEventMessage{
				Event:       models.WebhookEventParticipantJoined,
				Room:        &models.WebhookRoom{SID: "RM_1"},
				Participant: &models.WebhookParticipant{Identity: "agent-worker-7"},
			},
			setupMocks: func(repo *mocks.MockFeedbackRepository) {},
		},
		{
			name: "no pending record is benign",
			event: &models.LiveKitWebhookEventMessage{
				Event:       models.WebhookEventParticipantJoined,
				Room:        &models.WebhookRoom{SID: "RM_1"},
				Participant: &models.WebhookParticipant{Identity: clientIdentity},
			},
			setupMocks: func(repo *mocks.MockFeedbackRepository) {
				repo.On("LatestInitiatedByParticipant", mock.Anything, clientIdentity).Return(nil, domain.NewNotFoundError("no pending record"))
			},
		},
		{
			name: "event without room is dropped",
			event: &models.LiveKitWebhookEventMessage{
				Event:       models.WebhookEventParticipantJoined,
				Participant: &models.WebhookParticipant{Identity: clientIdentity},
			},
			setupMocks: func(repo *mocks.MockFeedbackRepository) {},
		},
		{
			name: "repository failure propagates",
			event: &models.LiveKitWebhookEventMessage{
				Event:       models.WebhookEventParticipantJoined,
				Room:        &models.WebhookRoom{SID: "RM_1"},
				Participant: &models.WebhookParticipant{Identity: clientIdentity},
			},
			setupMocks: func(repo *mocks.MockFeedbackRepository) {
				repo.On("LatestInitiatedByParticipant", mock.Anything, clientIdentity).Return(nil, domain.NewUnavailableError("KV store unavailable"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockFeedbackRepo, _, _, _ := setupReconciliationServiceForTesting()
			tt.setupMocks(mockFeedbackRepo)

			err := service.HandleParticipantJoined(ctx, tt.event)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			mockFeedbackRepo.AssertExpectations(t)
		})
	}
}

func TestReconciliationService_HandleRoomFinished_HappyPath(t *testing.T) {
	ctx := context.Background()
	service, mockFeedbackRepo, mockEntryRepo, mockAnalysisRepo, mockAnalyzer := setupReconciliationServiceForTesting()

	record := initiatedRecord("feedback-1", 2*time.Minute)
	record.Session.RoomSID = "RM_1"
	claimed := processingRecord("feedback-1")
	entries := []*models.TranscriptEntry{
		{UID: "e1", FeedbackUID: "feedback-1", Role: models.TranscriptRoleUser, Content: "Loved it.", Timestamp: time.Now()},
	}

	mockFeedbackRepo.On("GetByRoomSID", mock.Anything, "RM_1").Return(record, nil)
	mockFeedbackRepo.On("ClaimForAnalysis", mock.Anything, "feedback-1").Return(true, nil)
	mockFeedbackRepo.On("Get", mock.Anything, "feedback-1").Return(claimed, nil)
	mockEntryRepo.On("ListByFeedback", mock.Anything, "feedback-1").Return(entries, nil)
	mockAnalyzer.On("Analyze", mock.Anything, mock.Anything).Return(&models.Analysis{Summary: "Positive feedback."}, nil)
	mockAnalyzer.On("Model").Return("gemini-2.0-flash")
	mockAnalysisRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockFeedbackRepo.On("CompleteWithSummary", mock.Anything, "feedback-1", "Positive feedback.").Return(nil)

	err := service.HandleRoomFinished(ctx, &models.LiveKitWebhookEventMessage{
		Event: models.WebhookEventRoomFinished,
		Room:  &models.WebhookRoom{SID: "RM_1", Name: "coffee-shop"},
	})

	assert.NoError(t, err)
	mockFeedbackRepo.AssertExpectations(t)
	mockAnalysisRepo.AssertExpectations(t)
}

func TestReconciliationService_HandleRoomFinished_AlreadyHandled(t *testing.T) {
	ctx := context.Background()
	service, mockFeedbackRepo, _, _, mockAnalyzer := setupReconciliationServiceForTesting()

	record := initiatedRecord("feedback-1", 2*time.Minute)
	record.Status = models.FeedbackStatusCompleted

	mockFeedbackRepo.On("GetByRoomSID", mock.Anything, "RM_1").Return(record, nil)

	err := service.HandleRoomFinished(ctx, &models.LiveKitWebhookEventMessage{
		Event: models.WebhookEventRoomFinished,
		Room:  &models.WebhookRoom{SID: "RM_1"},
	})

	assert.NoError(t, err)
	mockFeedbackRepo.AssertNotCalled(t, "ClaimForAnalysis", mock.Anything, mock.Anything)
	mockAnalyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestReconciliationService_HandleRoomFinished_ClaimLost(t *testing.T) {
	ctx := context.Background()
	service, mockFeedbackRepo, _, _, mockAnalyzer := setupReconciliationServiceForTesting()

	record := initiatedRecord("feedback-1", 2*time.Minute)
	record.Session.RoomSID = "RM_1"

	mockFeedbackRepo.On("GetByRoomSID", mock.Anything, "RM_1").Return(record, nil)
	mockFeedbackRepo.On("ClaimForAnalysis", mock.Anything, "feedback-1").Return(false, nil)

	err := service.HandleRoomFinished(ctx, &models.LiveKitWebhookEventMessage{
		Event: models.WebhookEventRoomFinished,
		Room:  &models.WebhookRoom{SID: "RM_1"},
	})

	assert.NoError(t, err)
	mockAnalyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestReconciliationService_HandleRoomFinished_RecoversByRecentRecords(t *testing.T) {
	ctx := context.Background()
	service, mockFeedbackRepo, mockEntryRepo, _, _ := setupReconciliationServiceForTesting()

	// The newest candidate has no transcript data; the older one does and
	// must win.
	newest := initiatedRecord("feedback-new", time.Minute)
	older := initiatedRecord("feedback-old", 10*time.Minute)

	mockFeedbackRepo.On("GetByRoomSID", mock.Anything, "RM_1").Return(nil, domain.NewNotFoundError("no record for room"))
	mockFeedbackRepo.On("ListCreatedSince", mock.Anything, mock.Anything).Return([]*models.FeedbackRecord{older, newest}, nil)
	mockEntryRepo.On("ListByFeedback", mock.Anything, "feedback-new").Return([]*models.TranscriptEntry{}, nil)
	mockEntryRepo.On("ListByFeedback", mock.Anything, "feedback-old").Return([]*models.TranscriptEntry{
		{UID: "e1", FeedbackUID: "feedback-old", Role: models.TranscriptRoleUser, Content: "Hi.", Timestamp: time.Now()},
	}, nil)
	mockFeedbackRepo.On("SetRoomSID", mock.Anything, "feedback-old", "RM_1").Return(nil)
	mockFeedbackRepo.On("ClaimForAnalysis", mock.Anything, "feedback-old").Return(false, nil)

	err := service.HandleRoomFinished(ctx, &models.LiveKitWebhookEventMessage{
		Event: models.WebhookEventRoomFinished,
		Room:  &models.WebhookRoom{SID: "RM_1"},
	})

	assert.NoError(t, err)
	mockFeedbackRepo.AssertCalled(t, "SetRoomSID", mock.Anything, "feedback-old", "RM_1")
}

func TestReconciliationService_HandleRoomFinished_RecoversByEntryActivity(t *testing.T) {
	ctx := context.Background()
	service, mockFeedbackRepo, mockEntryRepo, _, _ := setupReconciliationServiceForTesting()

	now := time.Now().UTC()
	record := initiatedRecord("feedback-busy", 5*time.Minute)

	mockFeedbackRepo.On("GetByRoomSID", mock.Anything, "RM_1").Return(nil, domain.NewNotFoundError("no record for room"))
	mockFeedbackRepo.On("ListCreatedSince", mock.Anything, mock.Anything).Return([]*models.FeedbackRecord{}, nil)
	mockEntryRepo.On("ListCreatedSince", mock.Anything, mock.Anything).Return([]*models.TranscriptEntry{
		{UID: "e1", FeedbackUID: "feedback-quiet", CreatedAt: now},
		{UID: "e2", FeedbackUID: "feedback-busy", CreatedAt: now.Add(-time.Minute)},
		{UID: "e3", FeedbackUID: "feedback-busy", CreatedAt: now.Add(-30 * time.Second)},
		{UID: "e4", FeedbackUID: "feedback-busy", CreatedAt: now},
	}, nil)
	mockFeedbackRepo.On("Get", mock.Anything, "feedback-busy").Return(record, nil)
	mockFeedbackRepo.On("SetRoomSID", mock.Anything, "feedback-busy", "RM_1").Return(nil)
	mockFeedbackRepo.On("ClaimForAnalysis", mock.Anything, "feedback-busy").Return(false, nil)

	err := service.HandleRoomFinished(ctx, &models.LiveKitWebhookEventMessage{
		Event: models.WebhookEventRoomFinished,
		Room:  &models.WebhookRoom{SID: "RM_1"},
	})

	assert.NoError(t, err)
	mockFeedbackRepo.AssertCalled(t, "SetRoomSID", mock.Anything, "feedback-busy", "RM_1")
}

func TestReconciliationService_HandleRoomFinished_GivesUpQuietly(t *testing.T) {
	ctx := context.Background()
	service, mockFeedbackRepo, mockEntryRepo, _, _ := setupReconciliationServiceForTesting()

	mockFeedbackRepo.On("GetByRoomSID", mock.Anything, "RM_1").Return(nil, domain.NewNotFoundError("no record for room"))
	mockFeedbackRepo.On("ListCreatedSince", mock.Anything, mock.Anything).Return([]*models.FeedbackRecord{}, nil)
	mockEntryRepo.On("ListCreatedSince", mock.Anything, mock.Anything).Return([]*models.TranscriptEntry{
		{UID: "e1", FeedbackUID: "feedback-lonely", CreatedAt: time.Now()},
	}, nil)

	err := service.HandleRoomFinished(ctx, &models.LiveKitWebhookEventMessage{
		Event: models.WebhookEventRoomFinished,
		Room:  &models.WebhookRoom{SID: "RM_1"},
	})

	assert.NoError(t, err)
	mockFeedbackRepo.AssertNotCalled(t, "ClaimForAnalysis", mock.Anything, mock.Anything)
}

func TestLargestEntryGroup(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		entries  []*models.TranscriptEntry
		expected string
	}{
		{
			name:     "empty input",
			entries:  nil,
			expected: "",
		},
		{
			name: "single-entry groups are not trusted",
			entries: []*models.TranscriptEntry{
				{FeedbackUID: "a", CreatedAt: now},
				{FeedbackUID: "b", CreatedAt: now},
			},
			expected: "",
		},
		{
			name: "largest group wins",
			entries: []*models.TranscriptEntry{
				{FeedbackUID: "a", CreatedAt: now},
				{FeedbackUID: "b", CreatedAt: now},
				{FeedbackUID: "b", CreatedAt: now},
				{FeedbackUID: "b", CreatedAt: now},
				{FeedbackUID: "a", CreatedAt: now},
			},
			expected: "b",
		},
		{
			name: "ties break by most recent activity",
			entries: []*models.TranscriptEntry{
				{FeedbackUID: "a", CreatedAt: now.Add(-time.Minute)},
				{FeedbackUID: "a", CreatedAt: now.Add(-time.Minute)},
				{FeedbackUID: "b", CreatedAt: now.Add(-time.Minute)},
				{FeedbackUID: "b", CreatedAt: now},
			},
			expected: "b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, largestEntryGroup(tt.entries))
		})
	}
}

func TestReconciliationService_HandleMessage(t *testing.T) {
	ctx := context.Background()
	service, mockFeedbackRepo, _, _, _ := setupReconciliationServiceForTesting()

	record := initiatedRecord("feedback-1", time.Minute)
	record.Session.RoomSID = "RM_1"
	mockFeedbackRepo.On("GetByRoomSID", mock.Anything, "RM_1").Return(record, nil)
	mockFeedbackRepo.On("ClaimForAnalysis", mock.Anything, "feedback-1").Return(false, nil)

	msg := mocks.NewMockMessage(
		[]byte(`{"event":"room_finished","room":{"sid":"RM_1","name":"coffee-shop"}}`),
		models.LiveKitWebhookRoomFinishedSubject,
	)
	msg.On("HasReply").Return(false)

	service.HandleMessage(ctx, msg)

	mockFeedbackRepo.AssertExpectations(t)
	msg.AssertNotCalled(t, "Respond", mock.Anything)
}

func TestReconciliationService_HandleMessage_UnknownSubject(t *testing.T) {
	ctx := context.Background()
	service, mockFeedbackRepo, _, _, _ := setupReconciliationServiceForTesting()

	msg := mocks.NewMockMessage([]byte(`{}`), "feedback.webhook.livekit.unknown")

	service.HandleMessage(ctx, msg)

	mockFeedbackRepo.AssertNotCalled(t, "GetByRoomSID", mock.Anything, mock.Anything)
}

// casFeedbackRepository is a single-record in-memory repository whose claim
// protocol matches the store's revision semantics: exactly one concurrent
// caller can move the record from initiated to processing.
type casFeedbackRepository struct {
	mu     sync.Mutex
	record *models.FeedbackRecord
}

func (r *casFeedbackRepository) Create(ctx context.Context, record *models.FeedbackRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record = record
	return nil
}

func (r *casFeedbackRepository) Get(ctx context.Context, feedbackUID string) (*models.FeedbackRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record == nil || r.record.UID != feedbackUID {
		return nil, domain.NewNotFoundError("feedback record not found")
	}
	snapshot := *r.record
	return &snapshot, nil
}

func (r *casFeedbackRepository) Exists(ctx context.Context, feedbackUID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record != nil && r.record.UID == feedbackUID, nil
}

func (r *casFeedbackRepository) GetByRoomSID(ctx context.Context, roomSID string) (*models.FeedbackRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record == nil || r.record.Session.RoomSID != roomSID {
		return nil, domain.NewNotFoundError("feedback record not found")
	}
	snapshot := *r.record
	return &snapshot, nil
}

func (r *casFeedbackRepository) LatestInitiatedByParticipant(ctx context.Context, participantIdentity string) (*models.FeedbackRecord, error) {
	return nil, domain.NewNotFoundError("feedback record not found")
}

func (r *casFeedbackRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]*models.FeedbackRecord, error) {
	return nil, nil
}

func (r *casFeedbackRepository) ListByConversation(ctx context.Context, conversationUID string, status *models.FeedbackStatus) ([]*models.FeedbackRecord, error) {
	return nil, nil
}

func (r *casFeedbackRepository) ListRecent(ctx context.Context, limit int) ([]*models.FeedbackRecord, error) {
	return nil, nil
}

func (r *casFeedbackRepository) SetRoomSID(ctx context.Context, feedbackUID string, roomSID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record != nil && r.record.UID == feedbackUID && r.record.Session.RoomSID == "" {
		r.record.Session.RoomSID = roomSID
	}
	return nil
}

func (r *casFeedbackRepository) UpdateTranscript(ctx context.Context, feedbackUID string, transcript []models.TranscriptTurn) error {
	return nil
}

func (r *casFeedbackRepository) ClaimForAnalysis(ctx context.Context, feedbackUID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record == nil || r.record.UID != feedbackUID {
		return false, domain.NewNotFoundError("feedback record not found")
	}
	if r.record.Status != models.FeedbackStatusInitiated {
		return false, nil
	}
	r.record.Status = models.FeedbackStatusProcessing
	return true, nil
}

func (r *casFeedbackRepository) ReleaseClaim(ctx context.Context, feedbackUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record != nil && r.record.UID == feedbackUID && r.record.Status == models.FeedbackStatusProcessing {
		r.record.Status = models.FeedbackStatusInitiated
	}
	return nil
}

func (r *casFeedbackRepository) CompleteWithSummary(ctx context.Context, feedbackUID string, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record == nil || r.record.UID != feedbackUID {
		return domain.NewNotFoundError("feedback record not found")
	}
	if r.record.Status == models.FeedbackStatusCompleted {
		return nil
	}
	if r.record.Status != models.FeedbackStatusProcessing {
		return domain.NewConflictError("feedback record is not being processed")
	}
	r.record.Status = models.FeedbackStatusCompleted
	r.record.FeedbackSummary = summary
	return nil
}

func TestReconciliationService_HandleRoomFinished_ConcurrentDeliveries(t *testing.T) {
	record := initiatedRecord("feedback-1", time.Minute)
	record.Session.RoomSID = "RM_1"
	feedbackRepo := &casFeedbackRepository{record: record}

	mockEntryRepo := new(mocks.MockTranscriptEntryRepository)
	mockAnalysisRepo := new(mocks.MockAnalysisResultRepository)
	mockAnalyzer := new(mocks.MockTranscriptAnalyzer)

	mockEntryRepo.On("ListByFeedback", mock.Anything, "feedback-1").Return([]*models.TranscriptEntry{
		{Role: models.TranscriptRoleAssistant, Content: "How was your visit?", Timestamp: time.Now().Add(-time.Minute)},
		{Role: models.TranscriptRoleUser, Content: "Pretty good overall.", Timestamp: time.Now()},
	}, nil)
	mockAnalyzer.On("Analyze", mock.Anything, mock.Anything).Return(&models.Analysis{Summary: "Positive visit"}, nil)
	mockAnalyzer.On("Model").Return("gemini-test")
	mockAnalysisRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	analysisService := NewAnalysisService(feedbackRepo, mockEntryRepo, mockAnalysisRepo, mockAnalyzer)
	service := NewReconciliationService(feedbackRepo, mockEntryRepo, analysisService)

	event := &models.LiveKitWebhookEventMessage{
		Event: models.WebhookEventRoomFinished,
		Room:  &models.WebhookRoom{SID: "RM_1", Name: "coffee-shop"},
	}

	const deliveries = 8
	var wg sync.WaitGroup
	for range deliveries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, service.HandleRoomFinished(context.Background(), event))
		}()
	}
	wg.Wait()

	mockAnalyzer.AssertNumberOfCalls(t, "Analyze", 1)
	mockAnalysisRepo.AssertNumberOfCalls(t, "Create", 1)

	got, err := feedbackRepo.Get(context.Background(), "feedback-1")
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackStatusCompleted, got.Status)
	assert.Equal(t, "Positive visit", got.FeedbackSummary)
}
