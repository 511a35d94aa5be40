// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// FeedbackRepository defines storage operations for feedback records.
// This interface can be implemented by different storage backends (NATS, PostgreSQL, etc.)
type FeedbackRepository interface {
	Create(ctx context.Context, record *models.FeedbackRecord) error
	Get(ctx context.Context, feedbackUID string) (*models.FeedbackRecord, error)
	Exists(ctx context.Context, feedbackUID string) (bool, error)

	// Correlation lookups
	GetByRoomSID(ctx context.Context, roomSID string) (*models.FeedbackRecord, error)
	LatestInitiatedByParticipant(ctx context.Context, participantIdentity string) (*models.FeedbackRecord, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]*models.FeedbackRecord, error)
	ListByConversation(ctx context.Context, conversationUID string, status *models.FeedbackStatus) ([]*models.FeedbackRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*models.FeedbackRecord, error)

	// Correlation and transcript writes. SetRoomSID is idempotent: a record
	// whose session already carries a room SID is left untouched.
	SetRoomSID(ctx context.Context, feedbackUID string, roomSID string) error
	UpdateTranscript(ctx context.Context, feedbackUID string, transcript []models.TranscriptTurn) error

	// Claim protocol. ClaimForAnalysis transitions initiated -> processing
	// with optimistic concurrency; exactly one concurrent caller gets true.
	// ReleaseClaim reverts processing -> initiated. CompleteWithSummary
	// transitions processing -> completed and stores the summary.
	ClaimForAnalysis(ctx context.Context, feedbackUID string) (bool, error)
	ReleaseClaim(ctx context.Context, feedbackUID string) error
	CompleteWithSummary(ctx context.Context, feedbackUID string, summary string) error
}

// TranscriptEntryRepository defines storage operations for per-utterance
// transcript entries. Entries are append-only.
type TranscriptEntryRepository interface {
	Create(ctx context.Context, entry *models.TranscriptEntry) error
	ListByFeedback(ctx context.Context, feedbackUID string) ([]*models.TranscriptEntry, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]*models.TranscriptEntry, error)
}

// AnalysisResultRepository defines storage operations for analysis results.
type AnalysisResultRepository interface {
	Create(ctx context.Context, result *models.AnalysisResult) error
	LatestByFeedback(ctx context.Context, feedbackUID string) (*models.AnalysisResult, error)
	ListByFeedback(ctx context.Context, feedbackUID string) ([]*models.AnalysisResult, error)
}

// ConversationRepository defines storage operations for agent definitions.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	Get(ctx context.Context, conversationUID string) (*models.Conversation, error)
	GetByUniqueName(ctx context.Context, uniqueName string) (*models.Conversation, error)
	UniqueNameExists(ctx context.Context, uniqueName string) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Conversation, error)
}

// GeneratedAgentRepository defines storage operations for transient
// LLM-generated agent drafts.
type GeneratedAgentRepository interface {
	Put(ctx context.Context, agent *models.GeneratedAgent) error
	Get(ctx context.Context, slug string) (*models.GeneratedAgent, error)
	Delete(ctx context.Context, slug string) error
}
