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
	"github.com/hearsay-labs/feedback-service/pkg/concurrent"
	"github.com/hearsay-labs/feedback-service/pkg/constants"
)

// FeedbackService serves the client-facing feedback API: transcript
// ingestion, analysis retrieval, and on-demand summarization.
type FeedbackService struct {
	feedbackRepository domain.FeedbackRepository
	entryRepository    domain.TranscriptEntryRepository
	analysisRepository domain.AnalysisResultRepository
	summarizer         domain.FeedbackSummarizer
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(
	feedbackRepository domain.FeedbackRepository,
	entryRepository domain.TranscriptEntryRepository,
	analysisRepository domain.AnalysisResultRepository,
	summarizer domain.FeedbackSummarizer,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepository: feedbackRepository,
		entryRepository:    entryRepository,
		analysisRepository: analysisRepository,
		summarizer:         summarizer,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *FeedbackService) ServiceReady() bool {
	return s.feedbackRepository != nil &&
		s.entryRepository != nil &&
		s.analysisRepository != nil &&
		s.summarizer != nil
}

// AnalysisBundle is everything a client needs to render a finished feedback
// session: the record, its ordered transcript, and the latest analysis if one
// exists.
type AnalysisBundle struct {
	Feedback *models.FeedbackRecord    `json:"feedback"`
	Entries  []*models.TranscriptEntry `json:"entries"`
	Analysis *models.AnalysisResult    `json:"analysis,omitempty"`
}

// FeedbackOverview is a listing row for the recent-analysis endpoint. The
// summary is truncated to a preview.
type FeedbackOverview struct {
	FeedbackUID     string                 `json:"feedback_uid"`
	ConversationUID string                 `json:"conversation_uid"`
	Status          models.FeedbackStatus  `json:"status"`
	SummaryPreview  string                 `json:"summary_preview,omitempty"`
	Analysis        *models.AnalysisResult `json:"analysis,omitempty"`
	CreatedAt       *time.Time             `json:"created_at,omitempty"`
}

// UpdateLegacyTranscript replaces the whole-transcript blob on a feedback
// record. Older clients post the full transcript once at call end instead of
// streaming per-utterance entries.
func (s *FeedbackService) UpdateLegacyTranscript(ctx context.Context, feedbackUID string, transcript []models.TranscriptTurn) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.NewUnavailableError("service not initialized")
	}
	if feedbackUID == "" {
		return domain.NewValidationError("feedback UID is required")
	}
	if len(transcript) == 0 {
		return domain.NewValidationError("transcript is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("feedback_uid", feedbackUID))

	record, err := s.feedbackRepository.Get(ctx, feedbackUID)
	if err != nil {
		slog.ErrorContext(ctx, "error getting feedback record", logging.ErrKey, err)
		return err
	}
	if record.Status.IsTerminal() {
		return domain.NewConflictError("feedback record is already finalized")
	}

	if err := s.feedbackRepository.UpdateTranscript(ctx, feedbackUID, transcript); err != nil {
		slog.ErrorContext(ctx, "error updating transcript", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "updated legacy transcript", "turns", len(transcript))
	return nil
}

// AppendEntries stores per-utterance transcript entries for a feedback
// record. Entries are immutable once stored.
func (s *FeedbackService) AppendEntries(ctx context.Context, feedbackUID string, entries []*models.TranscriptEntry) ([]*models.TranscriptEntry, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if feedbackUID == "" {
		return nil, domain.NewValidationError("feedback UID is required")
	}
	if len(entries) == 0 {
		return nil, domain.NewValidationError("at least one entry is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("feedback_uid", feedbackUID))

	exists, err := s.feedbackRepository.Exists(ctx, feedbackUID)
	if err != nil {
		slog.ErrorContext(ctx, "error checking feedback record", logging.ErrKey, err)
		return nil, err
	}
	if !exists {
		return nil, domain.NewNotFoundError("feedback record not found")
	}

	now := time.Now().UTC()
	for _, entry := range entries {
		if entry.Content == "" {
			return nil, domain.NewValidationError("entry content is required")
		}
		if entry.Role == "" {
			entry.Role = models.TranscriptRoleUnknown
		}
		if !entry.Role.IsValid() {
			return nil, domain.NewValidationError("invalid entry role")
		}
		entry.UID = uuid.New().String()
		entry.FeedbackUID = feedbackUID
		entry.CreatedAt = now
		if entry.Timestamp.IsZero() {
			entry.Timestamp = now
		}
	}

	for _, entry := range entries {
		if err := s.entryRepository.Create(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "error storing transcript entry", logging.ErrKey, err)
			return nil, err
		}
	}

	slog.InfoContext(ctx, "appended transcript entries", "count", len(entries))
	return entries, nil
}

// GetAnalysisBundle fetches a feedback record with its ordered transcript
// and latest analysis result. A record with no analysis yet returns a nil
// analysis, not an error.
func (s *FeedbackService) GetAnalysisBundle(ctx context.Context, feedbackUID string) (*AnalysisBundle, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if feedbackUID == "" {
		return nil, domain.NewValidationError("feedback UID is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("feedback_uid", feedbackUID))

	record, err := s.feedbackRepository.Get(ctx, feedbackUID)
	if err != nil {
		slog.ErrorContext(ctx, "error getting feedback record", logging.ErrKey, err)
		return nil, err
	}

	entries, err := s.entryRepository.ListByFeedback(ctx, feedbackUID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing transcript entries", logging.ErrKey, err)
		return nil, err
	}
	models.SortTranscriptEntries(entries)

	bundle := &AnalysisBundle{
		Feedback: record,
		Entries:  entries,
	}

	analysis, err := s.analysisRepository.LatestByFeedback(ctx, feedbackUID)
	if err != nil {
		if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			slog.ErrorContext(ctx, "error getting analysis result", logging.ErrKey, err)
			return nil, err
		}
	} else {
		bundle.Analysis = analysis
	}

	return bundle, nil
}

// ListByConversation lists feedback records for a conversation, optionally
// filtered by lifecycle status.
func (s *FeedbackService) ListByConversation(ctx context.Context, conversationUID, statusFilter string) ([]*models.FeedbackRecord, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if conversationUID == "" {
		return nil, domain.NewValidationError("conversation UID is required")
	}

	var status *models.FeedbackStatus
	if statusFilter != "" {
		parsed := models.FeedbackStatus(statusFilter)
		if !parsed.IsValid() {
			return nil, domain.NewValidationError("invalid status filter")
		}
		status = &parsed
	}

	records, err := s.feedbackRepository.ListByConversation(ctx, conversationUID, status)
	if err != nil {
		slog.ErrorContext(ctx, "error listing feedback records", logging.ErrKey, err)
		return nil, err
	}
	return records, nil
}

// ListRecentWithAnalysis returns the most recent feedback records with their
// latest analysis results attached. Analysis lookups fan out concurrently; a
// record whose lookup fails is listed without analysis rather than failing
// the whole page.
func (s *FeedbackService) ListRecentWithAnalysis(ctx context.Context) ([]*FeedbackOverview, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	records, err := s.feedbackRepository.ListRecent(ctx, constants.RecentFeedbackLimit)
	if err != nil {
		slog.ErrorContext(ctx, "error listing recent feedback records", logging.ErrKey, err)
		return nil, err
	}

	overviews := make([]*FeedbackOverview, len(records))
	functions := make([]func() error, len(records))
	for i, record := range records {
		overviews[i] = &FeedbackOverview{
			FeedbackUID:     record.UID,
			ConversationUID: record.ConversationUID,
			Status:          record.Status,
			SummaryPreview:  truncateSummary(record.FeedbackSummary),
			CreatedAt:       record.CreatedAt,
		}
		functions[i] = func() error {
			analysis, err := s.analysisRepository.LatestByFeedback(ctx, record.UID)
			if err != nil {
				if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
					slog.WarnContext(ctx, "error getting analysis for listing", logging.ErrKey, err, "feedback_uid", record.UID)
				}
				return nil
			}
			overviews[i].Analysis = analysis
			return nil
		}
	}

	pool := concurrent.NewWorkerPool(5)
	pool.RunAll(ctx, functions...)

	return overviews, nil
}

// Summarize produces an on-demand prose summary of a record's transcript
// without touching its lifecycle state.
func (s *FeedbackService) Summarize(ctx context.Context, feedbackUID string) (string, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return "", domain.NewUnavailableError("service not initialized")
	}
	if feedbackUID == "" {
		return "", domain.NewValidationError("feedback UID is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("feedback_uid", feedbackUID))

	record, err := s.feedbackRepository.Get(ctx, feedbackUID)
	if err != nil {
		slog.ErrorContext(ctx, "error getting feedback record", logging.ErrKey, err)
		return "", err
	}

	entries, err := s.entryRepository.ListByFeedback(ctx, feedbackUID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing transcript entries", logging.ErrKey, err)
		return "", err
	}

	var transcript string
	if len(entries) > 0 {
		models.SortTranscriptEntries(entries)
		transcript = FormatTranscriptEntries(entries)
	} else if record.HasLegacyTranscript() {
		transcript = formatTranscriptTurns(record.Transcript)
	}
	if transcript == "" {
		return "", domain.NewValidationError("feedback record has no transcript to summarize")
	}

	summary, err := s.summarizer.Summarize(ctx, transcript)
	if err != nil {
		slog.ErrorContext(ctx, "error summarizing transcript", logging.ErrKey, err)
		return "", err
	}
	return summary, nil
}

// truncateSummary shortens a summary to the preview length, cutting on a rune
// boundary so multi-byte text stays valid UTF-8.
func truncateSummary(summary string) string {
	runes := []rune(summary)
	if len(runes) <= constants.AnalysisPreviewLength {
		return summary
	}
	return string(runes[:constants.AnalysisPreviewLength]) + "..."
}
