// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/internal/logging"
)

// AnalysisService runs the post-call analysis pipeline for a claimed feedback
// record: assemble the transcript, call the LLM, persist the result, and move
// the record to its terminal state.
type AnalysisService struct {
	feedbackRepository domain.FeedbackRepository
	entryRepository    domain.TranscriptEntryRepository
	analysisRepository domain.AnalysisResultRepository
	analyzer           domain.TranscriptAnalyzer
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(
	feedbackRepository domain.FeedbackRepository,
	entryRepository domain.TranscriptEntryRepository,
	analysisRepository domain.AnalysisResultRepository,
	analyzer domain.TranscriptAnalyzer,
) *AnalysisService {
	return &AnalysisService{
		feedbackRepository: feedbackRepository,
		entryRepository:    entryRepository,
		analysisRepository: analysisRepository,
		analyzer:           analyzer,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *AnalysisService) ServiceReady() bool {
	return s.feedbackRepository != nil &&
		s.entryRepository != nil &&
		s.analysisRepository != nil &&
		s.analyzer != nil
}

// ProcessClaimed analyzes a feedback record the caller has already claimed.
// A record with no transcript data is released back to initiated without
// error. An analyzer failure also releases the claim so a later event can
// retry; the analyzer error is returned. On success the analysis result is
// stored and the record is completed with a summary.
func (s *AnalysisService) ProcessClaimed(ctx context.Context, feedbackUID string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.NewUnavailableError("service not initialized")
	}

	ctx = logging.AppendCtx(ctx, slog.String("feedback_uid", feedbackUID))

	record, err := s.feedbackRepository.Get(ctx, feedbackUID)
	if err != nil {
		slog.ErrorContext(ctx, "error getting claimed feedback record", logging.ErrKey, err)
		return err
	}

	transcript, err := s.buildTranscript(ctx, record)
	if err != nil {
		return err
	}
	if transcript == "" {
		slog.InfoContext(ctx, "no transcript data, releasing analysis claim")
		if err := s.feedbackRepository.ReleaseClaim(ctx, feedbackUID); err != nil {
			slog.ErrorContext(ctx, "error releasing analysis claim", logging.ErrKey, err)
			return err
		}
		return nil
	}

	analysis, err := s.analyzer.Analyze(ctx, transcript)
	if err != nil {
		slog.ErrorContext(ctx, "transcript analysis failed, releasing claim", logging.ErrKey, err)
		if releaseErr := s.feedbackRepository.ReleaseClaim(ctx, feedbackUID); releaseErr != nil {
			slog.ErrorContext(ctx, "error releasing analysis claim", logging.ErrKey, releaseErr)
		}
		return err
	}

	result := &models.AnalysisResult{
		UID:          uuid.New().String(),
		FeedbackUID:  feedbackUID,
		Analysis:     *analysis,
		AnalysisType: models.AnalysisTypeGeneral,
		LLMModel:     s.analyzer.Model(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.analysisRepository.Create(ctx, result); err != nil {
		slog.ErrorContext(ctx, "error storing analysis result", logging.ErrKey, err)
		if releaseErr := s.feedbackRepository.ReleaseClaim(ctx, feedbackUID); releaseErr != nil {
			slog.ErrorContext(ctx, "error releasing analysis claim", logging.ErrKey, releaseErr)
		}
		return err
	}

	if err := s.feedbackRepository.CompleteWithSummary(ctx, feedbackUID, summaryForRecord(analysis)); err != nil {
		slog.ErrorContext(ctx, "error completing feedback record", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "feedback analysis completed", "analysis_uid", result.UID, "llm_model", result.LLMModel)
	return nil
}

// buildTranscript assembles the analyzable transcript text. Per-utterance
// entries are the canonical source; the legacy whole-transcript blob on the
// record is the fallback for older clients.
func (s *AnalysisService) buildTranscript(ctx context.Context, record *models.FeedbackRecord) (string, error) {
	entries, err := s.entryRepository.ListByFeedback(ctx, record.UID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing transcript entries", logging.ErrKey, err)
		return "", err
	}

	if len(entries) > 0 {
		models.SortTranscriptEntries(entries)
		return FormatTranscriptEntries(entries), nil
	}

	if record.HasLegacyTranscript() {
		return formatTranscriptTurns(record.Transcript), nil
	}

	return "", nil
}

// FormatTranscriptEntries renders per-utterance entries as "role: content"
// lines for the LLM prompt. Entries with empty content are skipped.
func FormatTranscriptEntries(entries []*models.TranscriptEntry) string {
	var builder strings.Builder
	for _, entry := range entries {
		if entry.Content == "" {
			continue
		}
		fmt.Fprintf(&builder, "%s: %s\n", entry.Role, entry.Content)
	}
	return strings.TrimSpace(builder.String())
}

func formatTranscriptTurns(turns []models.TranscriptTurn) string {
	var builder strings.Builder
	for _, turn := range turns {
		if turn.Content == "" {
			continue
		}
		fmt.Fprintf(&builder, "%s: %s\n", turn.Role, turn.Content)
	}
	return strings.TrimSpace(builder.String())
}

// summaryForRecord picks the summary stored on the completed record. The
// analysis summary wins; insights are the fallback when the model returned an
// empty summary field.
func summaryForRecord(analysis *models.Analysis) string {
	if analysis.Summary != "" {
		return analysis.Summary
	}
	if len(analysis.Insights) > 0 {
		return strings.Join(analysis.Insights, "; ")
	}
	return "Analysis completed"
}
