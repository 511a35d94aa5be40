// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/internal/logging"
	"github.com/hearsay-labs/feedback-service/pkg/constants"
)

// ReconciliationService correlates LiveKit webhook events with feedback
// records and triggers the analysis pipeline when a room finishes. Every
// handler is idempotent: duplicate deliveries and lost correlations degrade
// to logged no-ops, never to duplicate analyses.
type ReconciliationService struct {
	feedbackRepository domain.FeedbackRepository
	entryRepository    domain.TranscriptEntryRepository
	analysisService    *AnalysisService
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	feedbackRepository domain.FeedbackRepository,
	entryRepository domain.TranscriptEntryRepository,
	analysisService *AnalysisService,
) *ReconciliationService {
	return &ReconciliationService{
		feedbackRepository: feedbackRepository,
		entryRepository:    entryRepository,
		analysisService:    analysisService,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *ReconciliationService) ServiceReady() bool {
	return s.feedbackRepository != nil &&
		s.entryRepository != nil &&
		s.analysisService != nil &&
		s.analysisService.ServiceReady()
}

// HandleParticipantJoined binds the room SID to the participant's pending
// feedback record. Agent and egress participants are skipped; only
// identities minted by this service carry the participant prefix.
func (s *ReconciliationService) HandleParticipantJoined(ctx context.Context, event *models.LiveKitWebhookEventMessage) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.NewUnavailableError("service not initialized")
	}

	if event.Room == nil || event.Room.SID == "" || event.Participant == nil || event.Participant.Identity == "" {
		slog.WarnContext(ctx, "participant_joined event missing room or participant")
		return nil
	}

	identity := event.Participant.Identity
	if !strings.HasPrefix(identity, constants.ParticipantIdentityPrefix) {
		slog.DebugContext(ctx, "ignoring non-client participant", "participant", identity)
		return nil
	}

	ctx = logging.AppendCtx(ctx, slog.String("room_sid", event.Room.SID), slog.String("participant", identity))

	record, err := s.feedbackRepository.LatestInitiatedByParticipant(ctx, identity)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.InfoContext(ctx, "no pending feedback record for participant")
			return nil
		}
		slog.ErrorContext(ctx, "error looking up feedback record by participant", logging.ErrKey, err)
		return err
	}

	if err := s.feedbackRepository.SetRoomSID(ctx, record.UID, event.Room.SID); err != nil {
		slog.ErrorContext(ctx, "error binding room SID to feedback record", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "correlated feedback record with room", "feedback_uid", record.UID)
	return nil
}

// HandleRoomFinished resolves the finished room to a feedback record and runs
// the analysis pipeline exactly once. A direct room SID match is preferred;
// when the participant_joined correlation never landed, orphan recovery
// searches recent records and transcript entries before giving up.
func (s *ReconciliationService) HandleRoomFinished(ctx context.Context, event *models.LiveKitWebhookEventMessage) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.NewUnavailableError("service not initialized")
	}

	if event.Room == nil || event.Room.SID == "" {
		slog.WarnContext(ctx, "room_finished event missing room SID")
		return nil
	}

	ctx = logging.AppendCtx(ctx, slog.String("room_sid", event.Room.SID))

	record, err := s.feedbackRepository.GetByRoomSID(ctx, event.Room.SID)
	if err != nil {
		if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			slog.ErrorContext(ctx, "error looking up feedback record by room SID", logging.ErrKey, err)
			return err
		}
		record, err = s.recoverOrphanedRecord(ctx, event.Room.SID)
		if err != nil {
			return err
		}
		if record == nil {
			slog.InfoContext(ctx, "no feedback record recoverable for finished room")
			return nil
		}
	}

	ctx = logging.AppendCtx(ctx, slog.String("feedback_uid", record.UID))

	if record.Status != models.FeedbackStatusInitiated {
		slog.InfoContext(ctx, "feedback record already handled", "status", record.Status)
		return nil
	}

	claimed, err := s.feedbackRepository.ClaimForAnalysis(ctx, record.UID)
	if err != nil {
		slog.ErrorContext(ctx, "error claiming feedback record for analysis", logging.ErrKey, err)
		return err
	}
	if !claimed {
		slog.InfoContext(ctx, "feedback record claimed by another worker")
		return nil
	}

	return s.analysisService.ProcessClaimed(ctx, record.UID)
}

// recoverOrphanedRecord locates the feedback record for a room whose SID was
// never correlated. Tier one scans recent uncorrelated records for transcript
// data; tier two follows recent transcript entry activity back to a record.
// A nil, nil return means recovery gave up, which is benign.
func (s *ReconciliationService) recoverOrphanedRecord(ctx context.Context, roomSID string) (*models.FeedbackRecord, error) {
	record, err := s.recoverByRecentRecords(ctx, roomSID)
	if err != nil || record != nil {
		return record, err
	}
	return s.recoverByRecentEntries(ctx, roomSID)
}

func (s *ReconciliationService) recoverByRecentRecords(ctx context.Context, roomSID string) (*models.FeedbackRecord, error) {
	since := time.Now().UTC().Add(-constants.OrphanRecordWindow)
	records, err := s.feedbackRepository.ListCreatedSince(ctx, since)
	if err != nil {
		slog.ErrorContext(ctx, "error listing recent feedback records", logging.ErrKey, err)
		return nil, err
	}

	var candidates []*models.FeedbackRecord
	for _, candidate := range records {
		if candidate.Status == models.FeedbackStatusInitiated && candidate.Session.RoomSID == "" {
			candidates = append(candidates, candidate)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return createdAfter(candidates[i], candidates[j])
	})

	for _, candidate := range candidates {
		hasData, err := s.hasTranscriptData(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if !hasData {
			continue
		}
		if err := s.feedbackRepository.SetRoomSID(ctx, candidate.UID, roomSID); err != nil {
			slog.ErrorContext(ctx, "error binding room SID to recovered record", logging.ErrKey, err)
			return nil, err
		}
		slog.InfoContext(ctx, "recovered orphaned feedback record from recent records", "feedback_uid", candidate.UID)
		return candidate, nil
	}

	return nil, nil
}

func (s *ReconciliationService) recoverByRecentEntries(ctx context.Context, roomSID string) (*models.FeedbackRecord, error) {
	since := time.Now().UTC().Add(-constants.OrphanEntryWindow)
	entries, err := s.entryRepository.ListCreatedSince(ctx, since)
	if err != nil {
		slog.ErrorContext(ctx, "error listing recent transcript entries", logging.ErrKey, err)
		return nil, err
	}

	feedbackUID := largestEntryGroup(entries)
	if feedbackUID == "" {
		return nil, nil
	}

	record, err := s.feedbackRepository.Get(ctx, feedbackUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "transcript entries reference a missing feedback record", "feedback_uid", feedbackUID)
			return nil, nil
		}
		slog.ErrorContext(ctx, "error getting feedback record for entry group", logging.ErrKey, err)
		return nil, err
	}

	if record.Status != models.FeedbackStatusInitiated {
		slog.InfoContext(ctx, "entry group record already handled", "feedback_uid", record.UID, "status", record.Status)
		return nil, nil
	}

	if err := s.feedbackRepository.SetRoomSID(ctx, record.UID, roomSID); err != nil {
		slog.ErrorContext(ctx, "error binding room SID to recovered record", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "recovered orphaned feedback record from transcript activity", "feedback_uid", record.UID)
	return record, nil
}

func (s *ReconciliationService) hasTranscriptData(ctx context.Context, record *models.FeedbackRecord) (bool, error) {
	if record.HasLegacyTranscript() {
		return true, nil
	}
	entries, err := s.entryRepository.ListByFeedback(ctx, record.UID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing transcript entries for candidate", logging.ErrKey, err)
		return false, err
	}
	return len(entries) > 0, nil
}

// largestEntryGroup groups entries by feedback record and returns the UID of
// the largest group, provided it is big enough to evidence a real session.
// Equal-sized groups break the tie by most recent entry activity.
func largestEntryGroup(entries []*models.TranscriptEntry) string {
	counts := make(map[string]int)
	latest := make(map[string]time.Time)
	for _, entry := range entries {
		counts[entry.FeedbackUID]++
		if entry.CreatedAt.After(latest[entry.FeedbackUID]) {
			latest[entry.FeedbackUID] = entry.CreatedAt
		}
	}

	var best string
	for uid, count := range counts {
		if count < constants.OrphanEntryMinCount {
			continue
		}
		if best == "" || count > counts[best] || (count == counts[best] && latest[uid].After(latest[best])) {
			best = uid
		}
	}
	return best
}

func createdAfter(a, b *models.FeedbackRecord) bool {
	if a.CreatedAt == nil {
		return false
	}
	if b.CreatedAt == nil {
		return true
	}
	return a.CreatedAt.After(*b.CreatedAt)
}
