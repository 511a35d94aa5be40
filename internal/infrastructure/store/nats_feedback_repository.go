// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// NatsFeedbackRepository is the NATS KV store repository for feedback records.
// Records are keyed by their UID. Status transitions use revision-based
// compare-and-swap so that concurrent webhook deliveries cannot both claim
// the same record.
type NatsFeedbackRepository struct {
	*NatsBaseRepository[models.FeedbackRecord]
}

// NewNatsFeedbackRepository creates a new NATS KV feedback repository.
func NewNatsFeedbackRepository(kvStore INatsKeyValue) *NatsFeedbackRepository {
	return &NatsFeedbackRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.FeedbackRecord](kvStore, "feedback"),
	}
}

// Create stores a new feedback record keyed by its UID.
func (r *NatsFeedbackRepository) Create(ctx context.Context, record *models.FeedbackRecord) error {
	return r.NatsBaseRepository.Create(ctx, record.UID, record)
}

// Get retrieves a feedback record by UID.
func (r *NatsFeedbackRepository) Get(ctx context.Context, feedbackUID string) (*models.FeedbackRecord, error) {
	return r.NatsBaseRepository.Get(ctx, feedbackUID)
}

// Exists checks whether a feedback record exists.
func (r *NatsFeedbackRepository) Exists(ctx context.Context, feedbackUID string) (bool, error) {
	return r.NatsBaseRepository.Exists(ctx, feedbackUID)
}

// GetByRoomSID finds the feedback record correlated with a room SID.
func (r *NatsFeedbackRepository) GetByRoomSID(ctx context.Context, roomSID string) (*models.FeedbackRecord, error) {
	records, err := r.ListEntities(ctx, "")
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if record.Session.RoomSID == roomSID {
			return record, nil
		}
	}

	return nil, domain.NewNotFoundError("no feedback found for room SID")
}

// LatestInitiatedByParticipant finds the most recently created record for a
// participant identity that is still in the initiated state.
func (r *NatsFeedbackRepository) LatestInitiatedByParticipant(ctx context.Context, participantIdentity string) (*models.FeedbackRecord, error) {
	records, err := r.ListEntities(ctx, "")
	if err != nil {
		return nil, err
	}

	var latest *models.FeedbackRecord
	for _, record := range records {
		if record.Session.ParticipantIdentity != participantIdentity {
			continue
		}
		if record.Status != models.FeedbackStatusInitiated {
			continue
		}
		if latest == nil || createdAfter(record, latest) {
			latest = record
		}
	}

	if latest == nil {
		return nil, domain.NewNotFoundError("no initiated feedback found for participant")
	}
	return latest, nil
}

// ListCreatedSince lists records created at or after the given time, most
// recent first.
func (r *NatsFeedbackRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]*models.FeedbackRecord, error) {
	records, err := r.ListEntities(ctx, "")
	if err != nil {
		return nil, err
	}

	var matched []*models.FeedbackRecord
	for _, record := range records {
		if record.CreatedAt != nil && !record.CreatedAt.Before(since) {
			matched = append(matched, record)
		}
	}

	sortRecordsNewestFirst(matched)
	return matched, nil
}

// ListByConversation lists records belonging to a conversation, optionally
// filtered by status, most recent first.
func (r *NatsFeedbackRepository) ListByConversation(ctx context.Context, conversationUID string, status *models.FeedbackStatus) ([]*models.FeedbackRecord, error) {
	records, err := r.ListEntities(ctx, "")
	if err != nil {
		return nil, err
	}

	var matched []*models.FeedbackRecord
	for _, record := range records {
		if record.ConversationUID != conversationUID {
			continue
		}
		if status != nil && record.Status != *status {
			continue
		}
		matched = append(matched, record)
	}

	sortRecordsNewestFirst(matched)
	return matched, nil
}

// ListRecent lists the most recently created records up to the given limit.
func (r *NatsFeedbackRepository) ListRecent(ctx context.Context, limit int) ([]*models.FeedbackRecord, error) {
	records, err := r.ListEntities(ctx, "")
	if err != nil {
		return nil, err
	}

	sortRecordsNewestFirst(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// SetRoomSID stamps the room SID onto the record's session metadata. The
// write is idempotent: if a SID is already present the record is untouched,
// so duplicate participant_joined deliveries are harmless.
func (r *NatsFeedbackRepository) SetRoomSID(ctx context.Context, feedbackUID string, roomSID string) error {
	for {
		record, revision, err := r.GetWithRevision(ctx, feedbackUID)
		if err != nil {
			return err
		}

		if !record.Session.MergeRoomSID(roomSID) {
			if record.Session.RoomSID != roomSID {
				slog.WarnContext(ctx, "feedback already correlated with a different room",
					"feedback_uid", feedbackUID,
					"existing_room_sid", record.Session.RoomSID,
					"room_sid", roomSID)
			}
			return nil
		}

		now := time.Now().UTC()
		record.UpdatedAt = &now

		err = r.Update(ctx, feedbackUID, record, revision)
		if err == nil {
			return nil
		}
		if domain.GetErrorType(err) != domain.ErrorTypeConflict {
			return err
		}
		// Revision conflict, re-read and retry.
	}
}

// UpdateTranscript replaces the legacy whole-transcript blob.
func (r *NatsFeedbackRepository) UpdateTranscript(ctx context.Context, feedbackUID string, transcript []models.TranscriptTurn) error {
	for {
		record, revision, err := r.GetWithRevision(ctx, feedbackUID)
		if err != nil {
			return err
		}

		record.Transcript = transcript
		now := time.Now().UTC()
		record.UpdatedAt = &now

		err = r.Update(ctx, feedbackUID, record, revision)
		if err == nil {
			return nil
		}
		if domain.GetErrorType(err) != domain.ErrorTypeConflict {
			return err
		}
	}
}

// ClaimForAnalysis attempts the initiated -> processing transition. It
// returns true only for the single caller whose compare-and-swap lands; all
// concurrent duplicates observe a non-initiated status and get false.
func (r *NatsFeedbackRepository) ClaimForAnalysis(ctx context.Context, feedbackUID string) (bool, error) {
	for {
		record, revision, err := r.GetWithRevision(ctx, feedbackUID)
		if err != nil {
			return false, err
		}

		if record.Status != models.FeedbackStatusInitiated {
			slog.DebugContext(ctx, "feedback not claimable",
				"feedback_uid", feedbackUID, "status", record.Status)
			return false, nil
		}

		record.Status = models.FeedbackStatusProcessing
		now := time.Now().UTC()
		record.UpdatedAt = &now

		err = r.Update(ctx, feedbackUID, record, revision)
		if err == nil {
			return true, nil
		}
		if domain.GetErrorType(err) != domain.ErrorTypeConflict {
			return false, err
		}
		// Someone else wrote concurrently, re-read and re-evaluate the status.
	}
}

// ReleaseClaim reverts processing -> initiated so the record can be claimed
// again later. Releasing a record that is not processing is a logged no-op.
func (r *NatsFeedbackRepository) ReleaseClaim(ctx context.Context, feedbackUID string) error {
	for {
		record, revision, err := r.GetWithRevision(ctx, feedbackUID)
		if err != nil {
			return err
		}

		if record.Status != models.FeedbackStatusProcessing {
			slog.WarnContext(ctx, "release requested for feedback that is not processing",
				"feedback_uid", feedbackUID, "status", record.Status)
			return nil
		}

		record.Status = models.FeedbackStatusInitiated
		now := time.Now().UTC()
		record.UpdatedAt = &now

		err = r.Update(ctx, feedbackUID, record, revision)
		if err == nil {
			return nil
		}
		if domain.GetErrorType(err) != domain.ErrorTypeConflict {
			return err
		}
	}
}

// CompleteWithSummary finishes the processing -> completed transition and
// stores the analysis summary on the record.
func (r *NatsFeedbackRepository) CompleteWithSummary(ctx context.Context, feedbackUID string, summary string) error {
	for {
		record, revision, err := r.GetWithRevision(ctx, feedbackUID)
		if err != nil {
			return err
		}

		if record.Status == models.FeedbackStatusCompleted {
			// Already completed, nothing to do.
			return nil
		}
		if record.Status != models.FeedbackStatusProcessing {
			slog.ErrorContext(ctx, "completion requested for feedback without an active claim",
				"feedback_uid", feedbackUID, "status", record.Status)
			return domain.NewConflictError("feedback is not being processed")
		}

		record.Status = models.FeedbackStatusCompleted
		record.FeedbackSummary = summary
		now := time.Now().UTC()
		record.UpdatedAt = &now

		err = r.Update(ctx, feedbackUID, record, revision)
		if err == nil {
			return nil
		}
		if domain.GetErrorType(err) != domain.ErrorTypeConflict {
			return err
		}
	}
}

func sortRecordsNewestFirst(records []*models.FeedbackRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return createdAfter(records[i], records[j])
	})
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
