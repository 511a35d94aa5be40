// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"time"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// NatsTranscriptEntryRepository is the NATS KV store repository for
// per-utterance transcript entries. Entries are keyed
// "<feedbackUID>.<entryUID>" so all entries of one feedback record share a
// key prefix.
type NatsTranscriptEntryRepository struct {
	*NatsBaseRepository[models.TranscriptEntry]
	keyBuilder *KeyBuilder
}

// NewNatsTranscriptEntryRepository creates a new NATS KV transcript entry repository.
func NewNatsTranscriptEntryRepository(kvStore INatsKeyValue) *NatsTranscriptEntryRepository {
	return &NatsTranscriptEntryRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.TranscriptEntry](kvStore, "transcript entry"),
		keyBuilder:         NewKeyBuilder(),
	}
}

// Create stores a new transcript entry.
func (r *NatsTranscriptEntryRepository) Create(ctx context.Context, entry *models.TranscriptEntry) error {
	key := r.keyBuilder.EntryKey(entry.FeedbackUID, entry.UID)
	return r.NatsBaseRepository.Create(ctx, key, entry)
}

// ListByFeedback lists all entries of a feedback record ordered by their
// utterance timestamp.
func (r *NatsTranscriptEntryRepository) ListByFeedback(ctx context.Context, feedbackUID string) ([]*models.TranscriptEntry, error) {
	entries, err := r.ListEntities(ctx, r.keyBuilder.EntryKeyPrefix(feedbackUID))
	if err != nil {
		return nil, err
	}

	models.SortTranscriptEntries(entries)
	return entries, nil
}

// ListCreatedSince lists entries created at or after the given time across
// all feedback records.
func (r *NatsTranscriptEntryRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]*models.TranscriptEntry, error) {
	entries, err := r.ListEntities(ctx, "")
	if err != nil {
		return nil, err
	}

	var matched []*models.TranscriptEntry
	for _, entry := range entries {
		if !entry.CreatedAt.Before(since) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}
