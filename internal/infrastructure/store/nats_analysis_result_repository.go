// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// NatsAnalysisResultRepository is the NATS KV store repository for analysis
// results, keyed "<feedbackUID>.<resultUID>".
type NatsAnalysisResultRepository struct {
	*NatsBaseRepository[models.AnalysisResult]
	keyBuilder *KeyBuilder
}

// NewNatsAnalysisResultRepository creates a new NATS KV analysis result repository.
func NewNatsAnalysisResultRepository(kvStore INatsKeyValue) *NatsAnalysisResultRepository {
	return &NatsAnalysisResultRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.AnalysisResult](kvStore, "analysis result"),
		keyBuilder:         NewKeyBuilder(),
	}
}

// Create stores a new analysis result.
func (r *NatsAnalysisResultRepository) Create(ctx context.Context, result *models.AnalysisResult) error {
	key := r.keyBuilder.EntryKey(result.FeedbackUID, result.UID)
	return r.NatsBaseRepository.Create(ctx, key, result)
}

// ListByFeedback lists all analysis results stored for a feedback record.
func (r *NatsAnalysisResultRepository) ListByFeedback(ctx context.Context, feedbackUID string) ([]*models.AnalysisResult, error) {
	return r.ListEntities(ctx, r.keyBuilder.EntryKeyPrefix(feedbackUID))
}

// LatestByFeedback returns the most recently created analysis result for a
// feedback record.
func (r *NatsAnalysisResultRepository) LatestByFeedback(ctx context.Context, feedbackUID string) (*models.AnalysisResult, error) {
	results, err := r.ListByFeedback(ctx, feedbackUID)
	if err != nil {
		return nil, err
	}

	var latest *models.AnalysisResult
	for _, result := range results {
		if latest == nil || result.CreatedAt.After(latest.CreatedAt) {
			latest = result
		}
	}

	if latest == nil {
		return nil, domain.NewNotFoundError("no analysis found for feedback")
	}
	return latest, nil
}
