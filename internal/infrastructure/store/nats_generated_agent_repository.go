// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// NatsGeneratedAgentRepository is the NATS KV store repository for transient
// LLM-generated agent drafts, keyed by slug. Expiry is enforced by the
// service layer on read.
type NatsGeneratedAgentRepository struct {
	*NatsBaseRepository[models.GeneratedAgent]
}

// NewNatsGeneratedAgentRepository creates a new NATS KV generated agent repository.
func NewNatsGeneratedAgentRepository(kvStore INatsKeyValue) *NatsGeneratedAgentRepository {
	return &NatsGeneratedAgentRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.GeneratedAgent](kvStore, "generated agent"),
	}
}

// Put stores a draft under its slug, replacing any previous draft with the
// same slug.
func (r *NatsGeneratedAgentRepository) Put(ctx context.Context, agent *models.GeneratedAgent) error {
	return r.NatsBaseRepository.Create(ctx, agent.Slug, agent)
}

// Get retrieves a draft by slug.
func (r *NatsGeneratedAgentRepository) Get(ctx context.Context, slug string) (*models.GeneratedAgent, error) {
	return r.NatsBaseRepository.Get(ctx, slug)
}

// Delete removes a draft, used for lazy cleanup of expired slugs.
func (r *NatsGeneratedAgentRepository) Delete(ctx context.Context, slug string) error {
	return r.DeleteWithoutRevision(ctx, slug)
}
