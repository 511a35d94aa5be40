// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"sort"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// NatsConversationRepository is the NATS KV store repository for agent
// definitions. Conversations are keyed by UID; a secondary encoded index key
// maps the unique name to the UID for lookup by name.
type NatsConversationRepository struct {
	*NatsBaseRepository[models.Conversation]
	keyBuilder *KeyBuilder
}

// NewNatsConversationRepository creates a new NATS KV conversation repository.
func NewNatsConversationRepository(kvStore INatsKeyValue) *NatsConversationRepository {
	return &NatsConversationRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Conversation](kvStore, "conversation"),
		keyBuilder:         NewKeyBuilder(),
	}
}

func (r *NatsConversationRepository) uniqueNameIndexKey(uniqueName string) string {
	return r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexUniqueName, uniqueName)
}

// Create stores a new conversation and its unique-name index entry.
func (r *NatsConversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	if err := r.NatsBaseRepository.Create(ctx, conversation.UID, conversation); err != nil {
		return err
	}
	return r.PutIndex(ctx, r.uniqueNameIndexKey(conversation.UniqueName), conversation.UID)
}

// Get retrieves a conversation by UID.
func (r *NatsConversationRepository) Get(ctx context.Context, conversationUID string) (*models.Conversation, error) {
	return r.NatsBaseRepository.Get(ctx, conversationUID)
}

// GetByUniqueName resolves the unique-name index and fetches the conversation.
func (r *NatsConversationRepository) GetByUniqueName(ctx context.Context, uniqueName string) (*models.Conversation, error) {
	conversationUID, err := r.GetIndex(ctx, r.uniqueNameIndexKey(uniqueName))
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, domain.NewNotFoundError("conversation not found", err)
		}
		return nil, err
	}
	return r.Get(ctx, conversationUID)
}

// UniqueNameExists checks whether a conversation already uses the name.
func (r *NatsConversationRepository) UniqueNameExists(ctx context.Context, uniqueName string) (bool, error) {
	_, err := r.GetIndex(ctx, r.uniqueNameIndexKey(uniqueName))
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListRecent lists conversations most recent first up to the given limit.
// Index keys contain a dot from base64 encoding, so entity keys are plain
// UUIDs and can be filtered apart from them.
func (r *NatsConversationRepository) ListRecent(ctx context.Context, limit int) ([]*models.Conversation, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	var conversations []*models.Conversation
	for _, key := range keys {
		if matchesPattern(key, ".") {
			continue
		}
		conversation, err := r.Get(ctx, key)
		if err != nil {
			continue
		}
		conversations = append(conversations, conversation)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i].CreatedAt, conversations[j].CreatedAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})

	if limit > 0 && len(conversations) > limit {
		conversations = conversations[:limit]
	}
	return conversations, nil
}
