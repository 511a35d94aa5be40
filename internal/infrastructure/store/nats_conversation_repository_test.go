// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"
	"time"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConversation(uid, uniqueName string, createdAt time.Time) *models.Conversation {
	return &models.Conversation{
		UID:          uid,
		UniqueName:   uniqueName,
		SystemPrompt: "You are a feedback agent.",
		Questions:    []string{"How was your experience?"},
		CreatedAt:    utils.TimePtr(createdAt),
	}
}

func TestNatsConversationRepository_CreateAndGetByUniqueName(t *testing.T) {
	repo := NewNatsConversationRepository(newMockNatsKeyValue())
	ctx := context.Background()

	conversation := newTestConversation("conv-1", "coffee-shop", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, conversation))

	got, err := repo.GetByUniqueName(ctx, "coffee-shop")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", got.UID)
	assert.Equal(t, "You are a feedback agent.", got.SystemPrompt)

	exists, err := repo.UniqueNameExists(ctx, "coffee-shop")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UniqueNameExists(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNatsConversationRepository_GetByUniqueNameNotFound(t *testing.T) {
	repo := NewNatsConversationRepository(newMockNatsKeyValue())

	_, err := repo.GetByUniqueName(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestNatsConversationRepository_ListRecentSkipsIndexKeys(t *testing.T) {
	repo := NewNatsConversationRepository(newMockNatsKeyValue())
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, newTestConversation("conv-1", "first", now.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, newTestConversation("conv-2", "second", now)))

	conversations, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, conversations, 2, "index entries must not leak into listings")
	assert.Equal(t, "conv-2", conversations[0].UID)

	limited, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "conv-2", limited[0].UID)
}
