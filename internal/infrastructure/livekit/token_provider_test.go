// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package livekit

import (
	"testing"
	"time"

	"github.com/livekit/protocol/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenProvider_MintJoinToken(t *testing.T) {
	provider := NewTokenProvider(testAPIKey, testAPISecret)

	jwt, err := provider.MintJoinToken("voice_assistant_user_1", "voice_assistant_user_1", "coffee-shop", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, jwt)

	token, err := auth.ParseAPIToken(jwt)
	require.NoError(t, err)
	assert.Equal(t, testAPIKey, token.APIKey())

	claims, err := token.Verify(testAPISecret)
	require.NoError(t, err)
	assert.Equal(t, "voice_assistant_user_1", token.Identity())
	require.NotNil(t, claims.Video)
	assert.True(t, claims.Video.RoomJoin)
	assert.Equal(t, "coffee-shop", claims.Video.Room)
}
