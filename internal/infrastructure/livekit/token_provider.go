// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package livekit

import (
	"time"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/livekit/protocol/auth"
)

// TokenProvider mints LiveKit access tokens for call participants.
type TokenProvider struct {
	apiKey    string
	apiSecret string
}

// NewTokenProvider creates a token provider for the given LiveKit credentials.
func NewTokenProvider(apiKey, apiSecret string) *TokenProvider {
	return &TokenProvider{
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

var _ domain.CallTokenProvider = (*TokenProvider)(nil)

// MintJoinToken creates a join token scoped to a single room.
func (p *TokenProvider) MintJoinToken(identity, displayName, roomName string, ttl time.Duration) (string, error) {
	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     roomName,
	}

	token := auth.NewAccessToken(p.apiKey, p.apiSecret).
		SetIdentity(identity).
		SetName(displayName).
		SetVideoGrant(grant).
		SetValidFor(ttl)

	jwt, err := token.ToJWT()
	if err != nil {
		return "", domain.NewInternalError("failed to sign join token", err)
	}
	return jwt, nil
}
