// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

// Package livekit integrates with the LiveKit realtime platform: webhook
// signature verification and join token minting.
package livekit

import (
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/livekit/protocol/auth"
	lkproto "github.com/livekit/protocol/livekit"
	"google.golang.org/protobuf/encoding/protojson"
)

// WebhookVerifier authenticates LiveKit webhook deliveries. LiveKit signs
// each delivery with a JWT in the Authorization header whose sha256 claim is
// the digest of the raw body.
type WebhookVerifier struct {
	apiKey    string
	apiSecret string
}

// NewWebhookVerifier creates a verifier for the given LiveKit credentials.
func NewWebhookVerifier(apiKey, apiSecret string) *WebhookVerifier {
	return &WebhookVerifier{
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

var _ domain.WebhookVerifier = (*WebhookVerifier)(nil)

// VerifyRequest checks the delivery signature and decodes the event payload.
func (v *WebhookVerifier) VerifyRequest(r *http.Request) (*models.LiveKitWebhookEventMessage, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, domain.NewValidationError("failed to read webhook body", err)
	}

	authToken := r.Header.Get("Authorization")
	if authToken == "" {
		return nil, domain.NewUnauthorizedError("missing authorization header")
	}

	token, err := auth.ParseAPIToken(authToken)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid authorization token", err)
	}
	if token.APIKey() != v.apiKey {
		return nil, domain.NewUnauthorizedError("unknown API key")
	}

	claims, err := token.Verify(v.apiSecret)
	if err != nil {
		return nil, domain.NewUnauthorizedError("webhook signature verification failed", err)
	}

	digest := sha256.Sum256(body)
	if claims.Sha256 != base64.StdEncoding.EncodeToString(digest[:]) {
		return nil, domain.NewUnauthorizedError("webhook body hash mismatch")
	}

	var event lkproto.WebhookEvent
	unmarshalOpts := protojson.UnmarshalOptions{DiscardUnknown: true, AllowPartial: true}
	if err := unmarshalOpts.Unmarshal(body, &event); err != nil {
		return nil, domain.NewValidationError("malformed webhook payload", err)
	}
	if event.Event == "" {
		return nil, domain.NewValidationError("webhook payload missing event name")
	}

	return convertWebhookEvent(&event), nil
}

func convertWebhookEvent(event *lkproto.WebhookEvent) *models.LiveKitWebhookEventMessage {
	message := &models.LiveKitWebhookEventMessage{
		Event:     event.Event,
		ID:        event.Id,
		CreatedAt: event.CreatedAt,
	}
	if event.Room != nil {
		message.Room = &models.WebhookRoom{
			SID:  event.Room.Sid,
			Name: event.Room.Name,
		}
	}
	if event.Participant != nil {
		message.Participant = &models.WebhookParticipant{
			SID:      event.Participant.Sid,
			Identity: event.Participant.Identity,
		}
	}
	return message
}
