// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package domain

import (
	"net/http"
	"time"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

// WebhookVerifier authenticates an inbound webhook request against the
// provider's signing credentials and decodes the event payload. Verification
// failures carry ErrorTypeUnauthorized; malformed payloads carry
// ErrorTypeValidation.
type WebhookVerifier interface {
	VerifyRequest(r *http.Request) (*models.LiveKitWebhookEventMessage, error)
}

// CallTokenProvider mints short-lived join tokens for feedback call sessions.
type CallTokenProvider interface {
	MintJoinToken(identity, displayName, roomName string, ttl time.Duration) (string, error)
}
