// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"

	"github.com/hearsay-labs/feedback-service/internal/logging"
)

type webhookResponse struct {
	Status string `json:"status"`
}

// handleLiveKitWebhook verifies an inbound LiveKit webhook delivery and fans
// it out to NATS. Verification failures get 401/400; once the delivery is
// authenticated it is always acknowledged with 200 so LiveKit does not
// retry events we have already accepted.
func (api *FeedbackAPI) handleLiveKitWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	event, err := api.webhookVerifier.VerifyRequest(r)
	if err != nil {
		slog.WarnContext(ctx, "rejected webhook delivery", logging.ErrKey, err)
		writeError(ctx, w, err)
		return
	}

	if err := api.webhookService.ProcessWebhookEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "error processing webhook event", logging.ErrKey, err, "event", event.Event)
	}

	writeJSON(ctx, w, http.StatusOK, webhookResponse{Status: "ok"})
}
