// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nats-io/nats.go"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/logging"
	"github.com/hearsay-labs/feedback-service/internal/service"
)

// FeedbackAPI is the HTTP surface of the feedback service. It wires the
// domain services to their routes and owns error-to-status mapping.
type FeedbackAPI struct {
	webhookVerifier       domain.WebhookVerifier
	webhookService        *service.LiveKitWebhookService
	conversationService   *service.ConversationService
	callSessionService    *service.CallSessionService
	feedbackService       *service.FeedbackService
	reconciliationService *service.ReconciliationService
	natsConn              *nats.Conn
}

// NewFeedbackAPI creates the HTTP API with all of its services.
func NewFeedbackAPI(
	webhookVerifier domain.WebhookVerifier,
	webhookService *service.LiveKitWebhookService,
	conversationService *service.ConversationService,
	callSessionService *service.CallSessionService,
	feedbackService *service.FeedbackService,
	reconciliationService *service.ReconciliationService,
	natsConn *nats.Conn,
) *FeedbackAPI {
	return &FeedbackAPI{
		webhookVerifier:       webhookVerifier,
		webhookService:        webhookService,
		conversationService:   conversationService,
		callSessionService:    callSessionService,
		feedbackService:       feedbackService,
		reconciliationService: reconciliationService,
		natsConn:              natsConn,
	}
}

// Routes registers all handlers on a fresh mux.
func (api *FeedbackAPI) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /webhooks/livekit", api.handleLiveKitWebhook)

	mux.HandleFunc("GET /api/connection-details", api.handleConnectionDetails)

	mux.HandleFunc("POST /api/conversations", api.handleCreateConversation)
	mux.HandleFunc("GET /api/conversations", api.handleListConversations)
	mux.HandleFunc("GET /api/conversations/generate", api.handleGenerateAgent)
	mux.HandleFunc("GET /api/conversations/generated/{slug}", api.handleGetGeneratedAgent)
	mux.HandleFunc("GET /api/conversations/{uniqueName}", api.handleGetConversation)
	mux.HandleFunc("GET /api/conversations/{uniqueName}/feedback", api.handleListConversationFeedback)

	mux.HandleFunc("POST /api/feedback/{feedbackUID}/transcript", api.handleUpdateTranscript)
	mux.HandleFunc("POST /api/feedback/{feedbackUID}/entries", api.handleAppendEntries)
	mux.HandleFunc("POST /api/feedback/{feedbackUID}/summarize", api.handleSummarizeFeedback)

	mux.HandleFunc("GET /api/analysis/{feedbackUID}", api.handleGetAnalysis)
	mux.HandleFunc("POST /api/analysis/recent", api.handleRecentAnalysis)

	mux.HandleFunc("GET /livez", api.handleLivez)
	mux.HandleFunc("GET /readyz", api.handleReadyz)

	return mux
}

// ServiceReady reports whether every wired service can take traffic.
func (api *FeedbackAPI) ServiceReady() bool {
	return api.webhookService.ServiceReady() &&
		api.conversationService.ServiceReady() &&
		api.callSessionService.ServiceReady() &&
		api.feedbackService.ServiceReady() &&
		api.reconciliationService.ServiceReady() &&
		api.natsConn != nil && api.natsConn.IsConnected()
}

func (api *FeedbackAPI) handleLivez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (api *FeedbackAPI) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if !api.ServiceReady() {
		writeError(r.Context(), w, domain.NewUnavailableError("service not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// httpStatusForError maps domain error types to HTTP status codes.
func httpStatusForError(err error) int {
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeConflict:
		return http.StatusConflict
	case domain.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := httpStatusForError(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", logging.ErrKey, err)
	}

	message := "internal server error"
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	writeJSON(ctx, w, status, errorResponse{Error: message})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "error encoding response", logging.ErrKey, err)
	}
}

func decodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return domain.NewValidationError("invalid JSON body", err)
	}
	return nil
}
