// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

func (api *FeedbackAPI) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload models.Conversation
	if err := decodeJSON(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	conversation, err := api.conversationService.CreateConversation(ctx, &payload)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, conversation)
}

func (api *FeedbackAPI) handleListConversations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conversations, err := api.conversationService.ListConversations(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if conversations == nil {
		conversations = []*models.Conversation{}
	}
	writeJSON(ctx, w, http.StatusOK, conversations)
}

func (api *FeedbackAPI) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conversation, err := api.conversationService.GetConversationByUniqueName(ctx, r.PathValue("uniqueName"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, conversation)
}

func (api *FeedbackAPI) handleListConversationFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conversation, err := api.conversationService.GetConversationByUniqueName(ctx, r.PathValue("uniqueName"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	records, err := api.feedbackService.ListByConversation(ctx, conversation.UID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if records == nil {
		records = []*models.FeedbackRecord{}
	}
	writeJSON(ctx, w, http.StatusOK, records)
}

func (api *FeedbackAPI) handleGenerateAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agent, err := api.conversationService.GenerateAgent(ctx, r.URL.Query().Get("userprompt"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, agent)
}

func (api *FeedbackAPI) handleGetGeneratedAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agent, err := api.conversationService.GetGeneratedAgent(ctx, r.PathValue("slug"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, agent)
}

func (api *FeedbackAPI) handleConnectionDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uniqueName := r.URL.Query().Get("conversation")
	if uniqueName == "" {
		writeError(ctx, w, domain.NewValidationError("conversation query parameter is required"))
		return
	}

	details, err := api.callSessionService.StartCall(ctx, uniqueName, r.URL.Query().Get("participantName"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, details)
}
