// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"

	"github.com/hearsay-labs/feedback-service/internal/domain/models"
)

type updateTranscriptRequest struct {
	Transcript []models.TranscriptTurn `json:"transcript"`
}

func (api *FeedbackAPI) handleUpdateTranscript(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload updateTranscriptRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := api.feedbackService.UpdateLegacyTranscript(ctx, r.PathValue("feedbackUID"), payload.Transcript); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, webhookResponse{Status: "ok"})
}

type appendEntriesRequest struct {
	Entries []*models.TranscriptEntry `json:"entries"`
}

type appendEntriesResponse struct {
	Stored int `json:"stored"`
}

func (api *FeedbackAPI) handleAppendEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload appendEntriesRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	stored, err := api.feedbackService.AppendEntries(ctx, r.PathValue("feedbackUID"), payload.Entries)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, appendEntriesResponse{Stored: len(stored)})
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

func (api *FeedbackAPI) handleSummarizeFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := api.feedbackService.Summarize(ctx, r.PathValue("feedbackUID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, summarizeResponse{Summary: summary})
}

type analysisResponse struct {
	Feedback      *models.FeedbackRecord    `json:"feedback"`
	Entries       []*models.TranscriptEntry `json:"entries"`
	Analysis      *models.AnalysisResult    `json:"analysis,omitempty"`
	HasTranscript bool                      `json:"has_transcript"`
}

func (api *FeedbackAPI) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bundle, err := api.feedbackService.GetAnalysisBundle(ctx, r.PathValue("feedbackUID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, analysisResponse{
		Feedback:      bundle.Feedback,
		Entries:       bundle.Entries,
		Analysis:      bundle.Analysis,
		HasTranscript: len(bundle.Entries) > 0 || bundle.Feedback.HasLegacyTranscript(),
	})
}

func (api *FeedbackAPI) handleRecentAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overviews, err := api.feedbackService.ListRecentWithAnalysis(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, overviews)
}
