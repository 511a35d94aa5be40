// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package models

import "time"

// AnalysisTypeGeneral is the default analysis performed after every call.
const AnalysisTypeGeneral = "general"

// Analysis is the structured output of the LLM transcript analysis.
type Analysis struct {
	Summary      string   `json:"summary"`
	Sentiment    string   `json:"sentiment"`
	Topics       []string `json:"topics"`
	Insights     []string `json:"insights"`
	Satisfaction string   `json:"satisfaction"`
}

// AnalysisResult is a persisted analysis for a feedback record. At most one
// result is written per completed record.
type AnalysisResult struct {
	UID          string    `json:"uid"`
	FeedbackUID  string    `json:"feedback_uid"`
	Analysis     Analysis  `json:"analysis"`
	AnalysisType string    `json:"analysis_type"`
	LLMModel     string    `json:"llm_model"`
	CreatedAt    time.Time `json:"created_at"`
}
