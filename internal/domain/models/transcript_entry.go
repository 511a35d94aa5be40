// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package models

import (
	"sort"
	"time"
)

// TranscriptRole identifies the speaker of a transcript entry.
type TranscriptRole string

const (
	TranscriptRoleUser      TranscriptRole = "user"
	TranscriptRoleAssistant TranscriptRole = "assistant"
	TranscriptRoleUnknown   TranscriptRole = "unknown"
)

// IsValid checks whether the role is one of the known speaker roles.
func (r TranscriptRole) IsValid() bool {
	switch r {
	case TranscriptRoleUser, TranscriptRoleAssistant, TranscriptRoleUnknown:
		return true
	}
	return false
}

// EntryMetadata holds optional per-utterance details reported by the
// transcription provider.
type EntryMetadata struct {
	StartOffset float64 `json:"start_offset,omitempty"`
	EndOffset   float64 `json:"end_offset,omitempty"`
	Language    string  `json:"language,omitempty"`
	Final       bool    `json:"final,omitempty"`
}

// TranscriptEntry is a single utterance captured during a call. Entries are
// immutable once stored; the canonical transcript ordering is by Timestamp,
// not insertion order.
type TranscriptEntry struct {
	UID         string         `json:"uid"`
	FeedbackUID string         `json:"feedback_uid"`
	Role        TranscriptRole `json:"role"`
	Content     string         `json:"content"`
	MessageID   string         `json:"message_id,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    *EntryMetadata `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// SortTranscriptEntries orders entries chronologically by their utterance
// timestamp, falling back to creation time for equal timestamps.
func SortTranscriptEntries(entries []*TranscriptEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}
