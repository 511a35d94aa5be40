// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// FeedbackStatus is the lifecycle state of a feedback record.
type FeedbackStatus string

const (
	// FeedbackStatusInitiated means the record was created at call start and
	// has not been analyzed yet.
	FeedbackStatusInitiated FeedbackStatus = "initiated"
	// FeedbackStatusProcessing means a worker holds the analysis claim.
	FeedbackStatusProcessing FeedbackStatus = "processing"
	// FeedbackStatusCompleted means analysis finished and a summary is stored.
	FeedbackStatusCompleted FeedbackStatus = "completed"
	// FeedbackStatusDropped means the session was abandoned.
	FeedbackStatusDropped FeedbackStatus = "dropped"
)

// IsValid checks whether the status is one of the known lifecycle states.
func (s FeedbackStatus) IsValid() bool {
	switch s {
	case FeedbackStatusInitiated, FeedbackStatusProcessing, FeedbackStatusCompleted, FeedbackStatusDropped:
		return true
	}
	return false
}

// IsTerminal reports whether the status can never transition again.
func (s FeedbackStatus) IsTerminal() bool {
	return s == FeedbackStatusCompleted || s == FeedbackStatusDropped
}

// TranscriptTurn is one exchange in the legacy whole-transcript blob that
// clients may post at the end of a call. Per-utterance ingestion uses
// [TranscriptEntry] instead.
type TranscriptTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionMetadata carries the correlation keys that bind a feedback record to
// a real-time voice session. ParticipantIdentity is set once at creation;
// RoomSID arrives later via webhook and is set at most once.
type SessionMetadata struct {
	ParticipantIdentity string `json:"participant_identity,omitempty"`
	RoomSID             string `json:"room_sid,omitempty"`
}

// MergeRoomSID records the room SID if it is not already set. It returns true
// when the metadata changed. An already-set SID is never overwritten, so
// duplicate webhook deliveries are no-ops.
func (m *SessionMetadata) MergeRoomSID(roomSID string) bool {
	if roomSID == "" || m.RoomSID != "" {
		return false
	}
	m.RoomSID = roomSID
	return true
}

// FeedbackRecord is a single feedback-gathering call session.
type FeedbackRecord struct {
	UID             string           `json:"uid"`
	ConversationUID string           `json:"conversation_uid"`
	Status          FeedbackStatus   `json:"status"`
	Transcript      []TranscriptTurn `json:"transcript,omitempty"`
	Session         SessionMetadata  `json:"session"`
	FeedbackSummary string           `json:"feedback_summary,omitempty"`
	CreatedAt       *time.Time       `json:"created_at,omitempty"`
	UpdatedAt       *time.Time       `json:"updated_at,omitempty"`
}

// HasLegacyTranscript reports whether the record carries a non-empty
// whole-transcript blob.
func (f *FeedbackRecord) HasLegacyTranscript() bool {
	for _, turn := range f.Transcript {
		if turn.Content != "" {
			return true
		}
	}
	return false
}
