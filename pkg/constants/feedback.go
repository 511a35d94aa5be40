// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Orphan recovery windows. When a room_finished event cannot be matched by
// room SID, recovery only considers data recent enough to plausibly belong
// to the just-finished session.
const (
	// OrphanRecordWindow bounds how old an uncorrelated feedback record may
	// be to qualify for recovery.
	OrphanRecordWindow = time.Hour

	// OrphanEntryWindow bounds how old transcript entries may be when
	// grouping them to locate an active session.
	OrphanEntryWindow = 30 * time.Minute

	// OrphanEntryMinCount is the minimum size of an entry group before it is
	// trusted as evidence of a real session.
	OrphanEntryMinCount = 2
)

// Call session constants.
const (
	// ParticipantTokenTTL is the validity window of a LiveKit join token.
	ParticipantTokenTTL = 15 * time.Minute

	// ParticipantIdentityPrefix prefixes every generated participant
	// identity so agent and egress participants are distinguishable.
	ParticipantIdentityPrefix = "voice_assistant_user_"
)

// GeneratedAgentTTL is how long an LLM-generated agent draft stays
// retrievable.
const GeneratedAgentTTL = 24 * time.Hour

// API listing limits.
const (
	// DefaultListLimit bounds list endpoints when no limit is given.
	DefaultListLimit = 50

	// RecentFeedbackLimit bounds the recent-analysis endpoint.
	RecentFeedbackLimit = 20

	// AnalysisPreviewLength is the truncation length for summary previews.
	AnalysisPreviewLength = 150
)
