// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package models

// ConnectionDetails is everything a client needs to join a feedback call:
// the LiveKit server, the room, a short-lived join token, and the UID of the
// feedback record created for this session.
// Field names follow the LiveKit client SDK conventions.
type ConnectionDetails struct {
	ServerURL        string `json:"serverUrl"`
	RoomName         string `json:"roomName"`
	ParticipantName  string `json:"participantName"`
	ParticipantToken string `json:"participantToken"`
	FeedbackUID      string `json:"feedbackUid"`
}
