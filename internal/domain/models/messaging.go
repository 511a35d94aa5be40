// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package models

// Webhook event names sent by LiveKit that this service reacts to.
const (
	WebhookEventParticipantJoined = "participant_joined"
	WebhookEventRoomFinished      = "room_finished"
)

// NATS subjects for LiveKit webhook event fan-out. The HTTP webhook endpoint
// publishes verified events here; the queue subscribers consume them.
const (
	LiveKitWebhookParticipantJoinedSubject = "feedback.webhook.livekit.participant_joined"
	LiveKitWebhookRoomFinishedSubject      = "feedback.webhook.livekit.room_finished"

	// LiveKitWebhookQueue is the queue group so only one instance handles
	// each event.
	LiveKitWebhookQueue = "feedback-service-queue"
)

// WebhookRoom is the room portion of a LiveKit webhook event.
type WebhookRoom struct {
	SID  string `json:"sid"`
	Name string `json:"name"`
}

// WebhookParticipant is the participant portion of a LiveKit webhook event.
type WebhookParticipant struct {
	SID      string `json:"sid,omitempty"`
	Identity string `json:"identity"`
}

// LiveKitWebhookEventMessage is the verified webhook event as published to
// NATS for asynchronous processing.
type LiveKitWebhookEventMessage struct {
	Event       string              `json:"event"`
	ID          string              `json:"id,omitempty"`
	CreatedAt   int64               `json:"created_at,omitempty"`
	Room        *WebhookRoom        `json:"room,omitempty"`
	Participant *WebhookParticipant `json:"participant,omitempty"`
}
