// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package models

import "time"

// Conversation is a feedback agent definition. UniqueName doubles as the
// LiveKit room name for calls against this agent, so it must be unique.
type Conversation struct {
	UID          string         `json:"uid"`
	UniqueName   string         `json:"unique_name"`
	SystemPrompt string         `json:"system_prompt"`
	Questions    []string       `json:"questions,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    *time.Time     `json:"created_at,omitempty"`
	UpdatedAt    *time.Time     `json:"updated_at,omitempty"`
}

// GeneratedAgent is a transient LLM-generated agent draft, keyed by slug and
// discarded after its expiry.
type GeneratedAgent struct {
	Slug         string    `json:"slug"`
	SystemPrompt string    `json:"system_prompt"`
	Questions    []string  `json:"questions,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsExpired reports whether the draft is past its expiry.
func (g *GeneratedAgent) IsExpired(now time.Time) bool {
	return now.After(g.ExpiresAt)
}
