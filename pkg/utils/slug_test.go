// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "Coffee Shop", expected: "coffee-shop"},
		{name: "punctuation collapses", input: "Bob's  Diner!!", expected: "bob-s-diner"},
		{name: "already slug", input: "my-agent-2", expected: "my-agent-2"},
		{name: "leading and trailing junk", input: "  ...Hotel Feedback?  ", expected: "hotel-feedback"},
		{name: "unicode dropped", input: "café réview", expected: "caf-r-view"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
