// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package store

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// Common key prefixes
const (
	// Index prefixes
	KeyPrefixIndex           = "index"
	KeyPrefixIndexUniqueName = "unique-name"
)

// entryKeySeparator joins the feedback UID and entry UID in transcript entry
// keys. UIDs are UUIDs, so the separator can never appear inside either part.
const entryKeySeparator = "."

// KeyBuilder provides utilities for building consistent NATS KV keys
type KeyBuilder struct{}

// NewKeyBuilder creates a new key builder
func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{}
}

// EntryKey builds the key for a transcript entry scoped to its feedback
// record (e.g. "<feedbackUID>.<entryUID>")
func (kb *KeyBuilder) EntryKey(feedbackUID, entryUID string) string {
	return feedbackUID + entryKeySeparator + entryUID
}

// EntryKeyPrefix builds the key prefix matching all entries of one feedback
// record
func (kb *KeyBuilder) EntryKeyPrefix(feedbackUID string) string {
	return feedbackUID + entryKeySeparator
}

// IndexKeyEncoded builds an encoded key for an index lookup
// (e.g. "index/unique-name/<value>", base64 encoded per segment)
func (kb *KeyBuilder) IndexKeyEncoded(indexType, indexValue string) string {
	key := fmt.Sprintf("%s/%s/%s", KeyPrefixIndex, indexType, indexValue)
	encodedKey, err := kb.EncodeKey(key)
	if err != nil {
		return key
	}
	return encodedKey
}

// EncodeKey encodes a key for the NATS KV store.
// From https://github.com/ripienaar/encodedkv
//
// NATS limitations: https://docs.nats.io/nats-concepts/jetstream/key-value-store#notes
func (kb *KeyBuilder) EncodeKey(key string) (string, error) {
	res := []string{}
	for _, part := range strings.Split(strings.TrimPrefix(key, "/"), "/") {
		if part == ">" || part == "*" {
			res = append(res, part)
			continue
		}

		dst := make([]byte, base64.StdEncoding.EncodedLen(len(part)))
		base64.StdEncoding.Encode(dst, []byte(part))
		res = append(res, string(dst))
	}

	if len(res) == 0 {
		return "", nats.ErrInvalidKey
	}

	return strings.Join(res, "."), nil
}

// DecodeKey decodes a key encoded with EncodeKey back to its original form
func (kb *KeyBuilder) DecodeKey(key string) (string, error) {
	res := []string{}
	for _, part := range strings.Split(key, ".") {
		if part == ">" || part == "*" {
			res = append(res, part)
			continue
		}

		k, err := base64.StdEncoding.DecodeString(part)
		if err != nil {
			return "", err
		}

		res = append(res, string(k))
	}

	if len(res) == 0 {
		return "", nats.ErrInvalidKey
	}

	return strings.Join(res, "/"), nil
}
