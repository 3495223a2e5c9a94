// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package mail

// The provider returns identifiers under either "id" or a type-specific key
// ("inbox_id", "alias_id") depending on endpoint version. The upstream
// schema is not documented; "id" wins when both are present. Each response
// type has its own normalizer so the precedence stays visible and testable.

// normalizeInbox maps a raw inbox response. fallbackAddress fills in the
// address when the provider omits it. Identifier precedence is "id", then
// "inbox_id", then the address itself: the provider accepts an address
// wherever an inbox identifier is expected, so an inbox never leaves this
// package without a usable ID.
func normalizeInbox(resp map[string]interface{}, fallbackAddress string) *Inbox {
	inbox := &Inbox{
		ID:      firstString(resp, "id", "inbox_id"),
		Address: firstString(resp, "address"),
	}
	if inbox.Address == "" {
		inbox.Address = fallbackAddress
	}
	if inbox.ID == "" {
		inbox.ID = inbox.Address
	}
	return inbox
}

// normalizeAlias maps a raw alias response.
func normalizeAlias(resp map[string]interface{}) *Alias {
	return &Alias{
		ID:      firstString(resp, "id", "alias_id"),
		Address: firstString(resp, "address"),
		Target:  firstString(resp, "target"),
	}
}

// normalizeSendResult maps a raw message-send response. A missing status
// defaults to "queued", the provider's initial state.
func normalizeSendResult(resp map[string]interface{}) *SendResult {
	result := &SendResult{
		ID:     firstString(resp, "id", "message_id"),
		Status: firstString(resp, "status"),
	}
	if result.Status == "" {
		result.Status = "queued"
	}
	return result
}

// firstString returns the first key whose value is a non-empty string.
func firstString(resp map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := resp[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
