package streaming

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Session is the canonical new-session result handed back to callers.
type Session struct {
	SessionID            string   `json:"session_id"`
	AccessToken          string   `json:"access_token"`
	URL                  string   `json:"url"`
	IsPaid               bool     `json:"is_paid"`
	SessionDurationLimit *float64 `json:"session_duration_limit,omitempty"`
}

// NormalizeSession decodes a new-session response. The body may or may
// not be wrapped in a "data" envelope and may use snake_case or camelCase
// keys. When session_id, access_token or url cannot be found the result is
// a *ContractError carrying the body as received.
func NormalizeSession(body []byte) (*Session, error) {
	fields := unwrapData(body)

	s := &Session{
		SessionID:   pickString(fields, "session_id", "sessionId"),
		AccessToken: pickString(fields, "access_token", "accessToken"),
		URL:         pickString(fields, "url"),
		IsPaid:      pickBool(fields, "is_paid", "isPaid"),
	}
	if n, ok := pickNumber(fields, "session_duration_limit", "sessionDurationLimit"); ok {
		s.SessionDurationLimit = &n
	}

	var missing []string
	if s.SessionID == "" {
		missing = append(missing, "session_id")
	}
	if s.AccessToken == "" {
		missing = append(missing, "access_token")
	}
	if s.URL == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return nil, &ContractError{Op: "streaming.new", Missing: missing, Received: received(body)}
	}

	return s, nil
}

// unwrapData returns the members of body.data when it is an object, else
// the members of body itself. A body that is not an object yields nil.
func unwrapData(body []byte) map[string]json.RawMessage {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil
	}

	if raw, ok := top["data"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw, &inner); err == nil && inner != nil {
			return inner
		}
	}
	return top
}

// pickString returns the first non-empty string found under keys.
// Values of any other JSON type are skipped, so a numeric session_id
// counts as missing.
func pickString(m map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// pickBool returns the first non-null value under keys, coerced loosely.
func pickBool(m map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if raw, ok := m[k]; ok && present(raw) {
			return truthy(raw)
		}
	}
	return false
}

// pickNumber returns the first non-zero number found under keys.
func pickNumber(m map[string]json.RawMessage, keys ...string) (float64, bool) {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil && n != 0 {
			return n, true
		}
	}
	return 0, false
}

// received keeps the provider body for diagnostics. Bodies that are not
// valid JSON are wrapped as a JSON string so they can still be embedded.
func received(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	b, _ := json.Marshal(string(body))
	return b
}
