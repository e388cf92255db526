package streaming

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSession_EnvelopeAndFlatAgree(t *testing.T) {
	enveloped, err := NormalizeSession([]byte(`{"data":{"session_id":"s1","access_token":"t1","url":"u1"}}`))
	require.NoError(t, err)

	flat, err := NormalizeSession([]byte(`{"sessionId":"s1","accessToken":"t1","url":"u1"}`))
	require.NoError(t, err)

	want := &Session{SessionID: "s1", AccessToken: "t1", URL: "u1"}
	assert.Empty(t, cmp.Diff(want, enveloped))
	assert.Empty(t, cmp.Diff(want, flat))

	b, err := json.Marshal(flat)
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"s1","access_token":"t1","url":"u1","is_paid":false}`, string(b))
}

func TestNormalizeSession_OptionalFields(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantPaid  bool
		wantLimit *float64
	}{
		{name: "snake", body: `{"data":{"session_id":"s","access_token":"t","url":"u","is_paid":true,"session_duration_limit":600}}`, wantPaid: true, wantLimit: ptr(600)},
		{name: "camel", body: `{"sessionId":"s","accessToken":"t","url":"u","isPaid":true,"sessionDurationLimit":300}`, wantPaid: true, wantLimit: ptr(300)},
		{name: "explicit false wins over camel", body: `{"session_id":"s","access_token":"t","url":"u","is_paid":false,"isPaid":true}`, wantPaid: false},
		{name: "null falls through", body: `{"session_id":"s","access_token":"t","url":"u","is_paid":null,"isPaid":true}`, wantPaid: true},
		{name: "zero limit treated as absent", body: `{"session_id":"s","access_token":"t","url":"u","session_duration_limit":0,"sessionDurationLimit":90}`, wantLimit: ptr(90)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NormalizeSession([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantPaid, s.IsPaid)
			assert.Equal(t, tt.wantLimit, s.SessionDurationLimit)
		})
	}
}

func TestNormalizeSession_ContractViolation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing []string
	}{
		{name: "only session id", body: `{"data":{"session_id":"s1"}}`, missing: []string{"access_token", "url"}},
		{name: "empty object", body: `{}`, missing: []string{"session_id", "access_token", "url"}},
		{name: "empty strings", body: `{"session_id":"","access_token":"t","url":"u"}`, missing: []string{"session_id"}},
		{name: "numeric session id", body: `{"session_id":42,"access_token":"t","url":"u"}`, missing: []string{"session_id"}},
		{name: "not json", body: `<html>oops</html>`, missing: []string{"session_id", "access_token", "url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NormalizeSession([]byte(tt.body))
			assert.Nil(t, s)

			var cerr *ContractError
			require.True(t, errors.As(err, &cerr), "want *ContractError, got %v", err)
			assert.Equal(t, tt.missing, cerr.Missing)
			assert.True(t, json.Valid(cerr.Received))
		})
	}
}

func TestNormalizeSession_KeepsReceivedBody(t *testing.T) {
	body := `{"data":{"session_id":"s1"},"code":100}`
	_, err := NormalizeSession([]byte(body))

	var cerr *ContractError
	require.True(t, errors.As(err, &cerr))
	assert.JSONEq(t, body, string(cerr.Received))
}

func ptr(f float64) *float64 { return &f }
