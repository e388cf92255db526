package rest

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/daleavatar/internal/logging"
	"github.com/dmitrijs2005/daleavatar/internal/server/auth"
)

type testEnv struct {
	router     http.Handler
	tokens     *auth.TokenService
	users      *fakeUsers
	recordings *fakeRecordings
	streaming  *fakeStreaming
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		tokens:     auth.NewTokenService([]byte("test-secret"), time.Hour),
		users:      &fakeUsers{},
		recordings: &fakeRecordings{},
		streaming:  &fakeStreaming{},
	}
	h := NewHandler(env.users, env.recordings, env.streaming, logging.Discard())
	cfg := DefaultRouterConfig()
	cfg.AuthRateLimit = 0
	env.router = NewRouter(h, env.tokens, cfg, logging.Discard())
	return env
}

func (e *testEnv) bearer(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := e.tokens.Issue(userID, "dale@example.com")
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e *testEnv) do(t *testing.T, method, path, authz, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}
