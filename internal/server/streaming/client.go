package streaming

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/daleavatar/internal/logging"
)

// Provider endpoints, relative to the base URL.
const (
	pathCreateToken = "/v1/streaming.create_token"
	pathNewSession  = "/v1/streaming.new"
	pathStart       = "/v1/streaming.start"
	pathKeepAlive   = "/v1/streaming.keepalive"
	pathSpeak       = "/v1/streaming.speak"

	// DefaultTaskType makes the avatar repeat the text verbatim.
	DefaultTaskType = "REPEAT"

	maxResponseBytes = 10 << 20
)

// Client calls the streaming-avatar provider. Every method makes exactly one
// attempt; there is no retry. Timeouts and cancellation come from ctx and the
// injected *http.Client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     logging.Logger
}

// NewClient builds a provider client. apiKey authenticates token creation;
// the per-session calls authenticate with the session token instead.
func NewClient(httpClient *http.Client, baseURL, apiKey string, logger logging.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

// CreateSessionToken exchanges the API key for a short-lived session token.
func (c *Client) CreateSessionToken(ctx context.Context) (string, error) {
	const op = "streaming.create_token"

	body, err := c.post(ctx, op, pathCreateToken, http.Header{"X-Api-Key": {c.apiKey}}, struct{}{})
	if err != nil {
		return "", err
	}

	token := pickString(unwrapData(body), "token")
	if token == "" {
		return "", &ContractError{Op: op, Missing: []string{"token"}, Received: received(body)}
	}
	return token, nil
}

// NewSession validates and shapes req, opens a session with the provider
// and returns the normalized result. Input problems surface as
// *ValidationError before anything is sent.
func (c *Client) NewSession(ctx context.Context, token string, req StartRequest) (*Session, error) {
	const op = "streaming.new"

	if token == "" {
		return nil, &ValidationError{Field: "token", Reason: "token is required"}
	}

	payload, err := BuildSessionPayload(req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug(ctx, "new session request", "payload", payload)

	body, err := c.post(ctx, op, pathNewSession, bearer(token), payload)
	if err != nil {
		return nil, err
	}

	c.logger.Debug(ctx, "new session response", "body", string(body))

	return NormalizeSession(body)
}

// StartSession starts streaming for an opened session.
func (c *Client) StartSession(ctx context.Context, token, sessionID string) (json.RawMessage, error) {
	if token == "" {
		return nil, &ValidationError{Field: "token", Reason: "token is required"}
	}
	if sessionID == "" {
		return nil, &ValidationError{Field: "sessionId", Reason: "sessionId is required"}
	}

	body, err := c.post(ctx, "streaming.start", pathStart, bearer(token), map[string]string{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	return unwrapEnvelope(body), nil
}

// KeepAlive extends the idle timer of the session bound to token.
func (c *Client) KeepAlive(ctx context.Context, token string) (json.RawMessage, error) {
	if token == "" {
		return nil, &ValidationError{Field: "token", Reason: "token is required"}
	}

	body, err := c.post(ctx, "streaming.keepalive", pathKeepAlive, bearer(token), struct{}{})
	if err != nil {
		return nil, err
	}
	return received(body), nil
}

// Speak sends text to the avatar. An empty taskType means DefaultTaskType.
func (c *Client) Speak(ctx context.Context, token, text, taskType string) (json.RawMessage, error) {
	if token == "" {
		return nil, &ValidationError{Field: "token", Reason: "token is required"}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Field: "text", Reason: "text is required"}
	}
	if taskType == "" {
		taskType = DefaultTaskType
	}

	body, err := c.post(ctx, "streaming.speak", pathSpeak, bearer(token), map[string]string{
		"text":      text,
		"task_type": taskType,
	})
	if err != nil {
		return nil, err
	}
	return received(body), nil
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

// post sends payload as JSON and returns the response body. Transport
// failures and non-2xx answers become *ProviderError.
func (c *Client) post(ctx context.Context, op, path string, header http.Header, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Op: op, Payload: payload, Err: err}
	}
	defer resp.Body.Close()

	failed := resp.StatusCode < 200 || resp.StatusCode > 299

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		// A broken 2xx body is not a provider-reported status.
		perr := &ProviderError{Op: op, Payload: payload, Err: err}
		if failed {
			perr.StatusCode = resp.StatusCode
		}
		return nil, perr
	}

	if failed {
		return nil, &ProviderError{Op: op, StatusCode: resp.StatusCode, Body: received(body), Payload: payload}
	}

	return body, nil
}

// unwrapEnvelope returns body.data when present and non-null, else body.
func unwrapEnvelope(body []byte) json.RawMessage {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err == nil {
		if raw, ok := top["data"]; ok && present(raw) {
			return raw
		}
	}
	return received(body)
}
