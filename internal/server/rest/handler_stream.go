package rest

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/daleavatar/internal/server/streaming"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type newSessionRequest struct {
	StartRequest streaming.StartRequest `json:"startRequest"`
	Token        string                 `json:"token"`
}

type startRequest struct {
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
}

type keepAliveRequest struct {
	Token string `json:"token"`
}

type speakRequest struct {
	Token    string `json:"token"`
	Text     string `json:"text"`
	TaskType string `json:"taskType"`
}

func (h *Handler) SessionToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.streaming.CreateSessionToken(r.Context())
	if err != nil {
		h.streamError(w, r, "failed_to_create_token", "invalid_request", err)
		return
	}
	writeJSON(w, http.StatusOK, &tokenResponse{Token: token})
}

func (h *Handler) NewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionRequest
	if !decodeStreamBody(w, r, &req, "invalid_start_request") {
		return
	}

	session, err := h.streaming.NewSession(r.Context(), req.Token, req.StartRequest)
	if err != nil {
		h.streamError(w, r, "failed_to_start_session", "invalid_start_request", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decodeStreamBody(w, r, &req, "invalid_request") {
		return
	}

	data, err := h.streaming.StartSession(r.Context(), req.Token, req.SessionID)
	if err != nil {
		h.streamError(w, r, "failed_to_start_stream", "invalid_request", err)
		return
	}
	writeRaw(w, data)
}

func (h *Handler) KeepAlive(w http.ResponseWriter, r *http.Request) {
	var req keepAliveRequest
	if !decodeStreamBody(w, r, &req, "invalid_request") {
		return
	}

	data, err := h.streaming.KeepAlive(r.Context(), req.Token)
	if err != nil {
		h.streamError(w, r, "failed_to_keepalive", "invalid_request", err)
		return
	}
	writeRaw(w, data)
}

func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if !decodeStreamBody(w, r, &req, "invalid_request") {
		return
	}

	data, err := h.streaming.Speak(r.Context(), req.Token, req.Text, req.TaskType)
	if err != nil {
		h.streamError(w, r, "failed_to_speak", "invalid_request", err)
		return
	}
	writeRaw(w, data)
}

func decodeStreamBody(w http.ResponseWriter, r *http.Request, v any, code string) bool {
	if err := decodeJSON(r, v); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, code, err.Error())
		return false
	}
	return true
}

// streamError maps provider client failures to responses. Input problems
// are 400 with inputCode, unusable provider answers are 502 with the body
// as received, and provider failures keep the provider's status together
// with its response and the payload that was sent.
func (h *Handler) streamError(w http.ResponseWriter, r *http.Request, failCode, inputCode string, err error) {
	var (
		verr *streaming.ValidationError
		cerr *streaming.ContractError
		perr *streaming.ProviderError
	)

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, inputCode, verr.Error())
	case errors.As(err, &cerr):
		h.logger.Error(r.Context(), "provider contract violation", "op", cerr.Op, "missing", cerr.Missing)
		writeJSON(w, http.StatusBadGateway, &errorResponse{
			Error:    "invalid_provider_response",
			Detail:   cerr.Error(),
			Received: cerr.Received,
		})
	case errors.As(err, &perr):
		h.logger.Error(r.Context(), "provider call failed", "op", perr.Op, "status", perr.StatusCode, "error", err)
		writeJSON(w, perr.Status(), &errorResponse{
			Error:            failCode,
			Detail:           perr.Error(),
			ProviderResponse: perr.Body,
			RequestPayload:   perr.Payload,
		})
	default:
		h.internalError(w, r, failCode, err)
	}
}

// writeRaw relays a provider JSON document unchanged.
func writeRaw(w http.ResponseWriter, data json.RawMessage) {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
