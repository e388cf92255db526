package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// errorResponse is the body of every failed request. Only error is always
// set; the rest carry provider diagnostics.
type errorResponse struct {
	Error            string          `json:"error"`
	Detail           string          `json:"detail,omitempty"`
	ProviderResponse json.RawMessage `json:"provider_response,omitempty"`
	RequestPayload   any             `json:"request_payload,omitempty"`
	Received         json.RawMessage `json:"received,omitempty"`
}

type okResponse struct {
	OK  bool   `json:"ok"`
	Key string `json:"key,omitempty"`
}

var errEmptyBody = errors.New("empty body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal_error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, &errorResponse{Error: code, Detail: detail})
}

// decodeJSON reads the request body into v. An empty body leaves v as is
// and returns errEmptyBody.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}
