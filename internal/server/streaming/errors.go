package streaming

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// ValidationError reports a client-supplied start request that cannot be
// sent to the provider. It is always returned before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ProviderError is a failed provider call. StatusCode is the provider's
// HTTP status, or http.StatusInternalServerError when no response arrived.
type ProviderError struct {
	Op         string
	StatusCode int
	Body       json.RawMessage
	Payload    any
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: provider responded with status %d", e.Op, e.StatusCode)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Status returns the HTTP status that should be relayed to the caller.
func (e *ProviderError) Status() int {
	if e.StatusCode == 0 {
		return http.StatusInternalServerError
	}
	return e.StatusCode
}

// ContractError means the provider answered successfully but the body
// could not be turned into the expected shape. Received holds what came
// back, untouched.
type ContractError struct {
	Op       string
	Missing  []string
	Received json.RawMessage
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: invalid provider response: missing %v", e.Op, e.Missing)
}
