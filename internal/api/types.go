package api

import "investiq/pkg/investiq"

type chatPayload struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// chatResponse wraps a ChatReply with the classification code of any
// pipeline failure. Chat failures are conversational: the reply text carries
// the user-facing message and the HTTP status stays 200.
type chatResponse struct {
	*investiq.ChatReply
	ErrorCode string `json:"error_code,omitempty"`
}

type suggestionsResponse struct {
	Symbols []string `json:"symbols"`
}
