package amtp

import (
	"encoding/json"
	"errors"
	"fmt"
	"syscall"
)

// CodeUnknown is used when the gateway's error body is missing or unreadable.
const CodeUnknown = "UNKNOWN"

// Error is a structured failure returned by the gateway for any non-2xx
// status. Details is the raw "error.details" value when present.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Details    json.RawMessage
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// parseError builds an Error from a failed response. It never fails: fields
// that cannot be read keep their fallbacks.
func parseError(status int, contentType string, body []byte) *Error {
	e := &Error{
		StatusCode: status,
		Code:       CodeUnknown,
		Message:    fmt.Sprintf("HTTP %d", status),
	}
	if !isJSON(contentType) || len(body) == 0 {
		return e
	}

	var envelope struct {
		Error struct {
			Code    json.RawMessage `json:"code"`
			Message json.RawMessage `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return e
	}

	if code := rawString(envelope.Error.Code); code != "" {
		e.Code = code
	}
	if msg := rawString(envelope.Error.Message); msg != "" {
		e.Message = msg
	}
	if d := envelope.Error.Details; len(d) > 0 && string(d) != "null" {
		e.Details = d
	}
	return e
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// TransportError means no HTTP exchange took place: the gateway could not be
// reached at all.
type TransportError struct {
	URL     string
	Refused bool
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cannot connect to gateway at %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func newTransportError(gatewayURL string, err error) *TransportError {
	return &TransportError{
		URL:     gatewayURL,
		Refused: errors.Is(err, syscall.ECONNREFUSED),
		Err:     err,
	}
}

// IsTransport reports whether err, or anything it wraps, is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
