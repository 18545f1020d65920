package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AuthError covers bad credentials and expired tokens. The caller is expected
// to re-authenticate; the session itself is never torn down automatically.
type AuthError struct {
	Status int
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "authentication failed"
}

// ValidationError carries backend field errors verbatim. Fields maps a field
// name to its messages; Detail holds a non-field message when present.
type ValidationError struct {
	Status int
	Fields map[string][]string
	Detail string
	Raw    []byte
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
		}
		return strings.Join(parts, " | ")
	}
	if e.Detail != "" {
		return e.Detail
	}
	return string(e.Raw)
}

// NetworkError means the request never completed: DNS failure, refused
// connection, cancelled context. Internals stay out of user-facing text.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "something went wrong" }
func (e *NetworkError) Unwrap() error { return e.Err }

// NotFoundOrMethodError is a 404 or 405 answer. The profile service uses it
// to trigger its one documented fallback-endpoint retry; nothing else
// retries on it.
type NotFoundOrMethodError struct {
	Status int
	Detail string
}

func (e *NotFoundOrMethodError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("endpoint answered %d", e.Status)
}

// StatusError is any other non-2xx answer, body kept unmodified.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) > 0 {
		return string(e.Body)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsNotFoundOrMethod reports whether err is a NotFoundOrMethodError.
func IsNotFoundOrMethod(err error) bool {
	var nf *NotFoundOrMethodError
	return errors.As(err, &nf)
}

// classifyStatus turns a non-2xx response into the matching typed error.
func classifyStatus(status int, body []byte) error {
	detail := extractDetail(body)

	switch {
	case status == 401:
		return &AuthError{Status: status, Detail: detail}
	case status == 404 || status == 405:
		return &NotFoundOrMethodError{Status: status, Detail: detail}
	case status == 400 || status == 403 || status == 422:
		ve := &ValidationError{Status: status, Detail: detail, Raw: body}
		ve.Fields = extractFieldErrors(body)
		return ve
	default:
		return &StatusError{Status: status, Body: body}
	}
}

// extractDetail pulls the conventional {"detail": "..."} message if present.
func extractDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		return payload.Detail
	}
	return ""
}

// extractFieldErrors decodes {"field": ["msg", ...]} bodies. Non-field keys
// with scalar values are folded into single-message lists.
func extractFieldErrors(body []byte) map[string][]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	fields := make(map[string][]string)
	for key, val := range raw {
		if key == "detail" {
			continue
		}
		var list []string
		if err := json.Unmarshal(val, &list); err == nil {
			fields[key] = list
			continue
		}
		var single string
		if err := json.Unmarshal(val, &single); err == nil {
			fields[key] = []string{single}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
