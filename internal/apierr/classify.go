package apierr

import (
	"encoding/json"
	"net/http"
	"strings"
)

// FromTransport classifies an error returned before any response arrived.
// Timeouts and cancellations are network errors too; they are never retried
// through a token refresh.
func FromTransport(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

// SessionExpired wraps a refresh failure.
func SessionExpired(cause error) *Error {
	return &Error{Kind: KindSessionExpired, Status: http.StatusUnauthorized, Err: cause}
}

// FromStatus classifies an HTTP response. It returns nil for 2xx statuses.
func FromStatus(status int, body []byte) *Error {
	if status >= 200 && status < 300 {
		return nil
	}

	e := &Error{Status: status, Detail: Detail(body)}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuth
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status >= 500:
		e.Kind = KindServer
	default:
		e.Kind = KindUnknown
	}
	if e.Detail == "" && e.Kind == KindUnknown {
		e.Detail = http.StatusText(status)
	}
	return e
}

// errorBody is the backend's error payload. Detail is a string for most errors
// and a list of validation issues for 422 responses.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// Detail extracts a human-readable message from an error response body.
func Detail(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err == nil {
		return detail
	}

	var issues []validationIssue
	if err := json.Unmarshal(eb.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg != "" {
				msgs = append(msgs, issue.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(eb.Detail)
}
