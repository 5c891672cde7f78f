package flomo

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrConfigurationMissing is returned when no webhook URL was configured.
var ErrConfigurationMissing = errors.New("flomo API URL not set")

// RemoteRequestError reports a non-2xx answer from the webhook.
type RemoteRequestError struct {
	StatusCode int
	Body       string
}

func (e *RemoteRequestError) Error() string {
	return fmt.Sprintf("flomo API request failed with status %d: %s", e.StatusCode, e.Body)
}

// NetworkError reports a failure to deliver the request or read the answer.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("flomo API request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ResponseParseError reports a 2xx answer whose body is not JSON.
type ResponseParseError struct {
	Body string
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("flomo API returned a non-JSON response: %q", truncate(e.Body, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
