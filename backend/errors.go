package backend

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const maxErrorBody = 4 << 10

// APIError is a non-success response from the backend.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func newAPIError(method, p string, resp *http.Response) *APIError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Method: method,
		Path:   p,
		Status: resp.StatusCode,
		Body:   strings.TrimSpace(string(b)),
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Message())
}

// Message extracts the backend's human readable reason. It understands the
// {"detail": ...} and {"message": ...} error shapes and falls back to the raw body.
func (e *APIError) Message() string {
	if gjson.Valid(e.Body) {
		for _, field := range []string{"detail", "message", "error"} {
			if v := gjson.Get(e.Body, field); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
	}
	if e.Body == "" {
		return http.StatusText(e.Status)
	}
	return e.Body
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether the backend rejected the caller's credentials.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
