package records

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned by the mock service for unknown identifiers.
var ErrNotFound = errors.New("record not found")

// APIError is a non-2xx answer from the records service.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	// Fields holds per-field messages when the service rejected a payload
	// with {errors:[{path,msg}]}.
	Fields map[string]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		msg = strings.Join(parts, "; ")
	}
	if msg == "" {
		return fmt.Sprintf("records api %s %s failed: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("records api %s %s failed: status %d: %s", e.Method, e.Path, e.Status, msg)
}

// StatusCode extracts the HTTP status of an APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
