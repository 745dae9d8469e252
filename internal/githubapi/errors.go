package githubapi

import (
	"fmt"
	"net/http"
)

// StatusError is returned for any non-200 response so callers can
// branch on the status code instead of matching error strings.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github api returned %d: %s", e.Code, e.Body)
}

// IsRateLimit reports whether the status means the token quota is gone.
func (e *StatusError) IsRateLimit() bool {
	return e.Code == http.StatusForbidden || e.Code == http.StatusTooManyRequests
}
