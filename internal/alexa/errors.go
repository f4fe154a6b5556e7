package alexa

import (
	"fmt"
	"net/http"
	"strings"
)

// StatusError reports a non-success response from the Alexa API.
type StatusError struct {
	Status int
	Body   string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("alexa api error %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// AuthRejected reports whether the response points at a stale or
// incomplete session capture rather than a server-side problem.
func (e StatusError) AuthRejected() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}
