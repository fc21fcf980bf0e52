package strava

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dreschagin/activity-globe/internal/application/port"
)

// Fault is one entry of the errors array in a Strava error response.
type Fault struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
}

// APIError is a non-2xx answer from the Strava API.
type APIError struct {
	StatusCode int     `json:"-"`
	Message    string  `json:"message"`
	Errors     []Fault `json:"errors"`
}

func (e *APIError) Error() string {
	message := e.Message
	if message == "" {
		message = http.StatusText(e.StatusCode)
	}
	if len(e.Errors) == 0 {
		return fmt.Sprintf("strava api: %d %s", e.StatusCode, message)
	}

	faults := make([]string, 0, len(e.Errors))
	for _, fault := range e.Errors {
		faults = append(faults, fault.Resource+"."+fault.Field+": "+fault.Code)
	}
	return fmt.Sprintf("strava api: %d %s (%s)", e.StatusCode, message, strings.Join(faults, "; "))
}

// Is maps status codes onto the port errors handlers switch on.
func (e *APIError) Is(target error) bool {
	switch target {
	case port.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case port.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case port.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}
