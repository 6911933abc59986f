package mapbox

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrStyleNotFound is returned by StyleIDByName when no style has the name.
var ErrStyleNotFound = errors.New("mapbox: style not found")

// TransportError is returned when the API answers with an unexpected status.
type TransportError struct {
	Method     string
	StatusCode int
	Body       string
	URL        string
}

func (e *TransportError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("mapbox: %s %s: unexpected status %d: %s", e.Method, RedactURL(e.URL), e.StatusCode, body)
}

var tokenPattern = regexp.MustCompile(`access_token=[^&]*`)

// RedactURL hides the access token of a request url.
func RedactURL(rawURL string) string {
	return tokenPattern.ReplaceAllString(rawURL, "access_token=REDACTED")
}
