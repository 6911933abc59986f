package viewport

import (
	"errors"
	"fmt"
)

// ErrDomain is the sentinel wrapped by every DomainError.
var ErrDomain = errors.New("viewport: invalid geographic input")

// DomainError reports input that has no finite viewport: empty or inverted
// spans, latitudes at the poles, non-finite values and empty canvases.
type DomainError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("viewport: %s=%g: %s", e.Field, e.Value, e.Reason)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}
