package planning

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRequest marks client-side validation failures, raised before any computation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrVariantNotFound marks variants the data source does not know.
	ErrVariantNotFound = errors.New("variant not found")
)

// NotFoundError lists every requested variant that could not be resolved.
type NotFoundError struct {
	IDs []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("variant not found: %s", strings.Join(e.IDs, ", "))
}

// Is lets errors.Is(err, ErrVariantNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrVariantNotFound
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
