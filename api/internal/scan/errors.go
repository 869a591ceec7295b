package scan

import (
	"errors"
	"fmt"

	"forrealscan/api/internal/engine"
	"forrealscan/api/internal/prompt"
)

// ErrInvalidRequest is the root of every caller error: the request is
// rejected before any upstream call and no record is produced.
var ErrInvalidRequest = errors.New("invalid request")

var (
	ErrNoImage          = fmt.Errorf("%w: image is required", ErrInvalidRequest)
	ErrBadImage         = fmt.Errorf("%w: bad image base64", ErrInvalidRequest)
	ErrImageTooLarge    = fmt.Errorf("%w: image too large", ErrInvalidRequest)
	ErrUnsupportedImage = fmt.Errorf("%w: unsupported image type", ErrInvalidRequest)
	ErrUnknownEngine    = fmt.Errorf("%w: %w", ErrInvalidRequest, engine.ErrUnknownEngine)
	ErrUnknownMode      = fmt.Errorf("%w: %w", ErrInvalidRequest, prompt.ErrUnknownProfile)
)

// callerError keeps the detailed message of err while matching both sentinel
// and the wrapped detail with errors.Is.
type callerError struct {
	sentinel error
	err      error
}

func (e *callerError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidRequest, e.err)
}

func (e *callerError) Unwrap() []error { return []error{e.sentinel, e.err} }

func invalid(sentinel, err error) error {
	return &callerError{sentinel: sentinel, err: err}
}
