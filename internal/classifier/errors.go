package classifier

import (
	"encoding/json"
	"fmt"
)

// ErrUnexpectedStatus indicates the classifier answered with a non-2xx status.
type ErrUnexpectedStatus struct {
	Status int
}

func (e *ErrUnexpectedStatus) Error() string {
	return fmt.Sprintf("classifier returned status %d", e.Status)
}

// ErrInvalidResponse indicates the classifier returned a body that does not
// match the analysis response schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid classifier response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrRejected indicates the classifier answered with success=false.
type ErrRejected struct{}

func (e *ErrRejected) Error() string { return "classifier reported success=false" }
