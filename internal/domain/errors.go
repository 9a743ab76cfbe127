package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a quiz, question or result id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMalformedSubmission indicates the answers cannot be graded as submitted.
	ErrMalformedSubmission = errors.New("malformed submission")
	// ErrServiceUnavailable indicates the classification backend failed its liveness probe.
	ErrServiceUnavailable = errors.New("classification service unavailable")
	// ErrAnalysisFailed indicates both classification calls failed.
	ErrAnalysisFailed = errors.New("topic analysis failed")
	// ErrPersistence indicates a store write failed.
	ErrPersistence = errors.New("persistence error")
	// ErrInvalidQuestion indicates an uploaded question row could not be normalized.
	ErrInvalidQuestion = errors.New("invalid question")
)

// RowError describes why one uploaded question row was rejected.
type RowError struct {
	Row    int // 1-based
	Field  string
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Reason)
}

// ImportError collects every rejected row of an upload.
type ImportError struct {
	Rows []RowError
}

func (e *ImportError) Error() string {
	msgs := make([]string, len(e.Rows))
	for i, row := range e.Rows {
		msgs[i] = row.Error()
	}
	return fmt.Sprintf("invalid question rows: %s", strings.Join(msgs, "; "))
}

func (e *ImportError) Unwrap() error { return ErrInvalidQuestion }
