package dataprocessing

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBatch is returned when a batch has no records
	ErrEmptyBatch = errors.New("empty batch: no student records")
	// ErrMalformedRecord is matched by every *MalformedRecordError
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidFormat is returned when an upload cannot be read as a score sheet
	ErrInvalidFormat = errors.New("invalid file format")
	// ErrStudentNotFound is returned when a report card is requested for an unknown student
	ErrStudentNotFound = errors.New("student not found")
	// ErrNoSubjects is returned when an engine is configured without subjects
	ErrNoSubjects = errors.New("subject list must not be empty")
)

// MalformedRecordError identifies the record and field that failed
// normalization. Row is the 1-based position of the record in its batch.
type MalformedRecordError struct {
	Row       int
	StudentID string
	Field     string
	Reason    string
}

func (e *MalformedRecordError) Error() string {
	if e.StudentID != "" {
		return fmt.Sprintf("malformed record at row %d (student %s): %s: %s", e.Row, e.StudentID, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed record at row %d: %s: %s", e.Row, e.Field, e.Reason)
}

// Is reports whether target is ErrMalformedRecord
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// Kind labels the error for metrics
func (e *MalformedRecordError) Kind() string {
	return "malformed_record"
}
