package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord marks input files that cannot be turned into rows.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError describes where an input file went wrong.
// Line is 1-based, or 0 when the file has no line to blame. Field is set when a
// required key is missing.
type MalformedRecordError struct {
	Path  string
	Line  int
	Field string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	where := e.Path
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s: missing field %q", ErrMalformedRecord, where, e.Field)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", ErrMalformedRecord, where, e.Err)
	default:
		return fmt.Sprintf("%s: %s", ErrMalformedRecord, where)
	}
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// RowError is a statement that failed for one row. The load carries on past it.
type RowError struct {
	Table     string
	Statement string
	Key       string
	Err       error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Error in %s table insert (%s %s): %v", e.Table, e.Statement, e.Key, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
