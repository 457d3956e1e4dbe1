package generator

import (
	"errors"
	"fmt"
)

// IOError reports a failed read of the input or write of the output.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Stage names the pipeline stage that produced the error.
func (e *IOError) Stage() string { return e.Op }

// StageOf returns the pipeline stage an error originated in, or "" when the
// error does not carry one.
func StageOf(err error) string {
	var s interface{ Stage() string }
	if errors.As(err, &s) {
		return s.Stage()
	}
	return ""
}
