package dataset

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CodeSchema      = "dataset.schema"
	CodeFormat      = "dataset.format"
	CodeFileMissing = "dataset.file_missing"
)

// SchemaError reports required attributes absent from a source.
type SchemaError struct {
	Source  string
	Record  string
	Missing []string
}

func (e *SchemaError) Error() string {
	if e == nil {
		return ""
	}
	where := e.Source
	if e.Record != "" {
		where += " (" + e.Record + ")"
	}
	return fmt.Sprintf("%s: missing required fields: %s", where, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Code() string { return CodeSchema }

// FormatError reports a source that cannot be parsed as tabular or JSON data.
type FormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: invalid format", e.Path)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Code() string { return CodeFormat }

// FileMissingError reports an expected source path that does not exist.
type FileMissingError struct {
	Path string
}

func (e *FileMissingError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("required file not found: %s", e.Path)
}

func (e *FileMissingError) Code() string { return CodeFileMissing }

func IsFileMissing(err error) bool {
	var fm *FileMissingError
	return errors.As(err, &fm)
}
