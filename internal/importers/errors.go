package importers

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a single-file import failure
type ErrorKind int

const (
	// KindIO covers filesystem and store failures
	KindIO ErrorKind = iota + 1
	// KindFormat covers every content problem: bad JSON, missing Crypto
	// section, or a record the local keyfile loader rejected
	KindFormat
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindFormat:
		return "format error"
	default:
		return "unknown error"
	}
}

// ErrFormat matches every KindFormat ImportError via errors.Is
var ErrFormat = errors.New("keystore file has an unexpected format")

// ImportError is returned when one keystore file cannot be imported.
type ImportError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

func (e *ImportError) Is(target error) bool {
	return target == ErrFormat && e.Kind == KindFormat
}

func ioError(path string, err error) error {
	return &ImportError{Kind: KindIO, Path: path, Err: err}
}

func formatError(path string, err error) error {
	return &ImportError{Kind: KindFormat, Path: path, Err: err}
}

// KindOf returns the ErrorKind of err, or 0 when err is not an ImportError
func KindOf(err error) ErrorKind {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return 0
}

// MalformedAddressError means a file matched the geth naming convention but
// its address segment is not a valid address. Enumeration stops on it: the
// directory is not trustworthy.
type MalformedAddressError struct {
	Filename string
	Err      error
}

func (e *MalformedAddressError) Error() string {
	return fmt.Sprintf("keystore file %q has a malformed address: %v", e.Filename, e.Err)
}

func (e *MalformedAddressError) Unwrap() error {
	return e.Err
}
