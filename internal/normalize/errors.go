package normalize

import (
	"errors"
	"fmt"
)

// Kind classifies why a normalization failed.
type Kind int

const (
	// KindNone is returned by KindOf for nil or foreign errors.
	KindNone Kind = iota
	// KindMissingPath means no path was supplied, or it was blank after
	// trimming and quote stripping.
	KindMissingPath
	// KindInvalidPath means the input cannot be parsed as a path on the
	// host filesystem.
	KindInvalidPath
	// KindReadFailure means the path parsed but the file could not be read.
	KindReadFailure
)

func (k Kind) String() string {
	switch k {
	case KindMissingPath:
		return "missing_path"
	case KindInvalidPath:
		return "invalid_path"
	case KindReadFailure:
		return "read_failure"
	default:
		return "none"
	}
}

// Sentinels for errors.Is checks against a *Error.
var (
	ErrMissingPath = errors.New("missing path")
	ErrInvalidPath = errors.New("invalid path")
	ErrReadFailure = errors.New("read failure")
)

// Error is the single error type returned by Normalize.
type Error struct {
	Kind Kind
	// Path is the cleaned input for InvalidPath and the resolved path for
	// ReadFailure. Empty for MissingPath.
	Path string
	// Err is the underlying reason, if any.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingPath:
		return "no file path given"
	case KindInvalidPath:
		if e.Err != nil {
			return fmt.Sprintf("invalid path %q: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("invalid path %q", e.Path)
	case KindReadFailure:
		return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
	default:
		return "normalize: unknown error"
	}
}

// Unwrap returns the underlying OS or parse error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrMissingPath:
		return e.Kind == KindMissingPath
	case ErrInvalidPath:
		return e.Kind == KindInvalidPath
	case ErrReadFailure:
		return e.Kind == KindReadFailure
	}
	return false
}

// KindOf returns the Kind carried by err, or KindNone.
func KindOf(err error) Kind {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind
	}
	return KindNone
}
