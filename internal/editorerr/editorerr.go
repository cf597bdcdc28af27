// Package editorerr reproduces the original backend's Format/Error/ResponseError
// shape: typed error kinds, each stringifying as "Kind::message" so front-end
// code can branch on the prefix without parsing the rest of the string.
package editorerr

import "fmt"

// Kind identifies one of the seven error taxonomy buckets.
type Kind string

const (
	KindFile          Kind = "FileError"
	KindNotFound      Kind = "NotFoundError"
	KindPath          Kind = "PathError"
	KindIO            Kind = "IOError"
	KindLockContended Kind = "LockContended"
	KindSerde         Kind = "SerdeError"
	KindParseFailed   Kind = "ParseFailed"
)

// Error is a taxonomy-tagged error. It wraps an optional underlying cause so
// errors.As/errors.Is keep working through fmt.Errorf("%w", ...) chains.
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New builds a tagged error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Wrap builds a tagged error around an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

// Kind returns the error's taxonomy bucket.
func (e *Error) Kind() string {
	return string(e.kind)
}

// Error implements the error interface, formatting as "Kind::message".
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s::%s: %v", e.kind, e.message, e.cause)
	}

	return fmt.Sprintf("%s::%s", e.kind, e.message)
}

// Unwrap exposes the underlying cause to errors.As/errors.Is.
func (e *Error) Unwrap() error {
	return e.cause
}

// File builds a FileError.
func File(message string) *Error { return New(KindFile, message) }

// FileWrap builds a FileError wrapping cause.
func FileWrap(message string, cause error) *Error { return Wrap(KindFile, message, cause) }

// NotFound builds a NotFoundError.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Path builds a PathError.
func Path(message string) *Error { return New(KindPath, message) }

// PathWrap builds a PathError wrapping cause.
func PathWrap(message string, cause error) *Error { return Wrap(KindPath, message, cause) }

// IO builds an IOError wrapping cause.
func IO(message string, cause error) *Error { return Wrap(KindIO, message, cause) }

// LockContended builds a LockContended error.
func LockContended(message string) *Error { return New(KindLockContended, message) }

// Serde builds a SerdeError wrapping cause.
func Serde(message string, cause error) *Error { return Wrap(KindSerde, message, cause) }

// ParseFailed builds a ParseFailed error.
func ParseFailed(message string) *Error { return New(KindParseFailed, message) }

// ToResponse converts any error into the wire-format (kind, message) pair used
// by the command surface. Errors not produced by this package are reported
// as an unclassified IOError so the front-end still gets a kind prefix.
func ToResponse(err error) (kind, message string) {
	if err == nil {
		return "", ""
	}

	var tagged *Error
	if asTagged(err, &tagged) {
		return tagged.Kind(), tagged.Error()
	}

	return string(KindIO), err.Error()
}

// asTagged is a narrow errors.As that avoids importing errors just for this
// one call site pattern used throughout the command surface.
func asTagged(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok { //nolint:errorlint // intentional type assertion walk, see Unwrap below
			*target = e

			return true
		}

		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}

		err = unwrapper.Unwrap()
	}

	return false
}
