// Package worderr centralizes the error taxonomy for document operations.
//
// Fallible operations in this module produce errors tagged with an explicit
// Kind rather than relying on type hierarchies. Foreign errors (filesystem,
// archive, XML) are classified at the boundary by an ordered matcher table
// in which specific matchers precede generic ones; table order is load-
// bearing and must be preserved.
//
// The classifier is the backstop of the whole server: it never fails. An
// error nothing matches is reported as kind "unknown" with the conservative
// recoverable=true.
package worderr

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/LuiccianDev/mcp-word-office/internal/response"
)

// Kind is the closed enumeration of error categories.
type Kind string

const (
	KindDocumentProcessing Kind = "document_processing"
	KindValidation         Kind = "validation"
	KindFileOperation      Kind = "file_operation"
	KindFileNotFound       Kind = "file_not_found"
	KindPermissionDenied   Kind = "permission_denied"
	KindStyle              Kind = "style"
	KindConfiguration      Kind = "configuration"
	KindUnknown            Kind = "unknown"
)

// recoverable maps each kind to whether retrying the same call after fixing
// the underlying condition may succeed. Kinds absent from the map (and the
// unknown fallback) default to true.
var recoverable = map[Kind]bool{
	KindDocumentProcessing: true,
	KindValidation:         false,
	KindFileOperation:      true,
	KindFileNotFound:       false,
	KindPermissionDenied:   false,
	KindStyle:              true,
	KindConfiguration:      false,
	KindUnknown:            true,
}

// Error is a kind-tagged domain error. It optionally wraps a cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a kind-tagged error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags an existing error with a kind and context message. A nil cause
// yields nil so call sites can wrap unconditionally.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Convenience constructors for the common kinds.

func Processing(format string, args ...any) *Error {
	return New(KindDocumentProcessing, format, args...)
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

func FileOp(format string, args ...any) *Error {
	return New(KindFileOperation, format, args...)
}

func Style(format string, args ...any) *Error {
	return New(KindStyle, format, args...)
}

func Config(format string, args ...any) *Error {
	return New(KindConfiguration, format, args...)
}

// Classification is the derived record produced by Classify. It is computed
// fresh per call and never cached.
type Classification struct {
	Type        Kind   `json:"error_type"`
	Recoverable bool   `json:"recoverable"`
	Message     string `json:"message"`
}

// matchers is the ordered classification table for foreign errors. A tagged
// *Error short-circuits before the table is consulted. Specific conditions
// (not-exist, permission) must stay ahead of the generic path-error entry.
var matchers = []struct {
	kind  Kind
	match func(error) bool
}{
	{KindFileNotFound, func(err error) bool { return errors.Is(err, os.ErrNotExist) }},
	{KindPermissionDenied, func(err error) bool { return errors.Is(err, os.ErrPermission) }},
	{KindFileOperation, func(err error) bool {
		var pe *fs.PathError
		return errors.As(err, &pe)
	}},
	{KindFileOperation, func(err error) bool {
		var le *os.LinkError
		return errors.As(err, &le)
	}},
}

// Classify derives a Classification from an arbitrary error. It never
// returns an error and never panics; unmatched errors fall back to
// unknown/recoverable.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Type: KindUnknown, Recoverable: true}
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		return Classification{
			Type:        tagged.Kind,
			Recoverable: recoverable[tagged.Kind],
			Message:     err.Error(),
		}
	}

	for _, m := range matchers {
		if m.match(err) {
			return Classification{
				Type:        m.kind,
				Recoverable: recoverable[m.kind],
				Message:     err.Error(),
			}
		}
	}

	return Classification{Type: KindUnknown, Recoverable: true, Message: err.Error()}
}

// suggestions maps error kinds to fixed remediation hints. Unknown has no
// entry on purpose.
var suggestions = map[Kind]string{
	KindDocumentProcessing: "Check if the document is corrupted or in a valid format.",
	KindValidation:         "Review the input parameters and ensure they meet the requirements.",
	KindFileOperation:      "Verify file permissions and that the file is not open in another program.",
	KindFileNotFound:       "Check that the file path is correct and the file exists.",
	KindPermissionDenied:   "Ensure you have the necessary permissions to access the file.",
	KindStyle:              "Verify the style name exists in the document template.",
	KindConfiguration:      "Check the application configuration settings.",
}

// Suggestion returns the remediation hint for a kind, or "" when the kind
// has none.
func Suggestion(kind Kind) string { return suggestions[kind] }

// Handle converts an error into the caller-facing OperationError envelope,
// appending file and operation context to the message when supplied:
//
//	open failed (File: report.docx, Operation: merge documents)
func Handle(err error, filename, operation string) *response.OperationError {
	cls := Classify(err)

	var ctx []string
	if filename != "" {
		ctx = append(ctx, "File: "+filename)
	}
	if operation != "" {
		ctx = append(ctx, "Operation: "+operation)
	}
	msg := cls.Message
	if len(ctx) > 0 {
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(ctx, ", "))
	}

	return &response.OperationError{
		Status:      response.StatusError,
		ErrorType:   string(cls.Type),
		Message:     msg,
		Suggestion:  Suggestion(cls.Type),
		Recoverable: cls.Recoverable,
	}
}
