// Package diag defines the error kinds reported by the generator pipeline.
//
// Validation problems (config and template format) are collected into a
// List so that a single run reports every problem in the input. Structural
// and I/O failures are returned as a single *Error and abort the pipeline.
package diag

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindConfigFormat covers missing or mistyped config fields, duplicate
	// group/submodule names and unresolved *group references.
	KindConfigFormat Kind = iota + 1
	// KindTemplateFormat covers templates exceeding the configured size.
	KindTemplateFormat
	// KindIO covers files that cannot be opened, created or written.
	KindIO
	// KindHierarchy covers unresolved submodule parents and parent cycles.
	KindHierarchy
	// KindContract covers resolved designs rejected by the schema check.
	KindContract
)

func (k Kind) String() string {
	switch k {
	case KindConfigFormat:
		return "config format error"
	case KindTemplateFormat:
		return "template format error"
	case KindIO:
		return "io error"
	case KindHierarchy:
		return "hierarchy error"
	case KindContract:
		return "contract violation"
	default:
		return "error"
	}
}

// Error is a single classified failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// New returns an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Errorf returns an Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err, prefixing it with msg. A nil err yields nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: errors.WithStack(err)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Cause implements the github.com/pkg/errors causer interface.
func (e *Error) Cause() error { return e.Err }

// List accumulates problems found in a single validation pass.
type List []*Error

// Add appends a new problem of the given kind.
func (l *List) Add(kind Kind, msg string) {
	*l = append(*l, New(kind, msg))
}

// Addf appends a new problem with a formatted message.
func (l *List) Addf(kind Kind, format string, args ...interface{}) {
	*l = append(*l, Errorf(kind, format, args...))
}

// Err returns nil for an empty list and the list itself otherwise.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l List) Error() string {
	msgs := make([]string, 0, len(l))
	for _, e := range l {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// Messages returns one line per problem.
func (l List) Messages() []string {
	msgs := make([]string, 0, len(l))
	for _, e := range l {
		msgs = append(msgs, e.Error())
	}
	return msgs
}

// KindOf reports the kind of err. A List reports the kind of its first
// problem. Unclassified errors report 0.
func KindOf(err error) Kind {
	var l List
	if errors.As(err, &l) && len(l) > 0 {
		return l[0].Kind
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
