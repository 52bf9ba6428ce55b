// Package errtypes defines the exception taxonomy of the runtime core:
// the BaseException hierarchy plus the non-catchable InterpreterError
// used for internal invariant violations.
package errtypes

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind names a node in the BaseException hierarchy. Kinds compose through
// the fixed parent table below, which IsA walks; it mirrors the fixed
// hierarchy from spec.md rather than a general subclass graph.
type Kind string

const (
	BaseException  Kind = "BaseException"
	Exception      Kind = "Exception"
	TypeError      Kind = "TypeError"
	ValueError     Kind = "ValueError"
	AttributeError Kind = "AttributeError"
	NameError      Kind = "NameError"
	UnboundLocal   Kind = "UnboundLocalError"
	LookupError    Kind = "LookupError"
	IndexError     Kind = "IndexError"
	KeyError       Kind = "KeyError"
	OverflowError  Kind = "OverflowError"
	ZeroDivision   Kind = "ZeroDivisionError"
	StopIteration  Kind = "StopIteration"
	SystemError    Kind = "SystemError"
	RuntimeErr     Kind = "RuntimeError"
)

// parent records the hierarchy given in spec.md §7: Exception <-
// {TypeError, ValueError, ...}; LookupError <- {IndexError, KeyError}.
var parent = map[Kind]Kind{
	Exception:      BaseException,
	TypeError:      Exception,
	ValueError:     Exception,
	AttributeError: Exception,
	NameError:      Exception,
	UnboundLocal:   NameError,
	LookupError:    Exception,
	IndexError:     LookupError,
	KeyError:       LookupError,
	OverflowError:  Exception,
	ZeroDivision:   Exception,
	StopIteration:  Exception,
	SystemError:    Exception,
	RuntimeErr:     Exception,
}

// IsA reports whether kind is k itself or a descendant of k in the
// exception hierarchy, walking the parent chain toward BaseException.
func IsA(kind, k Kind) bool {
	for cur := kind; ; {
		if cur == k {
			return true
		}
		next, ok := parent[cur]
		if !ok {
			return false
		}
		cur = next
	}
}

// UserException is a catchable, user-visible runtime error. Its Args
// mirror CPython's exception.args tuple; Message is the printable
// single-line summary used in the traceback.
type UserException struct {
	Kind    Kind
	Message string
	Args    []interface{}
}

func (e *UserException) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func New(kind Kind, format string, a ...interface{}) *UserException {
	return &UserException{Kind: kind, Message: fmt.Sprintf(format, a...), Args: []interface{}{fmt.Sprintf(format, a...)}}
}

func Newf(kind Kind, args []interface{}, format string, a ...interface{}) *UserException {
	return &UserException{Kind: kind, Message: fmt.Sprintf(format, a...), Args: args}
}

// InterpreterError marks an internal invariant violation (wrong slot
// signature, corrupt marshal stream, registry conflict): it is fatal,
// never caught by user code, and always carries a stack trace via
// github.com/pkg/errors so a crash log shows where the invariant broke.
type InterpreterError struct {
	cause error
}

func (e *InterpreterError) Error() string {
	return fmt.Sprintf("InterpreterError: %+v", e.cause)
}

func (e *InterpreterError) Unwrap() error { return e.cause }

// WithThread attaches a thread correlation id to an already-built
// InterpreterError, so a crash log traces back to the goroutine that
// raised it rather than just the failing instruction.
func (e *InterpreterError) WithThread(id string) *InterpreterError {
	return &InterpreterError{cause: errors.Wrapf(e.cause, "thread %s", id)}
}

// Fatal wraps msg (and any format args) into a fresh InterpreterError
// with a stack trace attached at the call site.
func Fatal(format string, a ...interface{}) *InterpreterError {
	return &InterpreterError{cause: errors.Errorf(format, a...)}
}

// FatalWrap attaches a stack trace to an existing cause, for internal
// errors surfaced from a lower layer (e.g. a corrupt marshal stream).
func FatalWrap(cause error, msg string) *InterpreterError {
	return &InterpreterError{cause: errors.Wrap(cause, msg)}
}

// emptySlot is the sentinel condition raised by every unoccupied slot's
// "empty" handle (spec.md §4.3). It is never a UserException: callers
// in package ops test for it with IsEmptySlot and convert it into a
// TypeError or a NotImplemented result before it can escape to user code.
type emptySlot struct{ slot string }

func (e *emptySlot) Error() string { return fmt.Sprintf("empty slot: %s", e.slot) }

func EmptySlot(slot string) error { return &emptySlot{slot: slot} }

func IsEmptySlot(err error) (string, bool) {
	if e, ok := err.(*emptySlot); ok {
		return e.slot, true
	}
	return "", false
}
