// Package apperr defines the single error type returned by every fallible
// operation in nodecli.
//
// An Error is one of a closed set of kinds. Each kind carries exactly one
// payload: the message for Custom, or the foreign error value (I/O, hex,
// HTTP, JSON, logger, optional, database, or any other source) for
// everything else. The payload
// is kept as-is and is reachable with errors.As through Unwrap.
//
// Foreign errors are converted once, where they first surface:
//
//	data, err := os.ReadFile(path)
//	if err != nil {
//	    return apperr.IO(err)
//	}
//
// and the resulting value travels up unchanged until main renders it.
package apperr

import (
	"errors"

	"github.com/rs/zerolog"
)

// Kind identifies which failure source produced an Error.
type Kind string

const (
	KindCustom   Kind = "custom"
	KindIO       Kind = "io"
	KindHex      Kind = "hex"
	KindHTTP     Kind = "http"
	KindJSON     Kind = "json"
	KindLogger   Kind = "logger"
	KindNone     Kind = "none"
	KindDatabase Kind = "database"
	// KindOther holds a foreign error from a source with no kind of its own.
	KindOther Kind = "other"
)

// Kinds lists every kind in rendering order.
var Kinds = []Kind{KindCustom, KindIO, KindHex, KindHTTP, KindJSON, KindLogger, KindNone, KindDatabase, KindOther}

// Error is the application error. Values are immutable once constructed.
type Error struct {
	kind Kind
	msg  string // Custom only
	err  error  // every other kind
}

func (e *Error) Kind() Kind { return e.kind }

// Message returns the text of a Custom error, or "" for other kinds.
func (e *Error) Message() string { return e.msg }

// Payload returns the wrapped foreign error, or nil for Custom.
func (e *Error) Payload() error { return e.err }

// Error returns a concise single-line form, suitable for logs.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.kind == KindCustom {
		return e.msg
	}
	if e.err == nil {
		return string(e.kind)
	}
	return string(e.kind) + ": " + e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

// MarshalZerologObject lets an Error be logged with Event.Object.
func (e *Error) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("kind", string(e.kind)).Str("error", e.Error())
}

// KindOf returns the kind of the first Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind
	}
	return ""
}
