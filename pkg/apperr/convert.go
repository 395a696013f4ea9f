package apperr

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"

	"github.com/habedi/nodecli/pkg/logging"
	"github.com/habedi/nodecli/pkg/optional"
	"gorm.io/gorm"
)

// Custom signals a domain failure that has no underlying foreign error.
func Custom(msg string) error { return &Error{kind: KindCustom, msg: msg} }

// Customf is Custom with a formatted message.
func Customf(format string, args ...any) error {
	return Custom(fmt.Sprintf(format, args...))
}

// The conversions below return nil when err is nil, so they can wrap a call
// result directly: return apperr.IO(f.Close()).

// IO wraps a failed filesystem or stream operation.
func IO(err error) error { return wrap(KindIO, err) }

// Hex wraps an encoding/hex decoding failure.
func Hex(err error) error { return wrap(KindHex, err) }

// HTTP wraps a failed HTTP request: transport errors, timeouts and bad statuses.
func HTTP(err error) error { return wrap(KindHTTP, err) }

// JSON wraps an encoding/json failure.
func JSON(err error) error { return wrap(KindJSON, err) }

// Logger wraps a logger initialization failure.
func Logger(err error) error { return wrap(KindLogger, err) }

// None wraps a read from an empty optional.Option.
func None(err error) error { return wrap(KindNone, err) }

// Database wraps a gorm / sqlite failure.
func Database(err error) error { return wrap(KindDatabase, err) }

// Other wraps a foreign error whose source has no kind of its own, such as a
// cancelled context.
func Other(err error) error { return wrap(KindOther, err) }

func wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, err: err}
}

// From converts any error into an *Error. An *Error already in the chain is
// returned untouched; otherwise the kind is chosen from the origin type of
// err. Errors from an unknown source become KindOther with err as the
// payload. From returns nil for a nil error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{kind: classify(err), err: err}
}

func classify(err error) Kind {
	switch {
	case isNone(err):
		return KindNone
	case isLogger(err):
		return KindLogger
	case isHTTP(err):
		return KindHTTP
	case isJSON(err):
		return KindJSON
	case isHex(err):
		return KindHex
	case isDatabase(err):
		return KindDatabase
	case isIO(err):
		return KindIO
	default:
		return KindOther
	}
}

func isNone(err error) bool {
	var noneErr optional.NoneError
	return errors.As(err, &noneErr)
}

func isLogger(err error) bool {
	var setErr *logging.SetLoggerError
	return errors.As(err, &setErr)
}

func isHTTP(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func isJSON(err error) bool {
	var (
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
		invalidErr     *json.InvalidUnmarshalError
		unsupportedTyp *json.UnsupportedTypeError
		unsupportedVal *json.UnsupportedValueError
		marshalerErr   *json.MarshalerError
	)
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &unsupportedTyp) ||
		errors.As(err, &unsupportedVal) ||
		errors.As(err, &marshalerErr)
}

func isHex(err error) bool {
	var byteErr hex.InvalidByteError
	return errors.Is(err, hex.ErrLength) || errors.As(err, &byteErr)
}

var gormErrors = []error{
	gorm.ErrRecordNotFound,
	gorm.ErrInvalidTransaction,
	gorm.ErrInvalidDB,
	gorm.ErrInvalidData,
	gorm.ErrMissingWhereClause,
	gorm.ErrDuplicatedKey,
}

func isDatabase(err error) bool {
	for _, target := range gormErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var ioErrors = []error{
	io.EOF,
	io.ErrUnexpectedEOF,
	io.ErrShortWrite,
	io.ErrClosedPipe,
	fs.ErrNotExist,
	fs.ErrExist,
	fs.ErrPermission,
	fs.ErrClosed,
}

func isIO(err error) bool {
	var (
		pathErr    *fs.PathError
		linkErr    *os.LinkError
		syscallErr *os.SyscallError
	)
	if errors.As(err, &pathErr) || errors.As(err, &linkErr) || errors.As(err, &syscallErr) {
		return true
	}
	for _, target := range ioErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
