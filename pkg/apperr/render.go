package apperr

import (
	"fmt"
	"strings"
)

const (
	failMark = "✘ "
	signOff  = "✔ Exiting, goodbye!\n"
	// HTTPHint is printed under every HTTP error.
	HTTPHint = "Please check your node & port settings and retry."

	description = "\n✘ Program Error!\n"
)

var labels = map[Kind]string{
	KindIO:       "I/O Error!",
	KindHex:      "Hex Error!",
	KindHTTP:     "HTTP Reqwest Error!",
	KindJSON:     "Serde-Json Error!",
	KindLogger:   "Logger Error!",
	KindNone:     "Nothing to unwrap!",
	KindDatabase: "Database Error!",
	KindOther:    "Unexpected Error!",
}

// Label returns the heading printed for a kind, or "" for Custom.
func Label(k Kind) string { return labels[k] }

// Description returns the generic heading used when the kind does not matter.
func Description() string { return description }

// Description returns the same constant for every Error.
func (e *Error) Description() string { return description }

// Render returns the multi-line message shown on the terminal before exit.
func (e *Error) Render() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")

	switch e.kind {
	case KindCustom:
		b.WriteString(e.msg)
		b.WriteString("\n")
	case KindLogger, KindNone:
		// These payloads carry no useful message; show their structure.
		writeFailure(&b, e.kind, fmt.Sprintf("%#v", e.err))
	case KindHTTP:
		writeFailure(&b, e.kind, e.err.Error())
		b.WriteString(failMark + HTTPHint + "\n")
	case KindIO, KindHex, KindJSON, KindDatabase, KindOther:
		writeFailure(&b, e.kind, e.err.Error())
	default:
		panic(fmt.Sprintf("apperr: unknown kind %q", e.kind))
	}

	b.WriteString(signOff)
	return b.String()
}

func writeFailure(b *strings.Builder, k Kind, payload string) {
	b.WriteString(failMark + labels[k] + "\n")
	b.WriteString(failMark + payload + "\n")
}
