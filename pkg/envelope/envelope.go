// Package envelope canonicalizes Mber service responses. The service wraps
// every outcome in a JSON object carrying a "status" field, but the rest of
// the shape varies across success, failure, and conflict outcomes. Normalize
// converts raw response text into an Envelope that is guaranteed to carry a
// status and, for non-Success outcomes, an error message.
package envelope

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Status is the outcome token reported by the service. Tokens outside the
// ones enumerated here pass through unchanged.
type Status string

const (
	StatusSuccess       Status = "Success"
	StatusFailed        Status = "Failed"
	StatusDuplicate     Status = "Duplicate"
	StatusNotFound      Status = "NotFound"
	StatusNotAuthorized Status = "NotAuthorized"
)

// Envelope is a canonicalized service response. Envelopes are immutable
// values; rewriters like With return a copy. The zero Envelope carries no
// status and reports false from IsSuccess.
type Envelope struct {
	raw string
}

// Normalize parses raw response text into a well-formed Envelope. Any
// prefix before the first '{' is stripped before parsing; text that still
// fails to parse is treated as an empty object. A missing status becomes
// Failed. Non-Success envelopes are guaranteed an error message, populated
// from "error", then "message", then the "invalid" field, and finally the
// raw response text itself.
func Normalize(raw string) Envelope {
	body := raw
	if i := strings.Index(body, "{"); i > 0 {
		body = body[i:]
	}
	if !gjson.Valid(body) || !gjson.Parse(body).IsObject() {
		body = "{}"
	}

	if !gjson.Get(body, "status").Exists() {
		body, _ = sjson.Set(body, "status", string(StatusFailed))
	}
	if Status(gjson.Get(body, "status").String()) == StatusSuccess {
		return Envelope{raw: body}
	}

	if gjson.Get(body, "error").String() != "" {
		return Envelope{raw: body}
	}
	if msg := gjson.Get(body, "message").String(); msg != "" {
		body, _ = sjson.Set(body, "error", msg)
		return Envelope{raw: body}
	}
	if invalid := gjson.Get(body, "invalid").String(); invalid != "" {
		body, _ = sjson.Set(body, "error", "Invalid "+invalid)
		return Envelope{raw: body}
	}
	body, _ = sjson.Set(body, "error", raw)
	return Envelope{raw: body}
}

// Success returns an envelope carrying only a Success status.
func Success() Envelope {
	return Envelope{}.WithStatus(StatusSuccess)
}

// Failed returns a Failed envelope carrying the given error message.
func Failed(msg string) Envelope {
	return Envelope{}.WithStatus(StatusFailed).With("error", msg)
}

// Failedf returns a Failed envelope with a formatted error message.
func Failedf(format string, args ...any) Envelope {
	return Failed(fmt.Sprintf(format, args...))
}

// Raw returns the canonical JSON text of the envelope.
func (e Envelope) Raw() string {
	if e.raw == "" {
		return "{}"
	}
	return e.raw
}

// Status returns the outcome token, or the empty status for the zero
// envelope.
func (e Envelope) Status() Status {
	return Status(gjson.Get(e.raw, "status").String())
}

// IsSuccess reports whether the envelope carries a Success status.
func (e Envelope) IsSuccess() bool {
	return e.Status() == StatusSuccess
}

// Is reports whether the envelope carries the given status.
func (e Envelope) Is(s Status) bool {
	return e.Status() == s
}

// ErrorMessage returns the error field, or the empty string if absent.
func (e Envelope) ErrorMessage() string {
	return gjson.Get(e.raw, "error").String()
}

// String returns the named top-level field as a string, or the empty
// string if the key is absent.
func (e Envelope) String(key string) string {
	return gjson.Get(e.raw, key).String()
}

// Bool returns the named top-level field as a bool, or false if the key is
// absent.
func (e Envelope) Bool(key string) bool {
	return gjson.Get(e.raw, key).Bool()
}

// Int returns the named top-level field as an int64, or zero if the key is
// absent.
func (e Envelope) Int(key string) int64 {
	return gjson.Get(e.raw, key).Int()
}

// Get resolves a gjson path against the envelope, for nested payloads such
// as "result.directories" or "results".
func (e Envelope) Get(path string) gjson.Result {
	return gjson.Get(e.raw, path)
}

// With returns a copy of the envelope with the given top-level field set.
func (e Envelope) With(key string, value any) Envelope {
	raw, err := sjson.Set(e.Raw(), key, value)
	if err != nil {
		return e
	}
	return Envelope{raw: raw}
}

// WithStatus returns a copy of the envelope with the status replaced.
func (e Envelope) WithStatus(s Status) Envelope {
	return e.With("status", string(s))
}
