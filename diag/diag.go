// Package diag defines the diagnostic records the state registry emits when an
// operation is refused or a change callback misbehaves. Diagnostics are
// observations, not errors: the registry reports them through a sink and
// carries on, so callers that ignore them lose nothing but visibility.
//
// # Usage
//
// Install a handler on a registry to receive structured diagnostics:
//
//	reg := state.New(state.WithDiagnosticHandler(func(d diag.Diagnostic) {
//	    metrics.Count(d.Code.String())
//	}))
//
// Without a handler, diagnostics still reach the registry's logger as
// warn/error lines.
package diag

import (
	"encoding/json"
	"fmt"
	"time"
)

// Diagnostic is one reported condition: which guard refused what, or which
// callback panicked. All fields are set by the registry.
type Diagnostic struct {
	Code     Code      `json:"code"`
	Severity Severity  `json:"severity"`
	State    string    `json:"state,omitempty"`
	Message  string    `json:"message"`
	Detail   string    `json:"detail,omitempty"`
	Time     time.Time `json:"time"`
}

// Handler receives diagnostics as they are raised. Handlers run inline on the
// operation's goroutine and must not call back into the registry.
type Handler func(Diagnostic)

// New creates a diagnostic for the given code and state name with the code's
// default severity and description.
func New(code Code, state string) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: code.DefaultSeverity(),
		State:    state,
		Message:  code.Description(),
		Time:     time.Now(),
	}
}

// Newf creates a diagnostic with a formatted detail string.
func Newf(code Code, state, format string, args ...interface{}) Diagnostic {
	d := New(code, state)
	d.Detail = fmt.Sprintf(format, args...)
	return d
}

// String renders the diagnostic as a single human-readable line.
func (d Diagnostic) String() string {
	if d.Detail != "" {
		return fmt.Sprintf("%s %s: %s (%s)", d.Code, d.State, d.Message, d.Detail)
	}
	return fmt.Sprintf("%s %s: %s", d.Code, d.State, d.Message)
}

// Fields returns the diagnostic as logger fields.
func (d Diagnostic) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"code":  d.Code.String(),
		"state": d.State,
	}
	if d.Detail != "" {
		fields["detail"] = d.Detail
	}
	return fields
}

// MarshalJSON implements json.Marshaler, formatting time as RFC 3339.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	type alias Diagnostic
	return json.Marshal(struct {
		alias
		Time string `json:"time"`
	}{
		alias: alias(d),
		Time:  d.Time.Format(time.RFC3339Nano),
	})
}
