package client

import (
	"encoding/json"
	"fmt"

	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

// OutcomeKind tags the result of an upstream call.
type OutcomeKind int

const (
	// OutcomeOK means a response body was received and parsed. The HTTP
	// status may still be a non-2xx application error.
	OutcomeOK OutcomeKind = iota
	// OutcomeUnauthorized means the session was rejected and the operator
	// has been sent to the login entry point.
	OutcomeUnauthorized
	// OutcomeTransport means the call failed on the network or the body
	// was not JSON.
	OutcomeTransport
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Outcome is what every Request returns. Only OK outcomes may be acted on;
// both failure kinds mean the calling operation is aborted.
type Outcome struct {
	Kind   OutcomeKind
	Status int
	Body   json.RawMessage
	Err    error
}

// OK reports whether the caller may proceed.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeOK
}

// Decode unmarshals the body into dest. An empty body leaves dest untouched.
func (o Outcome) Decode(dest interface{}) error {
	if !o.OK() {
		return o.AsError()
	}
	if len(o.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(o.Body, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "unexpected response shape")
	}
	return nil
}

// AsError converts a failed outcome into a console error; OK yields nil.
func (o Outcome) AsError() error {
	switch o.Kind {
	case OutcomeOK:
		return nil
	case OutcomeUnauthorized:
		return appErrors.ErrUnauthorized
	default:
		if o.Err != nil {
			return appErrors.Wrap(o.Err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
		}
		return appErrors.ErrTransport
	}
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s (%d): %v", o.Kind, o.Status, o.Err)
	}
	return fmt.Sprintf("%s (%d)", o.Kind, o.Status)
}
