package realtime

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when a message is sent while no connection is
// open.
var ErrNotConnected = errors.New("realtime: not connected")

// EventError is the error payload of an "error" message.
type EventError struct {
	Type    string `json:"type,omitzero"`
	Code    string `json:"code,omitzero"`
	Message string `json:"message,omitzero"`
	Param   string `json:"param,omitzero"`
	EventID string `json:"event_id,omitzero"`
}

// Error implements the error interface.
func (e *EventError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("realtime: %s: %s", e.Code, e.Message)
	}
	if e.Type != "" {
		return fmt.Sprintf("realtime: %s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("realtime: %s", e.Message)
}

// ParseError is returned by Dispatch when an inbound frame is not valid JSON
// or does not match the shape of its declared type.
type ParseError struct {
	// Type is the message type, empty when the envelope itself was malformed.
	Type string

	// Data is the offending frame.
	Data []byte

	Err error
}

func (e *ParseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("realtime: parse message: %v", e.Err)
	}
	return fmt.Sprintf("realtime: parse %s: %v", e.Type, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
