package realtime

import "encoding/json"

// Handler receives inbound messages, one method per message variant.
//
// Dispatch calls at most one method per message. Methods are invoked from
// the socket's read goroutine, one message at a time, in arrival order.
type Handler interface {
	OnResponseAudioDelta(m *ResponseAudioDelta)
	OnResponseAudioTranscriptDelta(m *ResponseAudioTranscriptDelta)
	OnResponseAudioTranscriptDone(m *ResponseAudioTranscriptDone)
	OnResponseDone(m *ResponseDone)
	OnInputAudioBufferSpeechStarted(m *Message)
	OnInputAudioTranscriptionCompleted(m *InputAudioTranscriptionCompleted)
	OnToolResponse(m *ToolResponse)
	OnError(m *ErrorMessage)
}

// BaseHandler implements Handler with no-op methods. Embed it to handle only
// a subset of the message variants.
type BaseHandler struct{}

func (BaseHandler) OnResponseAudioDelta(*ResponseAudioDelta)                             {}
func (BaseHandler) OnResponseAudioTranscriptDelta(*ResponseAudioTranscriptDelta)         {}
func (BaseHandler) OnResponseAudioTranscriptDone(*ResponseAudioTranscriptDone)           {}
func (BaseHandler) OnResponseDone(*ResponseDone)                                         {}
func (BaseHandler) OnInputAudioBufferSpeechStarted(*Message)                             {}
func (BaseHandler) OnInputAudioTranscriptionCompleted(*InputAudioTranscriptionCompleted) {}
func (BaseHandler) OnToolResponse(*ToolResponse)                                         {}
func (BaseHandler) OnError(*ErrorMessage)                                                {}

var _ Handler = BaseHandler{}

// Dispatch parses one inbound frame and invokes the matching Handler method.
//
// A frame that is not valid JSON yields a *ParseError and no method is
// called. Frames with an unrecognized type are dropped and Dispatch returns
// nil.
func Dispatch(data []byte, h Handler) error {
	var env Message
	if err := json.Unmarshal(data, &env); err != nil {
		return &ParseError{Data: data, Err: err}
	}

	switch env.Type {
	case TypeResponseAudioDelta:
		return dispatch(data, env.Type, h.OnResponseAudioDelta)
	case TypeResponseAudioTranscriptDelta:
		return dispatch(data, env.Type, h.OnResponseAudioTranscriptDelta)
	case TypeResponseAudioTranscriptDone:
		return dispatch(data, env.Type, h.OnResponseAudioTranscriptDone)
	case TypeResponseDone:
		return dispatch(data, env.Type, h.OnResponseDone)
	case TypeInputAudioBufferSpeechStarted:
		h.OnInputAudioBufferSpeechStarted(&env)
	case TypeInputAudioTranscriptionCompleted:
		return dispatch(data, env.Type, h.OnInputAudioTranscriptionCompleted)
	case TypeToolResponse:
		return dispatch(data, env.Type, h.OnToolResponse)
	case TypeError:
		return dispatch(data, env.Type, h.OnError)
	}
	return nil
}

// dispatch decodes data into a T and passes it to fn.
func dispatch[T any](data []byte, typ string, fn func(*T)) error {
	m := new(T)
	if err := json.Unmarshal(data, m); err != nil {
		return &ParseError{Type: typ, Data: data, Err: err}
	}
	fn(m)
	return nil
}
