package realtime

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Transport sends one JSON-encoded text frame.
type Transport interface {
	SendJSON(v any) error
}

// Lifecycle receives connectivity notifications from a Controller.
type Lifecycle interface {
	OnSocketOpen()
	OnSocketClose()

	// OnSocketError receives transport errors and frames Dispatch rejected
	// (as *ParseError).
	OnSocketError(err error)
}

// Controller owns the logical conversation session. It frames intents as
// outbound messages and routes inbound frames to a Handler.
//
// Controller implements Listener; attach it to a Socket and attach the
// Socket back as its Transport.
type Controller struct {
	handler   Handler
	lifecycle Lifecycle

	transcription    bool
	transcriptModel  string
	transcriptLocale string

	state atomic.Int32

	mu        sync.RWMutex
	transport Transport
}

// Option configures a Controller.
type Option func(*Controller)

// WithInputAudioTranscription requests transcription of the user's audio in
// StartSession.
func WithInputAudioTranscription(enabled bool) Option {
	return func(c *Controller) {
		c.transcription = enabled
	}
}

// WithTranscription overrides the transcription model and language.
// Empty values keep the defaults.
func WithTranscription(model, language string) Option {
	return func(c *Controller) {
		if model != "" {
			c.transcriptModel = model
		}
		if language != "" {
			c.transcriptLocale = language
		}
	}
}

// WithLifecycle sets the receiver of connectivity notifications.
func WithLifecycle(l Lifecycle) Option {
	return func(c *Controller) {
		c.lifecycle = l
	}
}

// NewController creates a controller that routes inbound messages to h.
func NewController(h Handler, opts ...Option) *Controller {
	if h == nil {
		h = BaseHandler{}
	}
	c := &Controller{
		handler:          h,
		transcriptModel:  DefaultTranscriptionModel,
		transcriptLocale: DefaultTranscriptionLanguage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach sets the transport used for outbound messages.
func (c *Controller) Attach(t Transport) {
	c.mu.Lock()
	c.transport = t
	c.mu.Unlock()
}

// State returns the current connectivity state.
func (c *Controller) State() ConnState {
	return ConnState(c.state.Load())
}

// StartSession sends the session configuration: server-side VAD and, when
// enabled, input audio transcription. No acknowledgement is awaited.
func (c *Controller) StartSession() error {
	msg := SessionUpdate{
		Type: TypeSessionUpdate,
		Session: SessionConfig{
			TurnDetection: &TurnDetection{Type: VADServerVAD},
		},
	}
	if c.transcription {
		msg.Session.InputAudioTranscription = &TranscriptionConfig{
			Model:    c.transcriptModel,
			Language: c.transcriptLocale,
		}
	}
	return c.send(msg)
}

// AddUserAudio appends a base64-encoded audio chunk to the input buffer.
func (c *Controller) AddUserAudio(chunk string) error {
	return c.send(InputAudioBufferAppend{
		Type:  TypeInputAudioBufferAppend,
		Audio: chunk,
	})
}

// AddUserAudioPCM base64-encodes raw PCM and appends it to the input buffer.
func (c *Controller) AddUserAudioPCM(pcm []byte) error {
	return c.AddUserAudio(base64.StdEncoding.EncodeToString(pcm))
}

// ClearInputAudioBuffer discards audio the server has not yet committed.
func (c *Controller) ClearInputAudioBuffer() error {
	return c.send(InputAudioBufferClear{Type: TypeInputAudioBufferClear})
}

func (c *Controller) send(v any) error {
	c.mu.RLock()
	t := c.transport
	c.mu.RUnlock()
	if t == nil {
		return ErrNotConnected
	}
	return t.SendJSON(v)
}

// === Listener ===

// OnConnecting implements Listener.
func (c *Controller) OnConnecting() {
	c.state.Store(int32(Connecting))
}

// OnOpen implements Listener.
func (c *Controller) OnOpen() {
	c.state.Store(int32(Connected))
	slog.Info("realtime socket opened")
	if c.lifecycle != nil {
		c.lifecycle.OnSocketOpen()
	}
}

// OnClose implements Listener.
func (c *Controller) OnClose() {
	c.state.Store(int32(Disconnected))
	slog.Info("realtime socket closed")
	if c.lifecycle != nil {
		c.lifecycle.OnSocketClose()
	}
}

// OnError implements Listener.
func (c *Controller) OnError(err error) {
	c.state.Store(int32(Disconnected))
	slog.Error("realtime socket error", "error", err)
	if c.lifecycle != nil {
		c.lifecycle.OnSocketError(err)
	}
}

// OnMessage implements Listener.
func (c *Controller) OnMessage(data []byte) {
	err := Dispatch(data, c.handler)
	if err == nil {
		return
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		slog.Error("realtime dispatch failed", "type", perr.Type, "error", perr.Err)
	}
	if c.lifecycle != nil {
		c.lifecycle.OnSocketError(err)
	}
}

var _ Listener = (*Controller)(nil)
