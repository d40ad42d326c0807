package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/salpyeo/dream/pkg/grounding"
	"github.com/salpyeo/dream/pkg/realtime"
)

// DefaultHistoryTimeout bounds a single chat history save.
const DefaultHistoryTimeout = 30 * time.Second

// ErrNoSession is returned by Toggle before Attach.
var ErrNoSession = errors.New("assistant: no session attached")

// Session is the part of the realtime controller the assistant drives.
type Session interface {
	StartSession() error
	AddUserAudio(chunk string) error
	ClearInputAudioBuffer() error
}

// Capture produces base64 audio chunks.
type Capture interface {
	Start(ctx context.Context, onChunk func(chunk string)) error
	Stop() error
}

// Playback renders base64 audio chunks.
type Playback interface {
	Reset()
	Play(chunk string) error
	Stop() error
}

// HistorySink stores finished conversation turns.
type HistorySink interface {
	SaveChatHistory(ctx context.Context, userMessage, botMessage string) error
}

// Turn is one finished exchange.
type Turn struct {
	UserMessage string `json:"userMessage"`
	BotMessage  string `json:"botMessage"`
}

// Observer receives what a front end would render. Methods are called from
// the socket's read goroutine, except OnRecording which is called from
// Toggle.
type Observer interface {
	OnRecording(recording bool)
	OnUserTranscript(text string)
	OnAssistantTranscriptDelta(delta string)
	OnTurn(turn Turn)
	OnGroundingFiles(files []grounding.File)
	OnError(err error)
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithHistory saves every finished turn to sink.
func WithHistory(sink HistorySink) Option {
	return func(a *Assistant) {
		a.history = sink
	}
}

// WithHistoryTimeout overrides DefaultHistoryTimeout.
func WithHistoryTimeout(d time.Duration) Option {
	return func(a *Assistant) {
		if d > 0 {
			a.historyTimeout = d
		}
	}
}

// WithInputTranscription tells the assistant the session transcribes the
// user's audio. A finished reply is then held until the transcript of the
// utterance it answers arrives, since transcription completes independently
// of the response.
func WithInputTranscription(enabled bool) Option {
	return func(a *Assistant) {
		a.awaitTranscript = enabled
	}
}

// WithObserver registers o for UI events.
func WithObserver(o Observer) Option {
	return func(a *Assistant) {
		a.observer = o
	}
}

// Assistant implements realtime.Handler and realtime.Lifecycle.
type Assistant struct {
	recorder        Capture
	player          Playback
	history         HistorySink
	historyTimeout  time.Duration
	observer        Observer
	awaitTranscript bool

	files grounding.List

	mu        sync.Mutex
	session   Session
	recording bool
	connected bool
	selected  *grounding.File
	botDelta  strings.Builder
	botDone   strings.Builder
	lastErr   error

	// User transcripts not yet paired with a reply, and replies waiting for
	// their transcript. Both are in arrival order.
	transcripts []userTranscript
	pending     []Turn

	saves sync.WaitGroup
}

// New returns an Assistant that records with recorder and plays replies with
// player.
func New(recorder Capture, player Playback, opts ...Option) *Assistant {
	a := &Assistant{
		recorder:       recorder,
		player:         player,
		historyTimeout: DefaultHistoryTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Attach sets the session the assistant drives.
func (a *Assistant) Attach(s Session) {
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
}

// Recording reports whether the microphone is on.
func (a *Assistant) Recording() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recording
}

// Connected reports whether the socket is open.
func (a *Assistant) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

// LastError returns the last error reported by the server.
func (a *Assistant) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Toggle starts recording when stopped and stops it when recording.
//
// Starting sends session.update, starts the recorder and resets the player,
// in that order, and fails on the first error. Stopping attempts all three of
// stop recorder, stop player and clear the input buffer, and returns their
// errors joined.
func (a *Assistant) Toggle(ctx context.Context) error {
	a.mu.Lock()
	session, recording := a.session, a.recording
	a.mu.Unlock()
	if session == nil {
		return ErrNoSession
	}

	if !recording {
		if err := session.StartSession(); err != nil {
			return fmt.Errorf("assistant: start session: %w", err)
		}
		err := a.recorder.Start(ctx, func(chunk string) {
			if err := session.AddUserAudio(chunk); err != nil {
				slog.Debug("assistant: drop audio chunk", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("assistant: start recorder: %w", err)
		}
		a.player.Reset()
		a.setRecording(true)
		return nil
	}

	var errs []error
	if err := a.recorder.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("assistant: stop recorder: %w", err))
	}
	if err := a.player.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("assistant: stop player: %w", err))
	}
	if err := session.ClearInputAudioBuffer(); err != nil {
		errs = append(errs, fmt.Errorf("assistant: clear input buffer: %w", err))
	}
	a.setRecording(false)
	return errors.Join(errs...)
}

func (a *Assistant) setRecording(v bool) {
	a.mu.Lock()
	a.recording = v
	a.mu.Unlock()
	if a.observer != nil {
		a.observer.OnRecording(v)
	}
}

// GroundingFiles returns the grounding files received so far, in order.
func (a *Assistant) GroundingFiles() []grounding.File {
	return a.files.Files()
}

// Select marks the grounding file with the given id as selected.
func (a *Assistant) Select(id string) bool {
	f, ok := a.files.Find(id)
	if !ok {
		return false
	}
	a.mu.Lock()
	a.selected = &f
	a.mu.Unlock()
	return true
}

// Selected returns the selected grounding file.
func (a *Assistant) Selected() (grounding.File, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.selected == nil {
		return grounding.File{}, false
	}
	return *a.selected, true
}

// ClearSelection deselects the grounding file.
func (a *Assistant) ClearSelection() {
	a.mu.Lock()
	a.selected = nil
	a.mu.Unlock()
}

// Flush emits replies still waiting for a user transcript with an empty
// user message. Call it once no more inbound messages can arrive.
func (a *Assistant) Flush() {
	a.mu.Lock()
	turns := a.pending
	a.pending = nil
	dropped := len(a.transcripts)
	a.transcripts = nil
	a.mu.Unlock()

	if dropped > 0 {
		slog.Debug("assistant: drop unanswered transcripts", "count", dropped)
	}
	for _, turn := range turns {
		a.emit(turn)
	}
}

// Wait blocks until pending history saves have finished.
func (a *Assistant) Wait() {
	a.saves.Wait()
}
