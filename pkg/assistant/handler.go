package assistant

import (
	"context"
	"log/slog"

	"github.com/salpyeo/dream/pkg/grounding"
	"github.com/salpyeo/dream/pkg/realtime"
)

// === realtime.Handler ===

// OnResponseAudioDelta plays the chunk while recording.
func (a *Assistant) OnResponseAudioDelta(m *realtime.ResponseAudioDelta) {
	if !a.Recording() {
		return
	}
	if err := a.player.Play(m.Delta); err != nil {
		slog.Warn("assistant: play audio delta", "error", err)
	}
}

// OnResponseAudioTranscriptDelta accumulates the assistant's words.
func (a *Assistant) OnResponseAudioTranscriptDelta(m *realtime.ResponseAudioTranscriptDelta) {
	a.mu.Lock()
	a.botDelta.WriteString(m.Delta)
	a.mu.Unlock()
	if a.observer != nil {
		a.observer.OnAssistantTranscriptDelta(m.Delta)
	}
}

// OnResponseAudioTranscriptDone records the final transcript of one part.
func (a *Assistant) OnResponseAudioTranscriptDone(m *realtime.ResponseAudioTranscriptDone) {
	slog.Debug("assistant: transcript done", "item_id", m.ItemID, "transcript", m.Transcript)
	a.mu.Lock()
	a.botDone.WriteString(m.Transcript)
	a.mu.Unlock()
}

// OnResponseDone closes the current reply and pairs it with the oldest
// unanswered user transcript. With input transcription enabled and no
// transcript yet, the reply waits for OnInputAudioTranscriptionCompleted.
func (a *Assistant) OnResponseDone(m *realtime.ResponseDone) {
	a.mu.Lock()
	bot := a.botDone.String()
	if bot == "" {
		bot = a.botDelta.String()
	}
	if bot == "" {
		bot = m.Response.Transcript()
	}
	a.botDelta.Reset()
	a.botDone.Reset()

	var ready []Turn
	switch {
	case len(a.transcripts) > 0:
		ready = append(ready, Turn{UserMessage: a.transcripts[0].text, BotMessage: bot})
		a.transcripts = a.transcripts[1:]
	case a.awaitTranscript:
		// A reply still waiting when the next one finishes lost its
		// transcript; release it as is.
		if len(a.pending) > 0 {
			slog.Warn("assistant: no user transcript for reply", "pending", len(a.pending))
			ready = a.pending
			a.pending = nil
		}
		if bot != "" {
			a.pending = append(a.pending, Turn{BotMessage: bot})
		}
	default:
		ready = append(ready, Turn{BotMessage: bot})
	}
	a.mu.Unlock()

	for _, turn := range ready {
		a.emit(turn)
	}
}

// emit reports a finished turn and saves it.
func (a *Assistant) emit(turn Turn) {
	if turn.BotMessage == "" && turn.UserMessage == "" {
		return
	}
	if a.observer != nil {
		a.observer.OnTurn(turn)
	}
	if a.history != nil {
		a.saves.Go(func() { a.saveTurn(turn) })
	}
}

func (a *Assistant) saveTurn(turn Turn) {
	ctx, cancel := context.WithTimeout(context.Background(), a.historyTimeout)
	defer cancel()
	if err := a.history.SaveChatHistory(ctx, turn.UserMessage, turn.BotMessage); err != nil {
		slog.Error("assistant: save chat history", "error", err)
		if a.observer != nil {
			a.observer.OnError(err)
		}
	}
}

// OnInputAudioBufferSpeechStarted interrupts playback when the user talks.
func (a *Assistant) OnInputAudioBufferSpeechStarted(*realtime.Message) {
	if err := a.player.Stop(); err != nil {
		slog.Warn("assistant: stop player", "error", err)
	}
}

// OnInputAudioTranscriptionCompleted records the user's words. They complete
// the oldest reply waiting for a transcript, or wait for the next reply.
// Completions for an item already queued are merged.
func (a *Assistant) OnInputAudioTranscriptionCompleted(m *realtime.InputAudioTranscriptionCompleted) {
	var (
		turn  Turn
		ready bool
	)
	a.mu.Lock()
	switch {
	case m.ItemID != "" && a.mergeTranscript(m.ItemID, m.Transcript):
	case len(a.pending) > 0:
		turn = a.pending[0]
		turn.UserMessage = m.Transcript
		a.pending = a.pending[1:]
		ready = true
	default:
		a.transcripts = append(a.transcripts, userTranscript{itemID: m.ItemID, text: m.Transcript})
	}
	a.mu.Unlock()

	if a.observer != nil {
		a.observer.OnUserTranscript(m.Transcript)
	}
	if ready {
		a.emit(turn)
	}
}

type userTranscript struct {
	itemID string
	text   string
}

// mergeTranscript appends text to the queued transcript of itemID.
// a.mu must be held.
func (a *Assistant) mergeTranscript(itemID, text string) bool {
	for i := range a.transcripts {
		if a.transcripts[i].itemID == itemID {
			a.transcripts[i].text += text
			return true
		}
	}
	return false
}

// OnToolResponse appends the cited sources to the grounding files.
func (a *Assistant) OnToolResponse(m *realtime.ToolResponse) {
	files, err := grounding.ParseToolResult(m.ToolResult)
	if err != nil {
		slog.Error("assistant: tool response", "tool", m.ToolName, "error", err)
		return
	}
	a.files.Append(files...)
	if a.observer != nil && len(files) > 0 {
		a.observer.OnGroundingFiles(files)
	}
}

// OnError keeps the server error as the last error.
func (a *Assistant) OnError(m *realtime.ErrorMessage) {
	var err error = &realtime.EventError{Message: "unknown error"}
	if m.Error != nil {
		err = m.Error
	}
	slog.Error("assistant: server error", "error", err)
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
	if a.observer != nil {
		a.observer.OnError(err)
	}
}

// === realtime.Lifecycle ===

// OnSocketOpen implements realtime.Lifecycle.
func (a *Assistant) OnSocketOpen() {
	a.mu.Lock()
	a.connected = true
	a.mu.Unlock()
}

// OnSocketClose implements realtime.Lifecycle.
func (a *Assistant) OnSocketClose() {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
}

// OnSocketError implements realtime.Lifecycle.
func (a *Assistant) OnSocketError(err error) {
	if a.observer != nil {
		a.observer.OnError(err)
	}
}

var (
	_ realtime.Handler   = (*Assistant)(nil)
	_ realtime.Lifecycle = (*Assistant)(nil)
)
