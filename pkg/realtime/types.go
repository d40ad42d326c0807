package realtime

import (
	"encoding/base64"
	"strings"
)

// === Outbound messages ===

// SessionUpdate configures the server-side session.
type SessionUpdate struct {
	Type    string        `json:"type"`
	Session SessionConfig `json:"session"`
}

// SessionConfig is the session payload of a session.update message.
type SessionConfig struct {
	// TurnDetection configures voice activity detection.
	TurnDetection *TurnDetection `json:"turn_detection,omitzero"`

	// InputAudioTranscription enables transcription of the user's audio.
	// Omitted entirely when transcription is disabled.
	InputAudioTranscription *TranscriptionConfig `json:"input_audio_transcription,omitzero"`
}

// TurnDetection configures voice activity detection.
type TurnDetection struct {
	// Type is the VAD mode, e.g. "server_vad".
	Type string `json:"type"`
}

// TranscriptionConfig configures input audio transcription.
type TranscriptionConfig struct {
	Model    string `json:"model"`
	Language string `json:"language,omitzero"`
}

// InputAudioBufferAppend appends base64 audio to the server input buffer.
type InputAudioBufferAppend struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

// InputAudioBufferClear discards the server input buffer.
type InputAudioBufferClear struct {
	Type string `json:"type"`
}

// === Inbound messages ===

// Message carries the fields shared by every inbound message.
type Message struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitzero"`
}

// ResponseAudioDelta carries a base64 chunk of synthesized audio.
type ResponseAudioDelta struct {
	Message
	ResponseID   string `json:"response_id,omitzero"`
	ItemID       string `json:"item_id,omitzero"`
	OutputIndex  int    `json:"output_index,omitzero"`
	ContentIndex int    `json:"content_index,omitzero"`
	Delta        string `json:"delta"`
}

// Audio decodes the base64 delta into raw PCM.
func (m *ResponseAudioDelta) Audio() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.Delta)
}

// ResponseAudioTranscriptDelta carries incremental transcript text of the
// assistant's audio.
type ResponseAudioTranscriptDelta struct {
	Message
	ResponseID   string `json:"response_id,omitzero"`
	ItemID       string `json:"item_id,omitzero"`
	OutputIndex  int    `json:"output_index,omitzero"`
	ContentIndex int    `json:"content_index,omitzero"`
	Delta        string `json:"delta"`
}

// ResponseAudioTranscriptDone carries the final transcript of one audio part.
type ResponseAudioTranscriptDone struct {
	Message
	ResponseID   string `json:"response_id,omitzero"`
	ItemID       string `json:"item_id,omitzero"`
	OutputIndex  int    `json:"output_index,omitzero"`
	ContentIndex int    `json:"content_index,omitzero"`
	Transcript   string `json:"transcript"`
}

// ResponseDone is sent when a response has finished streaming.
type ResponseDone struct {
	Message
	Response *ResponseResource `json:"response,omitzero"`
}

// ResponseResource describes a finished response.
type ResponseResource struct {
	ID     string       `json:"id,omitzero"`
	Status string       `json:"status,omitzero"` // "completed", "cancelled", "incomplete", "failed"
	Output []OutputItem `json:"output,omitzero"`
}

// OutputItem is one item produced by a response.
type OutputItem struct {
	ID      string        `json:"id,omitzero"`
	Type    string        `json:"type,omitzero"`
	Role    string        `json:"role,omitzero"`
	Content []ContentPart `json:"content,omitzero"`
}

// ContentPart is one part of an output item.
type ContentPart struct {
	Type       string `json:"type,omitzero"`
	Text       string `json:"text,omitzero"`
	Transcript string `json:"transcript,omitzero"`
}

// Transcript joins the transcripts and texts of every output part.
func (r *ResponseResource) Transcript() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for _, item := range r.Output {
		for _, part := range item.Content {
			switch {
			case part.Transcript != "":
				sb.WriteString(part.Transcript)
			case part.Text != "":
				sb.WriteString(part.Text)
			}
		}
	}
	return sb.String()
}

// InputAudioTranscriptionCompleted carries the transcript of the user's audio.
type InputAudioTranscriptionCompleted struct {
	Message
	ItemID       string `json:"item_id,omitzero"`
	ContentIndex int    `json:"content_index,omitzero"`
	Transcript   string `json:"transcript"`
}

// ToolResponse is emitted by the middle tier after running a tool.
// ToolResult is itself a JSON document encoded as a string.
type ToolResponse struct {
	Message
	PreviousItemID string `json:"previous_item_id,omitzero"`
	ToolName       string `json:"tool_name,omitzero"`
	ToolResult     string `json:"tool_result"`
}

// ErrorMessage is an error reported by the server.
type ErrorMessage struct {
	Message
	Error *EventError `json:"error,omitzero"`
}
