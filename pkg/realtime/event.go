package realtime

// Client message types (sent from client to server).
const (
	TypeSessionUpdate          = "session.update"
	TypeInputAudioBufferAppend = "input_audio_buffer.append"
	TypeInputAudioBufferClear  = "input_audio_buffer.clear"
)

// Server message types (sent from server to client).
const (
	TypeError = "error"

	// Input audio buffer
	TypeInputAudioBufferSpeechStarted = "input_audio_buffer.speech_started"

	// Transcription of the user's audio
	TypeInputAudioTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"

	// Response
	TypeResponseDone                 = "response.done"
	TypeResponseAudioDelta           = "response.audio.delta"
	TypeResponseAudioTranscriptDelta = "response.audio_transcript.delta"
	TypeResponseAudioTranscriptDone  = "response.audio_transcript.done"

	// TypeToolResponse is emitted by the middle tier after it ran a tool
	// (typically a knowledge base search) on behalf of the model.
	TypeToolResponse = "extension.middle_tier_tool_response"
)

// Turn detection modes.
const (
	// VADServerVAD enables server-side voice activity detection.
	VADServerVAD = "server_vad"
)

// Transcription defaults used when input transcription is enabled.
const (
	DefaultTranscriptionModel    = "whisper-1"
	DefaultTranscriptionLanguage = "ko-KR"
)
