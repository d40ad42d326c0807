// Package audio adapts raw PCM16 streams to the realtime session.
//
// A Recorder reads little-endian signed 16-bit PCM from any io.Reader (a
// microphone stream, a file, a pipe), converts it to the session format
// (24 kHz mono) and emits base64 chunks of a fixed duration. A Player decodes
// base64 audio deltas and writes the PCM to an io.Writer in order.
//
// Example usage:
//
//	rec := &audio.Recorder{
//	    Source: mic,
//	    Format: audio.Format{SampleRate: 48000, Stereo: true},
//	}
//	err := rec.Start(ctx, func(chunk string) {
//	    ctrl.AddUserAudio(chunk)
//	})
//
//	player := &audio.Player{Sink: speaker}
//	player.Reset()
//	player.Play(delta.Delta)
package audio
