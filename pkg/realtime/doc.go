// Package realtime provides the session controller for the realtime speech
// API used by the dream voice assistant.
//
// The package has three layers:
//
//   - Socket: a persistent websocket that always reconnects after it closes.
//   - Controller: turns intents (start session, append audio, clear the input
//     buffer) into outbound messages and tracks connectivity.
//   - Dispatch: a pure router from an inbound message to one Handler method.
//
// # Wiring
//
//	ctrl := realtime.NewController(h, realtime.WithInputAudioTranscription(true))
//	sock := realtime.NewSocket(url, ctrl)
//	ctrl.Attach(sock)
//	go sock.Run(ctx)
//
// Once the socket is open, configure the session and stream audio:
//
//	if err := ctrl.StartSession(); err != nil {
//	    return err
//	}
//	err = ctrl.AddUserAudio(base64Chunk)
//
// # Receiving Messages
//
// Implement Handler, embedding BaseHandler to ignore the variants you do not
// care about:
//
//	type printer struct{ realtime.BaseHandler }
//
//	func (printer) OnResponseAudioTranscriptDelta(m *realtime.ResponseAudioTranscriptDelta) {
//	    fmt.Print(m.Delta)
//	}
package realtime
